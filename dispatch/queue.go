package dispatch

import (
	"github.com/cskr/pubsub"
	"go.uber.org/zap"
)

const dispatchTopic = "dispatch"

//Job is one queued dispatch run. Resends carry IncludeAttachments=false when
//redelivery is scoped to text only.
type Job struct {
	MessageId          uint32
	IncludeAttachments bool
}

//Queue decouples the http request from the delivery run: jobs are published
//fire-and-forget and processed by a single worker, which also serializes runs.
type Queue struct {
	ps           *pubsub.PubSub
	jobs         chan interface{}
	orchestrator *Orchestrator
}

func NewQueue(orchestrator *Orchestrator) *Queue {
	ps := pubsub.New(100)
	return &Queue{ps: ps, jobs: ps.Sub(dispatchTopic), orchestrator: orchestrator}
}

func (q *Queue) Start() {
	go q.process()
}

func (q *Queue) Enqueue(job Job) {
	q.ps.Pub(job, dispatchTopic)
}

func (q *Queue) Stop() {
	q.ps.Shutdown()
}

func (q *Queue) process() {
	for val := range q.jobs {
		job, ok := val.(Job)
		if !ok {
			continue
		}
		if err := q.orchestrator.Dispatch(job.MessageId, job.IncludeAttachments); err != nil {
			//the message stays pending, outcome is visible in the status history
			zap.L().Error("Dispatch run failed", zap.Uint32("messageId", job.MessageId), zap.Error(err))
		}
	}
}
