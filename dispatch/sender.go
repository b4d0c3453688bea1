package dispatch

import (
	"context"

	"github.com/dilshat/message-sender/model"
)

type RateLimiter interface {
	// Wait blocks until the limiter permits an event to happen.
	Wait(ctx context.Context) error
}

//Sender delivers one message to resolved recipients over one channel.
//Provider errors become failed Results, they never abort sibling recipients.
type Sender interface {
	//Method returns the delivery method identifier this sender handles
	Method() string
	//Configured reports whether the channel has usable credentials
	Configured() bool
	//RecordKeys returns the delivery record keys this sender writes, used by
	//the fully-delivered evaluator
	RecordKeys() []string
	//Validate checks connectivity to the provider, used at startup only
	Validate() error
	//Send delivers the message to every reachable recipient and returns
	//per-recipient outcomes
	Send(msg model.Message, recipients []Recipient, attachments []model.Attachment) ([]Result, error)
}

type noopLimiter struct{}

func (noopLimiter) Wait(ctx context.Context) error { return nil }
