package dispatch

import (
	"fmt"

	"github.com/dilshat/message-sender/model"
	"go.uber.org/zap"
)

//Store is the persistence collaborator of a dispatch run.
//Writes are assumed to be serialized per message id by the storage layer.
type Store interface {
	GetMessage(id uint32) (model.Message, error)
	GetRecipients(messageId uint32) ([]Recipient, error)
	GetAttachments(messageId uint32) ([]model.Attachment, error)
	UpdateMessageStatus(id uint32, status, deliveryInfo string) error
	AppendStatusHistory(messageId uint32, action, status, details string) error
}

//Orchestrator fans one message out to the channel senders, merges their
//per-recipient results into the persisted delivery info and derives the
//aggregate message status.
type Orchestrator struct {
	store   Store
	senders []Sender
}

func NewOrchestrator(store Store, senders ...Sender) *Orchestrator {
	return &Orchestrator{store: store, senders: senders}
}

//AvailableMethods filters requested methods down to those with a configured
//sender, deduplicated, in sender registration order.
func (o *Orchestrator) AvailableMethods(requested []string) []string {
	seen := map[string]bool{}
	for _, method := range requested {
		seen[method] = true
	}

	var available []string
	for _, sender := range o.senders {
		if seen[sender.Method()] && sender.Configured() {
			available = append(available, sender.Method())
		}
	}
	return available
}

//Dispatch runs one delivery pass for a persisted message using its stored
//method list. Channel failures never abort sibling channels, only a
//persistence failure aborts the run.
func (o *Orchestrator) Dispatch(messageId uint32, includeAttachments bool) error {
	msg, err := o.store.GetMessage(messageId)
	if err != nil {
		return fmt.Errorf("getting message %d: %w", messageId, err)
	}

	recipients, err := o.store.GetRecipients(messageId)
	if err != nil {
		return fmt.Errorf("getting recipients of message %d: %w", messageId, err)
	}

	var attachments []model.Attachment
	if includeAttachments {
		attachments, err = o.store.GetAttachments(messageId)
		if err != nil {
			return fmt.Errorf("getting attachments of message %d: %w", messageId, err)
		}
	}

	zap.L().Info("Dispatch run started",
		zap.Uint32("messageId", messageId),
		zap.Strings("methods", msg.DeliveryMethods),
		zap.Int("recipients", len(recipients)),
		zap.Int("attachments", len(attachments)))

	//new records overlay prior runs, they never erase them
	info := ParseDeliveryInfo(msg.DeliveryInfo)
	hasAnySuccess := false

	for _, method := range msg.DeliveryMethods {
		sender := o.senderFor(method)
		if sender == nil || !sender.Configured() {
			zap.L().Warn("Skipping method without usable sender", zap.String("method", method))
			continue
		}

		results, err := safeSend(sender, msg, recipients, attachments)
		if err != nil {
			//a channel's total failure must not abort other channels
			zap.L().Error("Channel send failed", zap.String("method", method), zap.Error(err))
			continue
		}

		for _, result := range results {
			if result.Success {
				hasAnySuccess = true
			}
			info.MergeRecords(result.Recipient, result.Records)
		}
	}

	status := model.FAILED
	if hasAnySuccess {
		status = model.SENT
	}

	serialized, err := info.Serialize()
	if err != nil {
		return fmt.Errorf("serializing delivery info of message %d: %w", messageId, err)
	}

	if err := o.store.UpdateMessageStatus(messageId, status, serialized); err != nil {
		return fmt.Errorf("persisting status of message %d: %w", messageId, err)
	}

	details := fmt.Sprintf("Dispatch finished. Success: %t", hasAnySuccess)
	if err := o.store.AppendStatusHistory(messageId, model.STATUS_CHANGE, status, details); err != nil {
		return fmt.Errorf("appending status history of message %d: %w", messageId, err)
	}

	zap.L().Info("Dispatch run finished", zap.Uint32("messageId", messageId), zap.String("status", status))
	return nil
}

//FullyDelivered reports whether every requested method has at least one
//successful record under each of its keys. For email that means every
//configured smtp account key must show a success.
func (o *Orchestrator) FullyDelivered(methods []string, info DeliveryInfo) bool {
	for _, method := range methods {
		sender := o.senderFor(method)
		if sender == nil {
			return false
		}
		keys := sender.RecordKeys()
		if len(keys) == 0 {
			return false
		}
		for _, key := range keys {
			if !info.HasSuccess(key) {
				return false
			}
		}
	}
	return true
}

func (o *Orchestrator) senderFor(method string) Sender {
	for _, sender := range o.senders {
		if sender.Method() == method {
			return sender
		}
	}
	return nil
}

func safeSend(sender Sender, msg model.Message, recipients []Recipient, attachments []model.Attachment) (results []Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()
	return sender.Send(msg, recipients, attachments)
}
