package dao

import (
	"time"

	"github.com/asdine/storm/v3/q"
	"github.com/dilshat/message-sender/model"
)

type StatusHistoryDao interface {
	//Append appends an audit record, existing records are never mutated
	Append(messageId uint32, action, status, details string) (uint32, error)
	//GetAllByMessageId returns audit records of a message, newest first
	GetAllByMessageId(messageId uint32) ([]model.StatusHistoryEntry, error)
}

func NewStatusHistoryDao(db Db) StatusHistoryDao {
	return &statusHistoryDao{db: db}
}

type statusHistoryDao struct {
	db Db
}

func (d statusHistoryDao) Append(messageId uint32, action, status, details string) (uint32, error) {
	entry := &model.StatusHistoryEntry{
		MessageId: messageId,
		Timestamp: time.Now(),
		Action:    action,
		Status:    status,
		Details:   details,
	}
	err := d.db.Save(entry)
	return entry.Id, err
}

func (d statusHistoryDao) GetAllByMessageId(messageId uint32) ([]model.StatusHistoryEntry, error) {
	var entries []model.StatusHistoryEntry
	err := d.db.Select(q.Eq("MessageId", messageId)).OrderBy("Timestamp").Reverse().Find(&entries)
	if err != nil && err.Error() == "not found" {
		return []model.StatusHistoryEntry{}, nil
	}
	return entries, err
}
