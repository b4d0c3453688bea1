package dao

import (
	"github.com/dilshat/message-sender/model"
)

type RecipientDao interface {
	//CreateForContact creates recipient record referencing an address book contact
	CreateForContact(messageId, contactId uint32) (uint32, error)
	//CreateForCustomAddress creates recipient record with a raw custom address
	CreateForCustomAddress(messageId uint32, customAddress string) (uint32, error)
	//GetAllByMessageId returns all recipients with the given message id
	GetAllByMessageId(messageId uint32) ([]model.Recipient, error)
}

func NewRecipientDao(db Db) RecipientDao {
	return &recipientDao{db: db}
}

type recipientDao struct {
	db Db
}

func (r recipientDao) CreateForContact(messageId, contactId uint32) (uint32, error) {
	recipient := &model.Recipient{MessageId: messageId, ContactId: contactId}
	err := r.db.Save(recipient)
	return recipient.Id, err
}

func (r recipientDao) CreateForCustomAddress(messageId uint32, customAddress string) (uint32, error) {
	recipient := &model.Recipient{MessageId: messageId, CustomAddress: customAddress}
	err := r.db.Save(recipient)
	return recipient.Id, err
}

func (r recipientDao) GetAllByMessageId(messageId uint32) ([]model.Recipient, error) {
	var recipients []model.Recipient
	err := r.db.Find("MessageId", messageId, &recipients)
	if err != nil && err.Error() == "not found" {
		return []model.Recipient{}, nil
	}
	return recipients, err
}
