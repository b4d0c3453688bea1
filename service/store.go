package service

import (
	"github.com/dilshat/message-sender/dao"
	"github.com/dilshat/message-sender/dispatch"
	"github.com/dilshat/message-sender/model"
	"go.uber.org/zap"
)

//NewDispatchStore adapts the dao layer to the orchestrator's storage contract.
func NewDispatchStore(messageDao dao.MessageDao, contactDao dao.ContactDao, recipientDao dao.RecipientDao,
	attachmentDao dao.AttachmentDao, historyDao dao.StatusHistoryDao) dispatch.Store {
	return &dispatchStore{
		messageDao:    messageDao,
		contactDao:    contactDao,
		recipientDao:  recipientDao,
		attachmentDao: attachmentDao,
		historyDao:    historyDao,
	}
}

type dispatchStore struct {
	messageDao    dao.MessageDao
	contactDao    dao.ContactDao
	recipientDao  dao.RecipientDao
	attachmentDao dao.AttachmentDao
	historyDao    dao.StatusHistoryDao
}

func (s dispatchStore) GetMessage(id uint32) (model.Message, error) {
	return s.messageDao.GetOneById(id)
}

//GetRecipients joins recipient rows with their contacts into the resolved view
func (s dispatchStore) GetRecipients(messageId uint32) ([]dispatch.Recipient, error) {
	rows, err := s.recipientDao.GetAllByMessageId(messageId)
	if err != nil {
		return nil, err
	}

	recipients := make([]dispatch.Recipient, 0, len(rows))
	for _, row := range rows {
		if row.ContactId == 0 {
			recipients = append(recipients, dispatch.Recipient{CustomAddress: row.CustomAddress})
			continue
		}
		contact, err := s.contactDao.GetOneById(row.ContactId)
		if err != nil {
			//contact deleted after the message was created
			zap.L().Warn("Recipient contact missing", zap.Uint32("contactId", row.ContactId), zap.Error(err))
			continue
		}
		recipients = append(recipients, dispatch.Recipient{
			Name:           contact.Name,
			Email:          contact.Email,
			TelegramChatId: contact.TelegramChatId,
			VkId:           contact.VkId,
		})
	}
	return recipients, nil
}

func (s dispatchStore) GetAttachments(messageId uint32) ([]model.Attachment, error) {
	return s.attachmentDao.GetAllByMessageId(messageId)
}

func (s dispatchStore) UpdateMessageStatus(id uint32, status, deliveryInfo string) error {
	return s.messageDao.UpdateStatus(id, status, deliveryInfo)
}

func (s dispatchStore) AppendStatusHistory(messageId uint32, action, status, details string) error {
	_, err := s.historyDao.Append(messageId, action, status, details)
	return err
}
