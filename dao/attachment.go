package dao

import (
	"github.com/dilshat/message-sender/model"
)

type AttachmentDao interface {
	//Create creates attachment record and returns its id
	Create(messageId uint32, filename, originalName, path string) (uint32, error)
	//GetAllByMessageId returns all attachments with the given message id
	GetAllByMessageId(messageId uint32) ([]model.Attachment, error)
}

func NewAttachmentDao(db Db) AttachmentDao {
	return &attachmentDao{db: db}
}

type attachmentDao struct {
	db Db
}

func (d attachmentDao) Create(messageId uint32, filename, originalName, path string) (uint32, error) {
	attachment := &model.Attachment{
		MessageId:    messageId,
		Filename:     filename,
		OriginalName: originalName,
		Path:         path,
	}
	err := d.db.Save(attachment)
	return attachment.Id, err
}

func (d attachmentDao) GetAllByMessageId(messageId uint32) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := d.db.Find("MessageId", messageId, &attachments)
	if err != nil && err.Error() == "not found" {
		//a message without attachments is the normal case, not an error
		return []model.Attachment{}, nil
	}
	return attachments, err
}
