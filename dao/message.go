package dao

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/dilshat/message-sender/model"
)

type MessageDao interface {
	//Create creates message record in pending status and returns its id
	Create(subject, content string, deliveryMethods []string) (uint32, error)
	//GetOneById returns message by id
	GetOneById(id uint32) (model.Message, error)
	//GetAll returns all messages, newest first
	GetAll() ([]model.Message, error)
	//UpdateStatus updates status and delivery info of message with the given id
	UpdateStatus(id uint32, status, deliveryInfo string) error
}

func NewMessageDao(db Db) MessageDao {
	return &messageDao{db: db}
}

type messageDao struct {
	db Db
}

func (d messageDao) Create(subject, content string, deliveryMethods []string) (uint32, error) {
	msg := &model.Message{
		Subject:         subject,
		Content:         content,
		DeliveryMethods: deliveryMethods,
		Status:          model.PENDING,
		CreatedAt:       time.Now(),
	}
	err := d.db.Save(msg)
	return msg.Id, err
}

func (d messageDao) GetOneById(id uint32) (msg model.Message, err error) {
	err = d.db.One("Id", id, &msg)
	return
}

func (d messageDao) GetAll() (messages []model.Message, err error) {
	err = d.db.AllByIndex("CreatedAt", &messages, storm.Reverse())
	return
}

func (d messageDao) UpdateStatus(id uint32, status, deliveryInfo string) error {
	var msg model.Message
	err := d.db.One("Id", id, &msg)
	if err != nil {
		return err
	}
	msg.Status = status
	msg.DeliveryInfo = deliveryInfo
	return d.db.Update(&msg)
}
