package dao

import (
	"time"

	"github.com/dilshat/message-sender/model"
)

type ContactDao interface {
	//Create creates contact record and returns its id
	Create(name, email, telegramChatId, vkId string) (uint32, error)
	//GetOneById returns contact by id
	GetOneById(id uint32) (model.Contact, error)
	//GetAll returns all contacts ordered by name
	GetAll() ([]model.Contact, error)
	//Delete removes contact with the given id
	Delete(id uint32) error
}

func NewContactDao(db Db) ContactDao {
	return &contactDao{db: db}
}

type contactDao struct {
	db Db
}

func (d contactDao) Create(name, email, telegramChatId, vkId string) (uint32, error) {
	contact := &model.Contact{
		Name:           name,
		Email:          email,
		TelegramChatId: telegramChatId,
		VkId:           vkId,
		CreatedAt:      time.Now(),
	}
	err := d.db.Save(contact)
	return contact.Id, err
}

func (d contactDao) GetOneById(id uint32) (contact model.Contact, err error) {
	err = d.db.One("Id", id, &contact)
	return
}

func (d contactDao) GetAll() (contacts []model.Contact, err error) {
	err = d.db.AllByIndex("Name", &contacts)
	return
}

func (d contactDao) Delete(id uint32) error {
	var contact model.Contact
	err := d.db.One("Id", id, &contact)
	if err != nil {
		return err
	}
	return d.db.DeleteStruct(&contact)
}
