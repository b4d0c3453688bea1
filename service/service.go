package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/dchest/uniuri"
	"github.com/dilshat/message-sender/dao"
	"github.com/dilshat/message-sender/dispatch"
	"github.com/dilshat/message-sender/model"
	"github.com/dilshat/message-sender/service/dto"
	"github.com/dilshat/message-sender/util"
	"go.uber.org/zap"
)

type InvalidPayloadErr struct {
	message string
}

func (e *InvalidPayloadErr) Error() string {
	return e.message
}

func NewInvalidPayloadError(msg string) *InvalidPayloadErr {
	return &InvalidPayloadErr{message: msg}
}

//NoDeliveryMethodErr signals that no requested channel has usable configuration.
//Reported to the caller synchronously, before any persistence.
type NoDeliveryMethodErr struct {
	message string
}

func (e *NoDeliveryMethodErr) Error() string {
	return e.message
}

func NewNoDeliveryMethodError(msg string) *NoDeliveryMethodErr {
	return &NoDeliveryMethodErr{message: msg}
}

type Service interface {
	SendMessage(msg dto.SendMessageRequest, files []*multipart.FileHeader) (dto.SendMessageResponse, error)
	ResendMessage(id uint32) error
	GetMessages() ([]dto.MessageListItem, error)
	GetMessageDetails(id uint32) (dto.MessageDetails, error)
	GetStatusHistory(id uint32) ([]dto.StatusHistoryEntry, error)
	GetContacts() ([]dto.Contact, error)
	CreateContact(contact dto.Contact) (dto.Id, error)
	DeleteContact(id uint32) error
	ConfigStatus() dto.ConfigStatus
}

type Options struct {
	UploadDir string
	//ResendAttachments widens resend to re-offer stored attachments,
	//by default resend redelivers text only
	ResendAttachments bool
	AuthEnabled       bool
}

type service struct {
	orchestrator  *dispatch.Orchestrator
	queue         *dispatch.Queue
	config        dispatch.Config
	messageDao    dao.MessageDao
	contactDao    dao.ContactDao
	recipientDao  dao.RecipientDao
	attachmentDao dao.AttachmentDao
	historyDao    dao.StatusHistoryDao
	opts          Options
}

func NewService(orchestrator *dispatch.Orchestrator, queue *dispatch.Queue, config dispatch.Config,
	messageDao dao.MessageDao, contactDao dao.ContactDao, recipientDao dao.RecipientDao,
	attachmentDao dao.AttachmentDao, historyDao dao.StatusHistoryDao, opts Options) Service {
	return &service{
		orchestrator:  orchestrator,
		queue:         queue,
		config:        config,
		messageDao:    messageDao,
		contactDao:    contactDao,
		recipientDao:  recipientDao,
		attachmentDao: attachmentDao,
		historyDao:    historyDao,
		opts:          opts,
	}
}

func (s service) SendMessage(msg dto.SendMessageRequest, files []*multipart.FileHeader) (dto.SendMessageResponse, error) {

	//overall message validation
	if util.IsBlank(msg.Content) {
		return dto.SendMessageResponse{}, NewInvalidPayloadError("Message content is required")
	}
	if len(msg.ContactIds) == 0 && len(msg.CustomAddresses) == 0 {
		return dto.SendMessageResponse{}, NewInvalidPayloadError("At least one recipient is required")
	}
	if len(msg.DeliveryMethods) == 0 {
		return dto.SendMessageResponse{}, NewInvalidPayloadError("At least one delivery method is required")
	}

	//filter down to methods with usable configuration, fail before any persistence
	availableMethods := s.orchestrator.AvailableMethods(msg.DeliveryMethods)
	if len(availableMethods) == 0 {
		return dto.SendMessageResponse{}, NewNoDeliveryMethodError("No available delivery methods. Check settings.")
	}

	messageId, err := s.messageDao.Create(msg.Subject, msg.Content, availableMethods)
	if err != nil {
		return dto.SendMessageResponse{}, err
	}

	if _, err = s.historyDao.Append(messageId, model.CREATE, model.PENDING, "Message created"); err != nil {
		return dto.SendMessageResponse{}, err
	}

	for _, file := range files {
		filename, path, err := s.saveUpload(file)
		if err != nil {
			return dto.SendMessageResponse{}, err
		}
		if _, err = s.attachmentDao.Create(messageId, filename, file.Filename, path); err != nil {
			return dto.SendMessageResponse{}, err
		}
	}

	for _, contactId := range msg.ContactIds {
		if _, err = s.recipientDao.CreateForContact(messageId, contactId); err != nil {
			return dto.SendMessageResponse{}, err
		}
	}
	for _, address := range msg.CustomAddresses {
		if util.IsBlank(address) {
			continue
		}
		if _, err = s.recipientDao.CreateForCustomAddress(messageId, address); err != nil {
			return dto.SendMessageResponse{}, err
		}
	}

	zap.L().Info("Message accepted",
		zap.Uint32("messageId", messageId),
		zap.Strings("methods", availableMethods),
		zap.Int("contacts", len(msg.ContactIds)),
		zap.Int("customAddresses", len(msg.CustomAddresses)),
		zap.Int("files", len(files)))

	//delivery runs in the background, the caller polls for status
	s.queue.Enqueue(dispatch.Job{MessageId: messageId, IncludeAttachments: true})

	return dto.SendMessageResponse{Success: true, MessageId: messageId, Methods: availableMethods}, nil
}

func (s service) ResendMessage(id uint32) error {
	msg, err := s.messageDao.GetOneById(id)
	if err != nil {
		return err
	}

	if _, err = s.historyDao.Append(id, model.RESEND, model.PENDING, "Resend started"); err != nil {
		return err
	}

	//status goes back to pending, accumulated delivery info is kept for the merge
	if err = s.messageDao.UpdateStatus(id, model.PENDING, msg.DeliveryInfo); err != nil {
		return err
	}

	zap.L().Info("Resend accepted", zap.Uint32("messageId", id), zap.Strings("methods", msg.DeliveryMethods))

	s.queue.Enqueue(dispatch.Job{MessageId: id, IncludeAttachments: s.opts.ResendAttachments})

	return nil
}

func (s service) GetMessages() ([]dto.MessageListItem, error) {
	messages, err := s.messageDao.GetAll()
	if err != nil {
		return nil, err
	}

	items := []dto.MessageListItem{}
	for _, msg := range messages {
		item, err := s.toListItem(msg)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s service) GetMessageDetails(id uint32) (dto.MessageDetails, error) {
	msg, err := s.messageDao.GetOneById(id)
	if err != nil {
		return dto.MessageDetails{}, err
	}

	item, err := s.toListItem(msg)
	if err != nil {
		return dto.MessageDetails{}, err
	}

	info := dispatch.ParseDeliveryInfo(msg.DeliveryInfo)

	return dto.MessageDetails{
		MessageListItem: item,
		DeliveryInfo:    info,
		FullyDelivered:  s.orchestrator.FullyDelivered(msg.DeliveryMethods, info),
	}, nil
}

func (s service) GetStatusHistory(id uint32) ([]dto.StatusHistoryEntry, error) {
	entries, err := s.historyDao.GetAllByMessageId(id)
	if err != nil {
		return nil, err
	}

	result := []dto.StatusHistoryEntry{}
	for _, entry := range entries {
		result = append(result, dto.StatusHistoryEntry{
			Timestamp: entry.Timestamp,
			Action:    entry.Action,
			Status:    entry.Status,
			Details:   entry.Details,
		})
	}
	return result, nil
}

func (s service) GetContacts() ([]dto.Contact, error) {
	contacts, err := s.contactDao.GetAll()
	if err != nil {
		return nil, err
	}

	result := []dto.Contact{}
	for _, contact := range contacts {
		result = append(result, dto.Contact{
			Id:             contact.Id,
			Name:           contact.Name,
			Email:          contact.Email,
			TelegramChatId: contact.TelegramChatId,
			VkId:           contact.VkId,
		})
	}
	return result, nil
}

func (s service) CreateContact(contact dto.Contact) (dto.Id, error) {
	if util.IsBlank(contact.Name) {
		return dto.Id{}, NewInvalidPayloadError("Contact name is required")
	}

	id, err := s.contactDao.Create(contact.Name, contact.Email, contact.TelegramChatId, contact.VkId)
	if err != nil {
		return dto.Id{}, err
	}
	return dto.Id{Id: id}, nil
}

func (s service) DeleteContact(id uint32) error {
	return s.contactDao.Delete(id)
}

func (s service) ConfigStatus() dto.ConfigStatus {
	status := dto.ConfigStatus{
		Auth:     dto.AuthStatus{Enabled: s.opts.AuthEnabled},
		Email:    []dto.SmtpAccountStatus{},
		Telegram: dto.ChannelStatus{Configured: s.config.Telegram.Configured()},
		Vk:       dto.ChannelStatus{Configured: s.config.Vk.Configured()},
	}
	for _, account := range s.config.Email.Accounts {
		status.Email = append(status.Email, dto.SmtpAccountStatus{
			Name:       account.Name,
			Configured: account.Configured(),
			User:       account.User,
			Host:       account.Host,
		})
	}
	return status
}

func (s service) toListItem(msg model.Message) (dto.MessageListItem, error) {
	recipients, err := s.recipientDao.GetAllByMessageId(msg.Id)
	if err != nil {
		return dto.MessageListItem{}, err
	}

	var names []string
	for _, recipient := range recipients {
		if recipient.ContactId == 0 {
			continue
		}
		contact, err := s.contactDao.GetOneById(recipient.ContactId)
		if err != nil {
			continue
		}
		names = append(names, contact.Name)
	}

	return dto.MessageListItem{
		Id:              msg.Id,
		Subject:         msg.Subject,
		Content:         msg.Content,
		DeliveryMethods: msg.DeliveryMethods,
		Status:          msg.Status,
		CreatedAt:       msg.CreatedAt,
		RecipientNames:  names,
		RecipientCount:  len(recipients),
	}, nil
}

func (s service) saveUpload(file *multipart.FileHeader) (string, string, error) {
	if err := os.MkdirAll(s.opts.UploadDir, 0755); err != nil {
		return "", "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	filename := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uniuri.NewLen(8), file.Filename)
	path := filepath.Join(s.opts.UploadDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", "", err
	}

	return filename, path, nil
}
