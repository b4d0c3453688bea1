package dto

import (
	"time"

	"github.com/dilshat/message-sender/dispatch"
)

type Id struct {
	Id uint32 `json:"id"`
}

type Contact struct {
	Id             uint32 `json:"id,omitempty"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	TelegramChatId string `json:"telegramChatId,omitempty"`
	VkId           string `json:"vkId,omitempty"`
}

type SendMessageRequest struct {
	Subject         string   `json:"subject"`
	Content         string   `json:"content"`
	DeliveryMethods []string `json:"deliveryMethods"`
	ContactIds      []uint32 `json:"recipients"`
	CustomAddresses []string `json:"customAddresses"`
}

type SendMessageResponse struct {
	Success   bool     `json:"success"`
	MessageId uint32   `json:"messageId"`
	Methods   []string `json:"methods"`
}

type MessageListItem struct {
	Id              uint32    `json:"id"`
	Subject         string    `json:"subject,omitempty"`
	Content         string    `json:"content"`
	DeliveryMethods []string  `json:"deliveryMethods"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	RecipientNames  []string  `json:"recipientNames,omitempty"`
	RecipientCount  int       `json:"recipientCount"`
}

type MessageDetails struct {
	MessageListItem
	DeliveryInfo   dispatch.DeliveryInfo `json:"deliveryInfo"`
	FullyDelivered bool                  `json:"fullyDelivered"`
}

type StatusHistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Details   string    `json:"details"`
}

type AuthStatus struct {
	Enabled bool `json:"enabled"`
}

type SmtpAccountStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	User       string `json:"user"`
	Host       string `json:"host"`
}

type ChannelStatus struct {
	Configured bool `json:"configured"`
}

type ConfigStatus struct {
	Auth     AuthStatus          `json:"auth"`
	Email    []SmtpAccountStatus `json:"email"`
	Telegram ChannelStatus       `json:"telegram"`
	Vk       ChannelStatus       `json:"vk"`
}
