package model

import "time"

type Contact struct {
	Id             uint32 `storm:"id,increment"`
	Name           string `storm:"index"`
	Email          string
	TelegramChatId string
	VkId           string
	CreatedAt      time.Time
}
