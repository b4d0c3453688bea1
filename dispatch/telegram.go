package dispatch

import (
	"context"
	"net/http"
	"time"

	"github.com/dilshat/message-sender/model"
	"github.com/dilshat/message-sender/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"
)

const (
	//bot api hard limit on message text length
	telegramMaxTextLen = 4096
	truncationMarker   = "..."

	telegramSendPause     = time.Second
	uploadRetryAttempts   = 3
	uploadRetryBackoff    = 2 * time.Second
	telegramClientTimeout = 60 * time.Second
)

//TelegramAPI is the slice of the bot client the sender needs. *tele.Bot implements it.
type TelegramAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Raw(method string, payload interface{}) ([]byte, error)
}

//chatRecipient adapts a raw chat id or @handle to the bot api recipient contract.
type chatRecipient string

func (c chatRecipient) Recipient() string { return string(c) }

//TelegramSender sends the text first, then attaches documents best-effort:
//per-attachment failures flip filesSent without failing the recipient.
type TelegramSender struct {
	config  TelegramConfig
	api     TelegramAPI
	retrier *Retrier
	limiter RateLimiter
}

func NewTelegramSender(config TelegramConfig) (*TelegramSender, error) {
	s := &TelegramSender{
		config:  config,
		retrier: NewRetrier(uploadRetryAttempts, uploadRetryBackoff),
		limiter: rate.NewLimiter(rate.Every(telegramSendPause), 1),
	}

	if config.Configured() {
		bot, err := tele.NewBot(tele.Settings{
			Token:   config.Token,
			URL:     config.ApiUrl,
			Client:  &http.Client{Timeout: telegramClientTimeout},
			Offline: true,
		})
		if err != nil {
			return nil, err
		}
		s.api = bot
	}

	return s, nil
}

func (s *TelegramSender) Method() string {
	return TELEGRAM
}

func (s *TelegramSender) Configured() bool {
	return s.config.Configured()
}

func (s *TelegramSender) RecordKeys() []string {
	return []string{TELEGRAM}
}

func (s *TelegramSender) Validate() error {
	if _, err := s.api.Raw("getMe", nil); err != nil {
		zap.L().Warn("Telegram bot unreachable", zap.Error(err))
		return err
	}
	zap.L().Info("Telegram bot reachable")
	return nil
}

func (s *TelegramSender) Send(msg model.Message, recipients []Recipient, attachments []model.Attachment) ([]Result, error) {
	var results []Result

	for _, recipient := range recipients {
		chatId, ok := ResolveTelegram(recipient)
		if !ok {
			continue
		}

		records := map[string]DeliveryRecord{}
		success := false

		_, err := s.api.Send(chatRecipient(chatId), buildTelegramText(msg), &tele.SendOptions{ParseMode: tele.ModeMarkdown})
		if err != nil {
			zap.L().Error("Error sending telegram message", zap.String("chatId", chatId), zap.Error(err))
			records[TELEGRAM] = DeliveryRecord{Error: err.Error()}
		} else {
			//message delivery is the success criterion, attachments are best-effort
			filesSent := s.sendDocuments(chatId, attachments)
			success = true
			records[TELEGRAM] = DeliveryRecord{
				Success:   true,
				Delivered: true,
				FilesSent: &filesSent,
			}
		}

		results = append(results, Result{
			Recipient: chatId,
			Success:   success,
			Records:   records,
		})

		//pause between recipients
		s.limiter.Wait(context.Background())
	}

	return results, nil
}

func (s *TelegramSender) sendDocuments(chatId string, attachments []model.Attachment) bool {
	allSent := true
	for _, att := range attachments {
		doc := &tele.Document{File: tele.FromDisk(att.Path), FileName: att.OriginalName}
		err := s.retrier.Do(func() error {
			_, err := s.api.Send(chatRecipient(chatId), doc)
			return err
		})
		if err != nil {
			zap.L().Error("Error sending telegram document",
				zap.String("chatId", chatId),
				zap.String("file", att.OriginalName),
				zap.Error(err))
			allSent = false
		}
	}
	return allSent
}

func buildTelegramText(msg model.Message) string {
	text := msg.Content
	if !util.IsBlank(msg.Subject) {
		text = "*" + msg.Subject + "*\n\n" + msg.Content
	}

	runes := []rune(text)
	if len(runes) > telegramMaxTextLen {
		return string(runes[:telegramMaxTextLen-len(truncationMarker)]) + truncationMarker
	}
	return text
}
