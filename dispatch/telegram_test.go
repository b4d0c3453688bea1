package dispatch

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dilshat/message-sender/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

const CHAT_ID = "987654"

type mockBot struct {
	textErr  error
	docFails int //number of document sends to fail before succeeding
	texts    []string
	docSends int
}

func (m *mockBot) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	switch v := what.(type) {
	case *tele.Document:
		m.docSends++
		if m.docFails > 0 {
			m.docFails--
			return nil, errors.New("transfer failed")
		}
	case string:
		if m.textErr != nil {
			return nil, m.textErr
		}
		m.texts = append(m.texts, v)
	}
	return &tele.Message{}, nil
}

func (m *mockBot) Raw(method string, payload interface{}) ([]byte, error) {
	return []byte("{}"), nil
}

func newTestTelegramSender(bot *mockBot) *TelegramSender {
	retrier := NewRetrier(uploadRetryAttempts, 0)
	retrier.sleep = func(d time.Duration) {}
	return &TelegramSender{
		config:  TelegramConfig{Token: "test-token"},
		api:     bot,
		retrier: retrier,
		limiter: noopLimiter{},
	}
}

func TestTelegramSender_SendText(t *testing.T) {
	bot := &mockBot{}
	s := newTestTelegramSender(bot)

	results, err := s.Send(
		model.Message{Subject: "Hi", Content: "Hello"},
		[]Recipient{{TelegramChatId: CHAT_ID}},
		nil,
	)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, CHAT_ID, results[0].Recipient)

	record := results[0].Records[TELEGRAM]
	assert.True(t, record.Success)
	require.NotNil(t, record.FilesSent)
	assert.True(t, *record.FilesSent)

	require.Len(t, bot.texts, 1)
	assert.Equal(t, "*Hi*\n\nHello", bot.texts[0])
}

func TestTelegramSender_TextFailure(t *testing.T) {
	bot := &mockBot{textErr: errors.New("chat not found")}
	s := newTestTelegramSender(bot)

	results, err := s.Send(
		model.Message{Content: "Hello"},
		[]Recipient{{TelegramChatId: CHAT_ID}},
		[]model.Attachment{{Path: "f.txt", OriginalName: "f.txt"}},
	)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "chat not found", results[0].Records[TELEGRAM].Error)
	//no document attempts when the text itself failed
	assert.Zero(t, bot.docSends)
}

func TestTelegramSender_DocumentRetriesThenSucceeds(t *testing.T) {
	bot := &mockBot{docFails: 2}
	s := newTestTelegramSender(bot)

	results, err := s.Send(
		model.Message{Content: "Hello"},
		[]Recipient{{TelegramChatId: CHAT_ID}},
		[]model.Attachment{{Path: "f.txt", OriginalName: "f.txt"}},
	)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	record := results[0].Records[TELEGRAM]
	require.NotNil(t, record.FilesSent)
	assert.True(t, *record.FilesSent)
	assert.Equal(t, 3, bot.docSends)
}

func TestTelegramSender_DocumentFailureKeepsSuccess(t *testing.T) {
	bot := &mockBot{docFails: 100}
	s := newTestTelegramSender(bot)

	results, err := s.Send(
		model.Message{Content: "Hello"},
		[]Recipient{{TelegramChatId: CHAT_ID}},
		[]model.Attachment{{Path: "f.txt", OriginalName: "f.txt"}},
	)

	require.NoError(t, err)
	require.Len(t, results, 1)
	//text went through, failed attachments only flip the flag
	assert.True(t, results[0].Success)

	record := results[0].Records[TELEGRAM]
	require.NotNil(t, record.FilesSent)
	assert.False(t, *record.FilesSent)
	assert.Equal(t, uploadRetryAttempts, bot.docSends)
}

func TestTelegramSender_SkipsUnresolvableRecipients(t *testing.T) {
	bot := &mockBot{}
	s := newTestTelegramSender(bot)

	results, err := s.Send(
		model.Message{Content: "Hello"},
		[]Recipient{{CustomAddress: "no-handle"}},
		nil,
	)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, bot.texts)
}

func TestBuildTelegramText(t *testing.T) {
	assert.Equal(t, "Hello", buildTelegramText(model.Message{Content: "Hello"}))
	assert.Equal(t, "*Hi*\n\nHello", buildTelegramText(model.Message{Subject: "Hi", Content: "Hello"}))
}

func TestBuildTelegramText_Truncation(t *testing.T) {
	long := strings.Repeat("я", telegramMaxTextLen+100)

	text := buildTelegramText(model.Message{Content: long})

	runes := []rune(text)
	assert.Len(t, runes, telegramMaxTextLen)
	assert.True(t, strings.HasSuffix(text, truncationMarker))
}

func TestBuildTelegramText_ExactLimitUntouched(t *testing.T) {
	exact := strings.Repeat("a", telegramMaxTextLen)
	assert.Equal(t, exact, buildTelegramText(model.Message{Content: exact}))
}
