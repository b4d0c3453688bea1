package dispatch

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/dilshat/message-sender/model"
	"github.com/dilshat/message-sender/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

const (
	defaultSubject = "Message"
	//pause between individual transmissions to respect provider rate limits
	emailSendPause = 2 * time.Second
)

//Dialer sends assembled messages over one smtp account. *gomail.Dialer implements it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type DialerFactory func(account SmtpAccount) Dialer

func smtpDialer(a SmtpAccount) Dialer {
	d := gomail.NewDialer(a.Host, a.Port, a.User, a.Password)
	d.SSL = a.SSL
	//providers in use run self-signed relays
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	return d
}

//EmailSender sends the message independently through every configured smtp
//account to every resolved recipient. Both accounts are always attempted,
//each outcome is recorded under its own key.
type EmailSender struct {
	config    EmailConfig
	newDialer DialerFactory
	limiter   RateLimiter
}

func NewEmailSender(config EmailConfig) *EmailSender {
	return &EmailSender{
		config:    config,
		newDialer: smtpDialer,
		limiter:   rate.NewLimiter(rate.Every(emailSendPause), 1),
	}
}

func (s *EmailSender) Method() string {
	return EMAIL
}

func (s *EmailSender) Configured() bool {
	return s.config.Configured()
}

func (s *EmailSender) RecordKeys() []string {
	var keys []string
	for _, a := range s.config.ConfiguredAccounts() {
		keys = append(keys, a.RecordKey())
	}
	return keys
}

func (s *EmailSender) Validate() error {
	var lastErr error
	for _, account := range s.config.ConfiguredAccounts() {
		d := gomail.NewDialer(account.Host, account.Port, account.User, account.Password)
		d.SSL = account.SSL
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
		conn, err := d.Dial()
		if err != nil {
			zap.L().Warn("Smtp account unreachable", zap.String("account", account.Name), zap.Error(err))
			lastErr = err
			continue
		}
		_ = conn.Close()
		zap.L().Info("Smtp account reachable", zap.String("account", account.Name), zap.String("host", account.Host))
	}
	return lastErr
}

func (s *EmailSender) Send(msg model.Message, recipients []Recipient, attachments []model.Attachment) ([]Result, error) {
	accounts := s.config.ConfiguredAccounts()

	var results []Result
	for _, recipient := range recipients {
		address, ok := ResolveEmail(recipient)
		if !ok {
			continue
		}

		//reject malformed addresses before any network activity
		if !strings.Contains(address, "@") {
			zap.L().Warn("Invalid email address", zap.String("recipient", address))
			results = append(results, Result{
				Recipient: address,
				Success:   false,
				Error:     "Invalid email",
				Records:   map[string]DeliveryRecord{},
			})
			continue
		}

		records := map[string]DeliveryRecord{}
		atLeastOneSuccess := false

		for _, account := range accounts {
			m, messageId := s.buildMail(msg, account, address, attachments)
			err := s.newDialer(account).DialAndSend(m)

			record := DeliveryRecord{From: account.User}
			if err != nil {
				zap.L().Error("Error sending email",
					zap.String("account", account.Name),
					zap.String("recipient", address),
					zap.Error(err))
				record.Error = err.Error()
			} else {
				record.Success = true
				record.Delivered = true
				record.MessageId = messageId
				atLeastOneSuccess = true
			}
			records[account.RecordKey()] = record

			//pause after every transmission
			s.limiter.Wait(context.Background())
		}

		results = append(results, Result{
			Recipient: address,
			Success:   atLeastOneSuccess,
			Records:   records,
		})
	}

	return results, nil
}

func (s *EmailSender) buildMail(msg model.Message, account SmtpAccount, address string, attachments []model.Attachment) (*gomail.Message, string) {
	subject := msg.Subject
	if util.IsBlank(subject) {
		subject = defaultSubject
	}

	//the generated id goes both into the headers and the delivery record,
	//the smtp dialog itself surfaces no server-assigned identifier
	messageId := fmt.Sprintf("<%d.%s@%s>", time.Now().UnixNano(), uniuri.NewLen(12), account.Host)

	m := gomail.NewMessage()
	m.SetHeader("From", account.User)
	m.SetHeader("To", address)
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", messageId)
	m.SetHeader("X-Priority", "1")
	m.SetHeader("X-Mailer", "MessageService")
	m.SetBody("text/plain", msg.Content)
	m.AddAlternative("text/html", strings.ReplaceAll(msg.Content, "\n", "<br>"))
	for _, att := range attachments {
		m.Attach(att.Path, gomail.Rename(att.OriginalName))
	}
	return m, messageId
}
