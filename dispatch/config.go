package dispatch

import (
	"github.com/dilshat/message-sender/util"
)

//SmtpAccount is one of the smtp accounts the email channel dispatches through.
//An account without a password is treated as not configured.
type SmtpAccount struct {
	Name     string
	Host     string
	Port     int
	SSL      bool
	User     string
	Password string
}

func (a SmtpAccount) Configured() bool {
	return !util.IsBlank(a.Password)
}

//RecordKey returns the delivery record key of this account, e.g. email_primary.
//Keys must stay stable across runs for merge to work.
func (a SmtpAccount) RecordKey() string {
	return EMAIL + "_" + a.Name
}

type EmailConfig struct {
	Accounts []SmtpAccount
}

func (c EmailConfig) Configured() bool {
	for _, a := range c.Accounts {
		if a.Configured() {
			return true
		}
	}
	return false
}

//ConfiguredAccounts returns the accounts that are usable for sending.
func (c EmailConfig) ConfiguredAccounts() []SmtpAccount {
	var accounts []SmtpAccount
	for _, a := range c.Accounts {
		if a.Configured() {
			accounts = append(accounts, a)
		}
	}
	return accounts
}

type TelegramConfig struct {
	Token  string
	ApiUrl string
}

func (c TelegramConfig) Configured() bool {
	return !util.IsBlank(c.Token)
}

type VkConfig struct {
	AccessToken string
	ApiVersion  string
	ApiUrl      string
}

func (c VkConfig) Configured() bool {
	return !util.IsBlank(c.AccessToken)
}

//Config aggregates channel configurations, read once per process, never mutated.
type Config struct {
	Email    EmailConfig
	Telegram TelegramConfig
	Vk       VkConfig
}
