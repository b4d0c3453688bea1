package dispatch

import (
	"strconv"
	"strings"

	"github.com/dilshat/message-sender/util"
)

//Recipient is the joined view of a message recipient: contact fields when the
//recipient references the address book, or a raw custom address.
type Recipient struct {
	Name           string
	Email          string
	TelegramChatId string
	VkId           string
	CustomAddress  string
}

//ResolveEmail returns the reachable email address of a recipient.
//A contact email is accepted as-is, malformed ones become per-recipient send
//failures in the sender. A custom address must contain @ to qualify.
func ResolveEmail(r Recipient) (string, bool) {
	if !util.IsBlank(r.Email) {
		return r.Email, true
	}
	if !util.IsBlank(r.CustomAddress) && strings.Contains(r.CustomAddress, "@") {
		return r.CustomAddress, true
	}
	return "", false
}

//ResolveTelegram returns the chat id or handle a recipient is reachable at.
//A custom address qualifies when it is a @handle or purely numeric.
func ResolveTelegram(r Recipient) (string, bool) {
	if !util.IsBlank(r.TelegramChatId) {
		return r.TelegramChatId, true
	}
	addr := strings.TrimSpace(r.CustomAddress)
	if addr == "" {
		return "", false
	}
	if strings.HasPrefix(addr, "@") || util.IsDecimal(addr) {
		return addr, true
	}
	return "", false
}

//ResolveVk returns the original address and its numeric vk user id.
//Handle resolution is out of scope, non-numeric addresses are excluded here.
func ResolveVk(r Recipient) (string, int, bool) {
	addr := r.VkId
	if util.IsBlank(addr) {
		addr = r.CustomAddress
	}
	if util.IsBlank(addr) {
		return "", 0, false
	}
	id, ok := NormalizeVkId(addr)
	if !ok {
		return "", 0, false
	}
	return addr, id, true
}

//NormalizeVkId extracts a numeric vk user id from a raw value.
//Accepted forms: plain digits and id<digits>.
func NormalizeVkId(vkId string) (int, bool) {
	s := strings.TrimSpace(vkId)
	if s == "" {
		return 0, false
	}
	if util.IsDecimal(s) {
		id, _ := strconv.Atoi(s)
		return id, true
	}
	if strings.HasPrefix(s, "id") && util.IsDecimal(s[2:]) {
		id, _ := strconv.Atoi(s[2:])
		return id, true
	}
	return 0, false
}
