package dispatch

import (
	"encoding/json"
)

// delivery method identifiers, also stored in Message.DeliveryMethods
const (
	EMAIL    string = "email"
	TELEGRAM        = "telegram"
	VK              = "vk"
)

//DeliveryRecord is the outcome of one send attempt for one recipient on one channel variant.
//The shared base is Success/Delivered/Error, the rest is channel-specific metadata.
type DeliveryRecord struct {
	Success   bool   `json:"success"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`

	//email
	From     string `json:"from,omitempty"`
	Response string `json:"response,omitempty"`

	//email, vk
	MessageId string `json:"messageId,omitempty"`

	//telegram, vk
	FilesSent *bool `json:"filesSent,omitempty"`

	//vk
	ViaGroup        bool     `json:"viaGroup,omitempty"`
	GroupId         int      `json:"groupId,omitempty"`
	AttachmentCount int      `json:"attachmentCount,omitempty"`
	FileErrors      []string `json:"fileErrors,omitempty"`
}

//DeliveryInfo maps recipient identity (resolved address) to delivery records keyed by
//channel variant (email_<account>, telegram, vk). Record keys are stable across runs.
type DeliveryInfo map[string]map[string]DeliveryRecord

//ParseDeliveryInfo restores a delivery info document from its serialized form.
//A blank or malformed document yields an empty map.
func ParseDeliveryInfo(s string) DeliveryInfo {
	info := DeliveryInfo{}
	if s == "" {
		return info
	}
	if err := json.Unmarshal([]byte(s), &info); err != nil {
		return DeliveryInfo{}
	}
	return info
}

func (di DeliveryInfo) Serialize() (string, error) {
	b, err := json.Marshal(di)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

//MergeRecords overlays records of one recipient onto the map. Existing records
//under other keys survive, records under the same key are replaced.
func (di DeliveryInfo) MergeRecords(recipient string, records map[string]DeliveryRecord) {
	if len(records) == 0 {
		if _, ok := di[recipient]; !ok {
			di[recipient] = map[string]DeliveryRecord{}
		}
		return
	}
	existing, ok := di[recipient]
	if !ok {
		existing = map[string]DeliveryRecord{}
		di[recipient] = existing
	}
	for key, record := range records {
		existing[key] = record
	}
}

//Merge overlays another delivery info document onto this one.
func (di DeliveryInfo) Merge(other DeliveryInfo) {
	for recipient, records := range other {
		di.MergeRecords(recipient, records)
	}
}

//HasSuccess reports whether any recipient has a successful record under the given key.
func (di DeliveryInfo) HasSuccess(key string) bool {
	for _, records := range di {
		if record, ok := records[key]; ok && record.Success {
			return true
		}
	}
	return false
}

//Result is the per-recipient outcome returned by a channel sender for one run.
type Result struct {
	Recipient string
	Success   bool
	Error     string
	Records   map[string]DeliveryRecord
}

//AnySuccess reports whether any recipient of the run succeeded.
func AnySuccess(results []Result) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}
