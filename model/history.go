package model

import "time"

const (
	//status history actions
	CREATE        string = "create"
	RESEND               = "resend"
	STATUS_CHANGE        = "status_change"
)

//StatusHistoryEntry is an immutable audit record, appended on every message state transition
type StatusHistoryEntry struct {
	Id        uint32 `storm:"id,increment"`
	MessageId uint32 `storm:"index"`
	Timestamp time.Time
	Action    string
	Status    string
	Details   string
}
