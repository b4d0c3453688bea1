package model

//Recipient links a message either to an address book contact or to a one-off custom address
type Recipient struct {
	Id            uint32 `storm:"id,increment"`
	MessageId     uint32 `storm:"index"`
	ContactId     uint32
	CustomAddress string
}
