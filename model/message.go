package model

import "time"

const (
	//message statuses
	PENDING string = "pending"
	SENT           = "sent"
	FAILED         = "failed"
)

type Message struct {
	Id              uint32 `storm:"id,increment"`
	Subject         string
	Content         string
	DeliveryMethods []string
	//DeliveryInfo holds the serialized delivery info document, see dispatch.DeliveryInfo
	DeliveryInfo string
	Status       string
	CreatedAt    time.Time `storm:"index"`
}
