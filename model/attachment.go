package model

type Attachment struct {
	Id        uint32 `storm:"id,increment"`
	MessageId uint32 `storm:"index"`
	//Filename is the unique name the file is stored under
	Filename     string
	OriginalName string
	Path         string
}
