package models

import "time"

// SMSMessage is an outbound text message.
type SMSMessage struct {
	To   string `json:"to"`
	Body string `json:"message"`
}

// SMSDetails describes an accepted message.
type SMSDetails struct {
	To        string    `json:"to"`
	Length    int       `json:"length"`
	Timestamp time.Time `json:"timestamp"`
}
