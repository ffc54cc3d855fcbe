package entity

import "time"

// LogLine is one entry of the human-readable session log.
type LogLine struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

func (l LogLine) String() string {
	return l.Time.Format(time.DateTime) + " " + l.Message
}
