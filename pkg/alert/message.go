package alert

import (
	"encoding/json"
	"time"
)

// Message is the payload sent to remote presenters.
type Message struct {
	Signal string    `json:"signal"`
	Source string    `json:"source,omitempty"`
	Time   time.Time `json:"time"`
}

func newMessage(sig Signal, source string, now time.Time) Message {
	return Message{Signal: sig.String(), Source: source, Time: now.UTC()}
}

func (m Message) encode() ([]byte, error) {
	return json.Marshal(m)
}
