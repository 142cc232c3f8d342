// Package hub fans dashboard messages out to websocket clients.
package hub

import (
	"encoding/json"

	"github.com/gofiber/websocket/v2"
)

// Message is one broadcast unit. Binary payloads are JPEG frames; everything
// else is JSON text.
type Message struct {
	Binary  bool
	Payload []byte
}

// JSON encodes v as a text message.
func JSON(v any) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return Message{Payload: data}, nil
}

// Frame wraps an encoded image.
func Frame(jpeg []byte) Message {
	return Message{Binary: true, Payload: jpeg}
}

func (m Message) opcode() int {
	if m.Binary {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}
