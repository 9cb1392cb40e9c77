package protocol

import (
	"time"

	"github.com/danmuck/tkpay/internal/protocol/tlv"
)

// Message is an ordered outbound field list.
type Message struct {
	fields []tlv.Field
}

func NewMessage(messageType string) *Message {
	m := &Message{fields: make([]tlv.Field, 0, 8)}
	return m.Add(TagMessageType, messageType)
}

// Add appends one field. Encoding order follows call order.
func (m *Message) Add(tag, value string) *Message {
	m.fields = append(m.fields, tlv.Field{Tag: tag, Value: value})
	return m
}

// AddTimestamp appends the local date (DDMMYYYY) and time (HHMMSS) fields.
func (m *Message) AddTimestamp(now time.Time) *Message {
	return m.Add(TagDate, now.Format(DateLayout)).Add(TagTime, now.Format(TimeLayout))
}

func (m *Message) Fields() []tlv.Field {
	out := make([]tlv.Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Encode renders the message in wire format.
func (m *Message) Encode() ([]byte, error) {
	return tlv.EncodeFields(m.fields)
}
