package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxBodySize bounds a single frame's body so a malformed or hostile length
// header cannot force an unbounded allocation.
const MaxBodySize = 64 * 1024 * 1024

// Message is one protocol frame: a tag and its JSON body.
type Message struct {
	Type Type
	Body json.RawMessage
}

// NewMessage marshals payload into a Message of the given type.
func NewMessage(t Type, payload any) (*Message, error) {
	if payload == nil {
		return &Message{Type: t, Body: json.RawMessage("{}")}, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal %s body: %w", t, err)
	}
	return &Message{Type: t, Body: body}, nil
}

// Decode unmarshals the message body into v.
func (m *Message) Decode(v any) error {
	if len(m.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Body, v); err != nil {
		return fmt.Errorf("protocol: unmarshal %s body: %w", m.Type, err)
	}
	return nil
}

// Encode serializes the message to its wire form: [length][type][body],
// where length = len(body) + 2.
func (m *Message) Encode() ([]byte, error) {
	body := m.Body
	if body == nil {
		body = json.RawMessage("{}")
	}
	length := len(body) + 2
	buf := make([]byte, 4+2+len(body))
	binary.BigEndian.PutUint32(buf[0:4], uint32(length))
	binary.BigEndian.PutUint16(buf[4:6], uint16(m.Type))
	copy(buf[6:], body)
	return buf, nil
}

// ReadMessage reads one complete frame from r.
func ReadMessage(r io.Reader) (*Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length < 2 {
		return nil, fmt.Errorf("protocol: frame length %d too short for type field", length)
	}
	if length-2 > MaxBodySize {
		return nil, fmt.Errorf("protocol: frame body %d exceeds maximum %d", length-2, MaxBodySize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("protocol: read frame body: %w", err)
	}

	msgType := Type(binary.BigEndian.Uint16(data[:2]))
	body := data[2:]
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}
	return &Message{Type: msgType, Body: body}, nil
}

// WriteMessage encodes and writes msg to w in a single Write call, so
// concurrent writers sharing w only need to serialize the call itself.
func WriteMessage(w io.Writer, msg *Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Error is the payload carried by an ERROR frame.
type Error struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// NewErrorMessage builds an ERROR frame with the given message and code.
func NewErrorMessage(errMsg string, code int) *Message {
	body, _ := json.Marshal(Error{Error: errMsg, Code: code})
	return &Message{Type: ErrorType, Body: body}
}

// NewSuccessMessage builds a SUCCESS frame, or a frame of tag when the
// caller has a more specific response tag to use instead of generic
// SUCCESS (see ExpectedResponse).
func NewSuccessMessage(tag Type, payload any) (*Message, error) {
	if payload == nil {
		payload = map[string]any{"success": true}
	}
	return NewMessage(tag, payload)
}
