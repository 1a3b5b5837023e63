// Package wsmsg contains the RMX message types exchanged over a jam
// session websocket. Only MIDI messages are consumed here; the other types
// are decoded so that they can be skipped.
package wsmsg

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type (
	MsgType   int
	NoteState int

	Envelope struct {
		// Message identifier
		ID uuid.UUID `json:"id"`
		// TextMsg | MIDIMsg | ConnectMsg
		Typ MsgType `json:"type"`
		// RMX client identifier
		UserID uuid.UUID `json:"userId"`
		// Actual message data.
		Payload json.RawMessage `json:"payload"`
	}

	TextMsg struct {
		DisplayName string `json:"displayName"`
		Body        string `json:"body"`
	}

	MIDIMsg struct {
		State NoteState `json:"state"`
		// MIDI Note # in "C3 Convention", C3 = 60. Available values: (0-127)
		Number int `json:"number"`
		// MIDI Velocity (0-127)
		Velocity int `json:"velocity"`
	}

	ConnectMsg struct {
		UserID   uuid.UUID `json:"userId"`
		UserName string    `json:"userName"`
	}
)

const (
	TEXT MsgType = iota
	MIDI
	CONNECT
)

const (
	NOTE_OFF NoteState = iota
	NOTE_ON
)

var typeNames = map[MsgType]string{
	TEXT:    "text",
	MIDI:    "midi",
	CONNECT: "connect",
}

// NewEnvelope wraps payload in a fresh envelope.
func NewEnvelope(typ MsgType, userID uuid.UUID, payload any) (Envelope, error) {
	e := Envelope{ID: uuid.New(), Typ: typ, UserID: userID}
	if err := e.SetPayload(payload); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func (e *Envelope) SetPayload(payload any) error {
	p, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	e.Payload = p
	return nil
}

func (e *Envelope) Unwrap(msg any) error {
	return json.Unmarshal(e.Payload, msg)
}

// MIDI returns the envelope's MIDI payload. ok is false for other types.
func (e *Envelope) MIDI() (msg MIDIMsg, ok bool, err error) {
	if e.Typ != MIDI {
		return MIDIMsg{}, false, nil
	}
	if err := e.Unwrap(&msg); err != nil {
		return MIDIMsg{}, false, fmt.Errorf("unmarshal MIDIMsg: %w", err)
	}
	return msg, true, nil
}

func (t MsgType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MsgType(%d)", int(t))
}

func (t *MsgType) UnmarshalJSON(data []byte) error {
	var rawType string
	if err := json.Unmarshal(data, &rawType); err != nil {
		return err
	}
	for typ, name := range typeNames {
		if name == rawType {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown type: %s", rawType)
}

func (t MsgType) MarshalJSON() ([]byte, error) {
	name, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown MsgType value: %d", t)
	}
	return json.Marshal(name)
}
