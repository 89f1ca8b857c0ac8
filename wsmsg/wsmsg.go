// Package wsmsg contains the RMX jam message types exchanged over websockets.
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
		// text | midi | connect
		Typ MsgType `json:"type"`
		// RMX client identifier
		UserID uuid.UUID `json:"userId"`
		// Actual message data.
		Payload json.RawMessage `json:"payload"`
	}

	MIDIMsg struct {
		State NoteState `json:"state"`
		// MIDI Note # in "C3 Convention", C3 = 60. Available values: (0-127)
		Number int `json:"number"`
		// MIDI Velocity (0-127)
		Velocity int `json:"velocity"`
		// MIDI channel, 0 when the sender leaves it out.
		Channel int `json:"channel,omitempty"`
		// General MIDI program of the sender's instrument.
		Preset int `json:"preset,omitempty"`
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

// NewMIDI wraps msg in a fresh envelope from user.
func NewMIDI(user uuid.UUID, msg MIDIMsg) (Envelope, error) {
	e := Envelope{ID: uuid.New(), Typ: MIDI, UserID: user}
	return e, e.SetPayload(msg)
}

func (e *Envelope) SetPayload(payload any) error {
	p, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	e.Payload = p
	return nil
}

func (e *Envelope) Unwrap(msg any) error {
	return json.Unmarshal(e.Payload, msg)
}

var msgTypeNames = map[MsgType]string{
	TEXT:    "text",
	MIDI:    "midi",
	CONNECT: "connect",
}

func (t MsgType) String() string {
	if name, ok := msgTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MsgType(%d)", int(t))
}

func (t *MsgType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for typ, n := range msgTypeNames {
		if n == name {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown type: %s", name)
}

func (t MsgType) MarshalJSON() ([]byte, error) {
	name, ok := msgTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown MsgType value: %d", t)
	}
	return json.Marshal(name)
}
