package midi

import (
	"encoding/json"
	"fmt"
	"time"
)

type noteJSON struct {
	Channel  *int   `json:"channel"`
	Preset   *int   `json:"preset"`
	Key      *int   `json:"key"`
	Velocity *int   `json:"velocity"`
	Duration string `json:"duration"`
}

// UnmarshalJSON decodes a note, filling omitted fields from DefaultNote.
// Duration is a Go duration string such as "500ms".
func (n *Note) UnmarshalJSON(data []byte) error {
	var raw noteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	note := DefaultNote()
	if raw.Channel != nil {
		note.Channel = *raw.Channel
	}
	if raw.Preset != nil {
		note.Preset = *raw.Preset
	}
	if raw.Key != nil {
		note.Key = *raw.Key
	}
	if raw.Velocity != nil {
		note.Velocity = *raw.Velocity
	}
	if raw.Duration != "" {
		d, err := time.ParseDuration(raw.Duration)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("duration is negative: %s", raw.Duration)
		}
		note.Duration = d
	}

	*n = note
	return nil
}

func (n Note) MarshalJSON() ([]byte, error) {
	channel, preset, key, velocity := n.Channel, n.Preset, n.Key, n.Velocity
	return json.Marshal(noteJSON{
		Channel:  &channel,
		Preset:   &preset,
		Key:      &key,
		Velocity: &velocity,
		Duration: n.Duration.String(),
	})
}
