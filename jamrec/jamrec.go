// Package jamrec records the notes played in an RMX jam session into a
// midi.Sequence that can be rendered like any other source.
package jamrec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/wsmsg"
)

// Dial connects to a jam websocket, for example ws://host/api/v1/jam/<id>.
func Dial(ctx context.Context, url string) (*websocket.Conn, error) {
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, fmt.Errorf("jamrec: dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("jamrec: dial %s: %w", url, err)
	}
	return ws, nil
}

type (
	// Recorder turns note-on/note-off pairs read from Conn into notes.
	Recorder struct {
		Conn *websocket.Conn
		// Stop once this many notes are complete. Zero means no limit.
		MaxNotes int
		// Clock used to time notes. Defaults to time.Now.
		Now    func() time.Time
		Logger *slog.Logger
	}

	noteKey struct {
		channel int
		key     int
	}

	held struct {
		on  time.Time
		msg wsmsg.MIDIMsg
	}

	timedNote struct {
		on   time.Time
		note midi.Note
	}
)

// Record reads until ctx is done, the peer closes the connection, or MaxNotes
// notes are complete. Notes still held at that point end there. The sequence
// is ordered by note-on time and holds at most MaxNotes notes, the earliest.
func (r *Recorder) Record(ctx context.Context) (midi.Sequence, error) {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	// Unblock the pending read once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		_ = r.Conn.SetReadDeadline(time.Now())
	})
	defer stop()

	var (
		done    []timedNote
		holding = make(map[noteKey]held)
		readErr error
	)

	for r.MaxNotes == 0 || len(done) < r.MaxNotes {
		var env wsmsg.Envelope
		if err := r.Conn.ReadJSON(&env); err != nil {
			readErr = err
			break
		}
		if env.Typ != wsmsg.MIDI {
			continue
		}

		var msg wsmsg.MIDIMsg
		if err := env.Unwrap(&msg); err != nil {
			log.Warn("skipping malformed midi message", "id", env.ID.String(), "err", err)
			continue
		}
		at := now()
		k := noteKey{channel: msg.Channel, key: msg.Number}

		if msg.State == wsmsg.NOTE_ON && msg.Velocity > 0 {
			if h, ok := holding[k]; ok {
				// Retrigger ends the previous note.
				done = append(done, finish(h, at))
			}
			holding[k] = held{on: at, msg: msg}
			continue
		}
		if h, ok := holding[k]; ok {
			done = append(done, finish(h, at))
			delete(holding, k)
		}
	}

	end := now()
	for _, h := range holding {
		done = append(done, finish(h, end))
	}
	sort.SliceStable(done, func(i, j int) bool { return done[i].on.Before(done[j].on) })
	// Retriggers and held notes can complete past the limit.
	if r.MaxNotes > 0 && len(done) > r.MaxNotes {
		done = done[:r.MaxNotes]
	}

	seq := make(midi.Sequence, 0, len(done))
	for _, tn := range done {
		seq = append(seq, tn.note)
	}

	if readErr != nil && !finished(ctx, readErr) {
		return seq, fmt.Errorf("jamrec: read: %w", readErr)
	}
	log.Debug("jam recorded", "notes", len(seq))
	return seq, nil
}

func finish(h held, off time.Time) timedNote {
	return timedNote{
		on: h.on,
		note: midi.Note{
			Channel:  h.msg.Channel,
			Preset:   h.msg.Preset,
			Key:      h.msg.Number,
			Velocity: h.msg.Velocity,
			Duration: off.Sub(h.on),
		},
	}
}

// finished reports whether err is a normal end of recording.
func finished(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
	}
	return false
}
