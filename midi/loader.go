package midi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Loader turns raw asset bytes into a Source, picking the variant by file
// extension.
type Loader struct{}

var extensions = []string{"mid", "midi", "json"}

// Extensions lists the file extensions Load understands, without the dot.
func (Loader) Extensions() []string {
	return append([]string(nil), extensions...)
}

// Handles reports whether name has an extension Load understands.
func (l Loader) Handles(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Kind returns the Source kind Load would produce for name, or "" when the
// extension is not handled.
func (Loader) Kind(name string) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".") {
	case "mid", "midi":
		return File(nil).Kind()
	case "json":
		return Sequence(nil).Kind()
	}
	return ""
}

// Load reads r to the end. MIDI files are copied as-is, parse errors surface
// later in the playback. JSON files are decoded as a note list.
func (Loader) Load(ctx context.Context, name string, r io.Reader) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case "mid", "midi":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", name, err)
		}
		return File(data), nil
	case "json":
		var seq Sequence
		if err := json.NewDecoder(r).Decode(&seq); err != nil {
			return nil, fmt.Errorf("decode %q: %w", name, err)
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("unsupported extension %q for %q", ext, name)
	}
}
