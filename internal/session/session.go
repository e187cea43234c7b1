// Package session persists the conversation transcript when a session ends.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperifyio/asimo/internal/chat"
)

// DefaultPrefix names history files when no prefix is configured.
const DefaultPrefix = "historico_asimobot"

// TimestampLayout is the creation time suffix of a history file name.
const TimestampLayout = "2006-01-02_15-04-05"

// ErrPersist wraps any failure to write the transcript.
var ErrPersist = errors.New("failed to save history")

// Exchange is the persisted form of one answered question. The keys match
// the history files written by earlier Asimo releases.
type Exchange struct {
	User      string `json:"usuario"`
	Assistant string `json:"bot"`
}

// FromChat converts conversation exchanges to their persisted form.
func FromChat(in []chat.Exchange) []Exchange {
	out := make([]Exchange, 0, len(in))
	for _, e := range in {
		out = append(out, Exchange{User: e.User, Assistant: e.Assistant})
	}
	return out
}

// Recorder writes transcripts to Dir as <Prefix>_<timestamp>.json.
type Recorder struct {
	Dir    string
	Prefix string
	// Now defaults to time.Now.
	Now func() time.Time
}

// FileName returns the base file name for a transcript created at t.
func (r *Recorder) FileName(t time.Time, ext string) string {
	prefix := strings.TrimSpace(r.Prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s_%s.%s", prefix, t.Format(TimestampLayout), strings.TrimPrefix(ext, "."))
}

// Path returns the full output path for a transcript created at t.
func (r *Recorder) Path(t time.Time, ext string) string {
	dir := r.Dir
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	return filepath.Join(dir, r.FileName(t, ext))
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Save writes the exchanges as a JSON array and returns the file path.
// The file is written to a temporary name first and renamed into place, so a
// failure never leaves a partial transcript behind.
func (r *Recorder) Save(exchanges []Exchange) (string, error) {
	if exchanges == nil {
		exchanges = []Exchange{}
	}
	path := r.Path(r.now(), "json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersist, err)
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exchanges); err != nil {
		return "", fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := writeFileAtomic(path, []byte(b.String())); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return path, nil
}

// Load reads a transcript written by Save.
func Load(path string) ([]Exchange, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []Exchange
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
