// Package transcript retrieves video transcripts honoring an ordered
// language preference list.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"golang.org/x/text/language"
)

// DefaultLanguages is the preference order used when none is configured:
// primary language, its regional variant, then a fallback language.
const DefaultLanguages = "pt,pt-BR,en"

// ErrUnavailable means the video has transcripts disabled or none match the
// requested languages.
var ErrUnavailable = errors.New("transcript unavailable")

// Fetcher returns the plain text transcript for a video locator.
type Fetcher interface {
	Transcript(ctx context.Context, locator string, langs []language.Tag) (string, error)
}

// videoAPI is the subset of *youtube.Client used here.
type videoAPI interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetTranscriptCtx(ctx context.Context, video *youtube.Video, lang string) (youtube.VideoTranscript, error)
}

// YouTube fetches transcripts through github.com/kkdai/youtube.
type YouTube struct {
	Client  videoAPI
	Timeout time.Duration
}

// NewYouTube returns a fetcher backed by a default youtube.Client.
func NewYouTube(timeout time.Duration) *YouTube {
	return &YouTube{Client: &youtube.Client{}, Timeout: timeout}
}

// Transcript resolves the video, picks the first caption track matching langs
// in order, and joins the transcript segments with single spaces.
func (y *YouTube) Transcript(ctx context.Context, locator string, langs []language.Tag) (string, error) {
	if y.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.Timeout)
		defer cancel()
	}
	video, err := y.Client.GetVideoContext(ctx, strings.TrimSpace(locator))
	if err != nil {
		return "", fmt.Errorf("resolve video: %w", err)
	}
	if len(video.CaptionTracks) == 0 {
		return "", fmt.Errorf("%w: no caption tracks", ErrUnavailable)
	}
	code, ok := PickTrack(video.CaptionTracks, langs)
	if !ok {
		return "", fmt.Errorf("%w: none of %s", ErrUnavailable, FormatLanguages(langs))
	}
	segments, err := y.Client.GetTranscriptCtx(ctx, video, code)
	if err != nil {
		if errors.Is(err, youtube.ErrTranscriptDisabled) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

// PickTrack returns the language code of the first caption track matching
// the preference list. Matching is exact on canonical BCP 47 tags, so "pt"
// does not satisfy a "pt-BR" preference and vice versa.
func PickTrack(tracks []youtube.CaptionTrack, prefs []language.Tag) (string, bool) {
	for _, want := range prefs {
		for _, tr := range tracks {
			tag, err := language.Parse(tr.LanguageCode)
			if err != nil {
				continue
			}
			if tag == want {
				return tr.LanguageCode, true
			}
		}
	}
	return "", false
}

// ParseLanguages parses a comma separated list of BCP 47 tags, keeping order
// and dropping duplicates. An empty input yields DefaultLanguages.
func ParseLanguages(s string) ([]language.Tag, error) {
	if strings.TrimSpace(s) == "" {
		s = DefaultLanguages
	}
	var tags []language.Tag
	seen := make(map[language.Tag]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tag, err := language.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", part, err)
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil, errors.New("no transcript languages configured")
	}
	return tags, nil
}

// FormatLanguages renders tags back into the comma separated form.
func FormatLanguages(tags []language.Tag) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return strings.Join(out, ",")
}
