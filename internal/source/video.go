package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/hyperifyio/asimo/internal/transcript"
)

// Video retrieves a video's transcript in the first available preferred language.
type Video struct {
	Fetcher   transcript.Fetcher
	Languages []language.Tag
}

func (v *Video) Kind() Kind { return KindVideo }

func (v *Video) Extract(ctx context.Context, locator string) (string, error) {
	loc := strings.TrimSpace(locator)
	if loc == "" {
		return "", fmt.Errorf("%w: no video URL given", ErrInvalidLocator)
	}
	text, err := v.Fetcher.Transcript(ctx, loc, v.Languages)
	if err != nil {
		if errors.Is(err, transcript.ErrUnavailable) {
			return "", fmt.Errorf("%w: %v", ErrNoTranscript, err)
		}
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: transcript is empty", ErrEmptyContent)
	}
	return text, nil
}
