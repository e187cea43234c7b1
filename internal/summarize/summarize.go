// Package summarize compresses long documents with a map-reduce strategy:
// every chunk is summarized on its own, then partial summaries are combined
// until one remains. Any failure yields the original text.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/asimo/internal/budget"
	"github.com/hyperifyio/asimo/internal/llm"
)

const (
	// DefaultMapConcurrency bounds concurrent chunk summaries.
	DefaultMapConcurrency = 4
	// DefaultReduceTokenMax is the estimated token ceiling of one combine call.
	DefaultReduceTokenMax = 3000
)

// ErrNotConfigured is logged when no model client or model name is set.
var ErrNotConfigured = errors.New("summarizer not configured")

const promptTemplate = "Write a concise summary of the following:\n\n\"%s\"\n\nCONCISE SUMMARY:"

// Summarizer calls the model to shrink a document before it is sent on every
// conversation turn.
type Summarizer struct {
	Client   llm.Client
	Model    string
	Splitter Splitter
	// MapConcurrency caps in-flight chunk summaries. Zero means default.
	MapConcurrency int
	// ReduceTokenMax caps the estimated size of partials combined in one call.
	ReduceTokenMax int
	// CallTimeout bounds each model call. Zero means no per-call timeout.
	CallTimeout time.Duration
}

// Summarize returns a summary of text, or text itself unchanged when
// summarization fails for any reason.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	start := time.Now()
	out, calls, err := s.mapReduce(ctx, text)
	if err != nil {
		log.Warn().Err(err).Int("calls", calls).Msg("summarization failed; using original text")
		return text
	}
	log.Info().Int("in_chars", len(text)).Int("out_chars", len(out)).Int("calls", calls).
		Dur("took", time.Since(start)).Msg("document summarized")
	return out
}

func (s *Summarizer) mapReduce(ctx context.Context, text string) (string, int, error) {
	if s == nil || s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return "", 0, ErrNotConfigured
	}
	chunks, err := s.Splitter.Split(text)
	if err != nil {
		return "", 0, fmt.Errorf("split: %w", err)
	}
	if len(chunks) == 0 {
		return "", 0, errors.New("nothing to summarize")
	}
	log.Debug().Int("chunks", len(chunks)).Msg("summarizing chunks")

	partials, err := s.mapChunks(ctx, chunks)
	calls := len(chunks)
	if err != nil {
		return "", calls, fmt.Errorf("map: %w", err)
	}

	tokenMax := s.ReduceTokenMax
	if tokenMax <= 0 {
		tokenMax = DefaultReduceTokenMax
	}
	for len(partials) > 1 {
		groups := groupPartials(partials, tokenMax)
		next := make([]string, 0, len(groups))
		for _, g := range groups {
			out, err := s.summarizeOne(ctx, strings.Join(g, "\n\n"))
			calls++
			if err != nil {
				return "", calls, fmt.Errorf("reduce: %w", err)
			}
			next = append(next, out)
		}
		log.Debug().Int("from", len(partials)).Int("to", len(next)).Msg("reduced partial summaries")
		partials = next
	}
	return partials[0], calls, nil
}

// mapChunks summarizes every chunk, preserving order. The first failure
// cancels the remaining calls.
func (s *Summarizer) mapChunks(ctx context.Context, chunks []string) ([]string, error) {
	limit := s.MapConcurrency
	if limit <= 0 {
		limit = DefaultMapConcurrency
	}
	out := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, chunk := range chunks {
		g.Go(func() error {
			summary, err := s.summarizeOne(gctx, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			out[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Summarizer) summarizeOne(ctx context.Context, text string) (string, error) {
	return llm.Complete(ctx, s.Client, llm.Request{
		Model:       s.Model,
		Messages:    []openai.ChatCompletionMessage{llm.User(fmt.Sprintf(promptTemplate, text))},
		Temperature: 0,
		Timeout:     s.CallTimeout,
	})
}

// groupPartials packs consecutive partial summaries into groups whose
// estimated size stays under tokenMax. Every group holds at least two
// partials, so each reduce round strictly shrinks the list.
func groupPartials(parts []string, tokenMax int) [][]string {
	if len(parts) < 2 {
		return [][]string{parts}
	}
	var groups [][]string
	var cur []string
	curTokens := 0
	for _, p := range parts {
		t := budget.EstimateTokens(p)
		if len(cur) >= 2 && curTokens+t > tokenMax {
			groups = append(groups, cur)
			cur, curTokens = nil, 0
		}
		cur = append(cur, p)
		curTokens += t
	}
	if len(cur) == 1 && len(groups) > 0 {
		last := len(groups) - 1
		groups[last] = append(groups[last], cur[0])
	} else if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}
