package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/asimo/internal/source"
)

type stubExtractor struct {
	kind  source.Kind
	calls []string
	fn    func(locator string) (string, error)
}

func (s *stubExtractor) Kind() source.Kind { return s.kind }

func (s *stubExtractor) Extract(ctx context.Context, locator string) (string, error) {
	s.calls = append(s.calls, locator)
	return s.fn(locator)
}

func newTestConsole(input string) (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out, false), &out
}

func TestAcquire_InvalidChoiceThenWeb(t *testing.T) {
	web := &stubExtractor{kind: source.KindWeb, fn: func(string) (string, error) { return "page text", nil }}
	c, out := newTestConsole("9\n1\nhttps://example.com\n")

	text, loc, err := c.Acquire(context.Background(), source.NewRegistry(web))
	require.NoError(t, err)
	assert.Equal(t, "page text", text)
	assert.Equal(t, source.Locator{Kind: source.KindWeb, Value: "https://example.com"}, loc)
	assert.Contains(t, out.String(), "Invalid option")
	assert.Contains(t, out.String(), "[3] Chat with a video")
	assert.Equal(t, []string{"https://example.com"}, web.calls)
}

func TestAcquire_NoTranscriptWarnsAndReprompts(t *testing.T) {
	video := &stubExtractor{kind: source.KindVideo, fn: func(string) (string, error) {
		return "", fmt.Errorf("%w: transcripts disabled", source.ErrNoTranscript)
	}}
	pdf := &stubExtractor{kind: source.KindPDF, fn: func(string) (string, error) { return "pdf text", nil }}
	c, out := newTestConsole("3\nhttps://youtu.be/abc\n2\n\n")
	c.PDFDefault = "doc.pdf"

	text, loc, err := c.Acquire(context.Background(), source.NewRegistry(video, pdf))
	require.NoError(t, err)
	assert.Equal(t, "pdf text", text)
	assert.Equal(t, source.KindPDF, loc.Kind)
	assert.Equal(t, []string{""}, pdf.calls, "Enter at the PDF prompt passes a blank locator")

	s := out.String()
	assert.Contains(t, s, "! ")
	assert.Contains(t, s, "transcripts disabled")
	assert.Contains(t, s, "(Enter for doc.pdf)")
	assert.Equal(t, 2, strings.Count(s, "Choose an option: "))
}

func TestAcquire_HardErrorReprompts(t *testing.T) {
	calls := 0
	web := &stubExtractor{kind: source.KindWeb, fn: func(string) (string, error) {
		calls++
		if calls == 1 {
			return "", fmt.Errorf("%w: status 500", source.ErrFetch)
		}
		return "ok", nil
	}}
	c, out := newTestConsole("1\nhttp://a\n1\nhttp://b\n")
	text, _, err := c.Acquire(context.Background(), source.NewRegistry(web))
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Contains(t, out.String(), "✖ ")
}

func TestAcquire_EOFAborts(t *testing.T) {
	c, _ := newTestConsole("7\n")
	_, _, err := c.Acquire(context.Background(), source.NewRegistry())
	assert.ErrorIs(t, err, ErrAborted)
}

func TestAcquire_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := newTestConsole("1\nhttp://a\n")
	_, _, err := c.Acquire(ctx, source.NewRegistry())
	assert.ErrorIs(t, err, ErrAborted)
}

type fakeAsker struct {
	questions []string
	failOn    string
}

func (f *fakeAsker) Ask(ctx context.Context, q string) (string, error) {
	f.questions = append(f.questions, q)
	if q == f.failOn {
		return "", errors.New("model invocation failed: 503")
	}
	return "answer to " + q, nil
}

func TestConverse_ExitTokenAndSkipsBlank(t *testing.T) {
	c, out := newTestConsole("first\n\n   \nboom\nsecond\n X \nignored\n")
	a := &fakeAsker{failOn: "boom"}

	require.NoError(t, c.Converse(context.Background(), a))
	assert.Equal(t, []string{"first", "boom", "second"}, a.questions)

	s := out.String()
	assert.Contains(t, s, "Asimo: answer to first")
	assert.Contains(t, s, "✖ model invocation failed: 503")
	assert.Contains(t, s, "Ask more or type x to exit.")
	assert.NotContains(t, s, "ignored")
}

func TestConverse_EOFEndsCleanly(t *testing.T) {
	c, _ := newTestConsole("only question")
	a := &fakeAsker{}
	require.NoError(t, c.Converse(context.Background(), a))
	assert.Equal(t, []string{"only question"}, a.questions)
}

func TestConverse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := newTestConsole("q\n")
	assert.ErrorIs(t, c.Converse(ctx, &fakeAsker{}), context.Canceled)
}

func TestStatusLevelsPlain(t *testing.T) {
	c, out := newTestConsole("")
	c.Info("info")
	c.OK("done")
	c.Warn("careful")
	c.Error("broken")
	assert.Equal(t, "i info\n✔ done\n! careful\n✖ broken\n", out.String())
}

func TestBannerAndFarewell(t *testing.T) {
	c, out := newTestConsole("")
	c.Banner()
	c.Farewell()
	assert.Contains(t, out.String(), "Asimo")
	assert.Contains(t, out.String(), "Goodbye")
}

func TestColorEnabled_NonFile(t *testing.T) {
	assert.False(t, ColorEnabled(&bytes.Buffer{}))
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(&bytes.Buffer{}))
}
