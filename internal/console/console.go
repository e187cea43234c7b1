// Package console runs the interactive prompts: source selection while
// acquiring a document, then the question loop while chatting.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/asimo/internal/source"
)

// ExitToken ends the conversation. It is matched case-insensitively.
const ExitToken = "x"

// ErrAborted is returned when input ends or the context is cancelled before
// a document was acquired.
var ErrAborted = errors.New("acquisition aborted")

// Console reads answers from in and writes prompts and status lines to out.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	styles Styles
	// PDFDefault is offered when the user presses Enter at the PDF prompt.
	PDFDefault string
}

// New returns a Console. Colour is used only when color is true.
func New(in io.Reader, out io.Writer, color bool) *Console {
	return &Console{in: bufio.NewReader(in), out: out, styles: NewStyles(out, color)}
}

// Info, OK, Error and Warn print a status line.
func (c *Console) Info(msg string)  { c.status(LevelInfo, msg) }
func (c *Console) OK(msg string)    { c.status(LevelOK, msg) }
func (c *Console) Error(msg string) { c.status(LevelError, msg) }
func (c *Console) Warn(msg string)  { c.status(LevelWarning, msg) }

func (c *Console) status(level Level, msg string) {
	fmt.Fprintln(c.out, c.styles.Status(level, msg))
}

// Banner prints the welcome header.
func (c *Console) Banner() {
	fmt.Fprintln(c.out, c.styles.Title.Render("Asimo, your document assistant"))
	fmt.Fprintln(c.out, c.styles.Muted.Render("Pick a source, then ask questions about it."))
}

// Farewell prints the closing line.
func (c *Console) Farewell() {
	fmt.Fprintln(c.out, c.styles.Title.Render("Thanks for chatting with Asimo. Goodbye!"))
}

// Prompt prints label and reads one line. The trailing newline is removed.
// io.EOF is returned only when no input at all was read.
func (c *Console) Prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type menuItem struct {
	key    string
	label  string
	kind   source.Kind
	prompt string
}

func (c *Console) menu() []menuItem {
	pdfPrompt := "Enter the PDF file path: "
	if c.PDFDefault != "" {
		pdfPrompt = fmt.Sprintf("Enter the PDF file path (Enter for %s): ", c.PDFDefault)
	}
	return []menuItem{
		{key: "1", label: "Chat with a website", kind: source.KindWeb, prompt: "Enter the website URL: "},
		{key: "2", label: "Chat with a PDF", kind: source.KindPDF, prompt: pdfPrompt},
		{key: "3", label: "Chat with a video", kind: source.KindVideo, prompt: "Enter the video URL: "},
	}
}

// Acquire shows the source menu until one extractor returns text. Invalid
// choices and extraction failures re-prompt. End of input or cancellation
// returns ErrAborted.
func (c *Console) Acquire(ctx context.Context, reg *source.Registry) (string, source.Locator, error) {
	items := c.menu()
	for {
		if err := ctx.Err(); err != nil {
			return "", source.Locator{}, fmt.Errorf("%w: %v", ErrAborted, err)
		}
		fmt.Fprintln(c.out)
		for _, it := range items {
			fmt.Fprintf(c.out, "[%s] %s\n", it.key, it.label)
		}
		choice, err := c.Prompt("Choose an option: ")
		if err != nil {
			return "", source.Locator{}, fmt.Errorf("%w: %v", ErrAborted, err)
		}
		var picked *menuItem
		for i := range items {
			if strings.TrimSpace(choice) == items[i].key {
				picked = &items[i]
				break
			}
		}
		if picked == nil {
			c.Error("Invalid option. Please choose 1, 2 or 3.")
			continue
		}
		value, err := c.Prompt(picked.prompt)
		if err != nil {
			return "", source.Locator{}, fmt.Errorf("%w: %v", ErrAborted, err)
		}
		loc := source.Locator{Kind: picked.kind, Value: strings.TrimSpace(value)}
		c.Info("Loading content...")
		text, err := reg.Extract(ctx, loc)
		if err != nil {
			if ctx.Err() != nil {
				return "", source.Locator{}, fmt.Errorf("%w: %v", ErrAborted, ctx.Err())
			}
			log.Debug().Err(err).Str("kind", string(loc.Kind)).Msg("extraction failed")
			if source.IsAdvisory(err) {
				c.Warn(err.Error())
			} else {
				c.Error(err.Error())
			}
			continue
		}
		c.OK("Content loaded.")
		return text, loc, nil
	}
}

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Converse reads questions until the exit token or end of input and prints
// each answer. A failed answer is reported and the loop continues. It returns
// a non-nil error only when the context is cancelled.
func (c *Console) Converse(ctx context.Context, a Asker) error {
	fmt.Fprintf(c.out, "\nAsk anything about the content, or type %s to exit.\n", ExitToken)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := c.Prompt("You: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		q := strings.TrimSpace(line)
		if strings.EqualFold(q, ExitToken) {
			return nil
		}
		if q == "" {
			continue
		}
		answer, err := a.Ask(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Error(err.Error())
			continue
		}
		fmt.Fprintln(c.out, c.styles.Assistant.Render("Asimo: "+answer))
		fmt.Fprintln(c.out, c.styles.Muted.Render(fmt.Sprintf("Ask more or type %s to exit.", ExitToken)))
	}
}
