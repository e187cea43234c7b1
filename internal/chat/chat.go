// Package chat holds the conversation state for one grounded session.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/asimo/internal/budget"
	"github.com/hyperifyio/asimo/internal/llm"
)

// DocumentPlaceholder marks where the grounded document is inserted in the
// system prompt.
const DocumentPlaceholder = "{document}"

// DefaultSystemPrompt sets the assistant persona.
const DefaultSystemPrompt = "You are a friendly assistant named Asimo. " +
	"Use the following information to answer the user's questions, " +
	"and answer succinctly and compactly: " + DocumentPlaceholder

// DefaultReservedOutputTokens is kept free in the context window for the answer.
const DefaultReservedOutputTokens = 512

var (
	// ErrEmptyDocument is returned when grounding with blank text.
	ErrEmptyDocument = errors.New("grounded document is empty")
	// ErrAlreadyGrounded is returned when a session is grounded twice.
	ErrAlreadyGrounded = errors.New("session already grounded")
	// ErrNotGrounded is returned when asking before a document is fixed.
	ErrNotGrounded = errors.New("session not grounded")
	// ErrModelInvocation wraps a failed conversational model call.
	ErrModelInvocation = errors.New("model invocation failed")
)

// State is the conversation phase.
type State int

const (
	// Acquiring means no document has been fixed yet.
	Acquiring State = iota
	// Chatting means the document is fixed and turns may be exchanged.
	Chatting
)

func (s State) String() string {
	switch s {
	case Acquiring:
		return "acquiring"
	case Chatting:
		return "chatting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation.
type Turn struct {
	Role Role
	Text string
}

// Options configures a Session.
type Options struct {
	Model string
	// SystemPrompt overrides DefaultSystemPrompt. When it lacks
	// DocumentPlaceholder the document is appended after it.
	SystemPrompt string
	Temperature  float32
	// CallTimeout bounds each model call. Zero means no per-call timeout.
	CallTimeout time.Duration
	// ReservedOutputTokens is subtracted from the model window when checking
	// whether the grounded prompt fits.
	ReservedOutputTokens int
}

// Session is a single-document conversation. It is not safe for concurrent use.
type Session struct {
	client  llm.Client
	opts    Options
	state   State
	doc     string
	system  string
	history []Turn
	// warned is set once the window warning has been logged.
	warned  bool
}

// NewSession returns a session in the Acquiring state.
func NewSession(client llm.Client, opts Options) *Session {
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.ReservedOutputTokens <= 0 {
		opts.ReservedOutputTokens = DefaultReservedOutputTokens
	}
	return &Session{client: client, opts: opts, state: Acquiring}
}

// State reports the current phase.
func (s *Session) State() State { return s.state }

// Document returns the grounded document, empty while acquiring.
func (s *Session) Document() string { return s.doc }

// Ground fixes the document for the rest of the session and moves to Chatting.
func (s *Session) Ground(doc string) error {
	if s.state == Chatting {
		return ErrAlreadyGrounded
	}
	if strings.TrimSpace(doc) == "" {
		return ErrEmptyDocument
	}
	s.doc = doc
	s.system = renderSystemPrompt(s.opts.SystemPrompt, doc)
	s.state = Chatting

	tokens := budget.EstimateTokens(s.system)
	logger := log.With().Int("tokens", tokens).Str("model", s.opts.Model).Logger()
	if !budget.FitsInContext(s.opts.Model, s.opts.ReservedOutputTokens, tokens) {
		logger.Warn().Int("window", budget.ModelContextTokens(s.opts.Model)).
			Msg("grounded prompt may not fit the model context window")
	} else {
		logger.Debug().Msg("session grounded")
	}
	return nil
}

// Ask sends one question with the grounded prompt and the full history, and
// records the answer. A failed call leaves the history as it was.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	if s.state != Chatting {
		return "", ErrNotGrounded
	}
	s.history = append(s.history, Turn{Role: RoleUser, Text: question})
	if u := s.Usage(); u.Exhausted() && !s.warned {
		s.warned = true
		log.Warn().Str("model", s.opts.Model).Int("tokens", u.Prompt).Int("window", u.Window).
			Int("turns", len(s.history)).Msg("conversation has outgrown the model context window; answers may be cut or rejected")
	}

	answer, err := llm.Complete(ctx, s.client, llm.Request{
		Model:       s.opts.Model,
		Messages:    s.messages(),
		Temperature: s.opts.Temperature,
		Timeout:     s.opts.CallTimeout,
	})
	if err != nil {
		s.history = s.history[:len(s.history)-1]
		return "", fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}
	s.history = append(s.history, Turn{Role: RoleAssistant, Text: answer})
	return answer, nil
}

// Usage measures the grounded prompt plus the history against the model window.
func (s *Session) Usage() budget.Usage {
	turns := make([]string, len(s.history))
	for i, t := range s.history {
		turns[i] = t.Text
	}
	return budget.Conversation(s.opts.Model, s.opts.ReservedOutputTokens, s.system, turns)
}

// History returns a copy of the turns so far.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Exchange is one answered question.
type Exchange struct {
	User      string
	Assistant string
}

// Exchanges pairs each user turn with the assistant turn that answered it,
// in submission order.
func (s *Session) Exchanges() []Exchange {
	var out []Exchange
	for i := 0; i+1 < len(s.history); i++ {
		if s.history[i].Role == RoleUser && s.history[i+1].Role == RoleAssistant {
			out = append(out, Exchange{User: s.history[i].Text, Assistant: s.history[i+1].Text})
			i++
		}
	}
	return out
}

func (s *Session) messages() []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(s.history)+1)
	msgs = append(msgs, llm.System(s.system))
	for _, t := range s.history {
		if t.Role == RoleAssistant {
			msgs = append(msgs, llm.Assistant(t.Text))
		} else {
			msgs = append(msgs, llm.User(t.Text))
		}
	}
	return msgs
}

func renderSystemPrompt(prompt, doc string) string {
	if strings.Contains(prompt, DocumentPlaceholder) {
		return strings.ReplaceAll(prompt, DocumentPlaceholder, doc)
	}
	return strings.TrimRight(prompt, " \n") + "\n\n" + doc
}
