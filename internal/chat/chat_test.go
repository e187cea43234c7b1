package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

type scriptedClient struct {
	replies  []string
	fail     map[int]bool
	requests []openai.ChatCompletionRequest
}

func (c *scriptedClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	n := len(c.requests)
	c.requests = append(c.requests, req)
	if c.fail[n] {
		return openai.ChatCompletionResponse{}, errors.New("upstream 503")
	}
	reply := "ok"
	if n < len(c.replies) {
		reply = c.replies[n]
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
	}}}, nil
}

func TestGround_Transitions(t *testing.T) {
	s := NewSession(&scriptedClient{}, Options{Model: "llama3-70b-8192"})
	if s.State() != Acquiring {
		t.Fatalf("new session should be acquiring, got %v", s.State())
	}
	if err := s.Ground("  \n "); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("blank document: got %v", err)
	}
	if s.State() != Acquiring {
		t.Fatalf("failed grounding must not change state")
	}
	if err := s.Ground("doc"); err != nil {
		t.Fatalf("ground: %v", err)
	}
	if s.State() != Chatting || s.Document() != "doc" {
		t.Fatalf("state=%v doc=%q", s.State(), s.Document())
	}
	if err := s.Ground("other"); !errors.Is(err, ErrAlreadyGrounded) {
		t.Fatalf("second ground: got %v", err)
	}
	if s.Document() != "doc" {
		t.Fatalf("document must not change after grounding")
	}
}

func TestAsk_RequiresGrounding(t *testing.T) {
	c := &scriptedClient{}
	s := NewSession(c, Options{Model: "m"})
	if _, err := s.Ask(context.Background(), "hi"); !errors.Is(err, ErrNotGrounded) {
		t.Fatalf("got %v", err)
	}
	if len(c.requests) != 0 || len(s.History()) != 0 {
		t.Fatalf("no call or history expected before grounding")
	}
}

func TestAsk_SendsDocumentAndFullHistory(t *testing.T) {
	c := &scriptedClient{replies: []string{"first answer", "second answer"}}
	s := NewSession(c, Options{Model: "m"})
	if err := s.Ground("p1\np2"); err != nil {
		t.Fatal(err)
	}
	a1, err := s.Ask(context.Background(), "q1")
	if err != nil || a1 != "first answer" {
		t.Fatalf("a1=%q err=%v", a1, err)
	}
	if _, err := s.Ask(context.Background(), "q2"); err != nil {
		t.Fatal(err)
	}

	req := c.requests[1]
	if req.Model != "m" {
		t.Fatalf("model=%q", req.Model)
	}
	if len(req.Messages) != 4 {
		t.Fatalf("expected system + 3 history messages, got %d", len(req.Messages))
	}
	sys := req.Messages[0]
	if sys.Role != openai.ChatMessageRoleSystem || !strings.Contains(sys.Content, "p1\np2") || !strings.Contains(sys.Content, "Asimo") {
		t.Fatalf("system message not grounded: %+v", sys)
	}
	if strings.Contains(sys.Content, DocumentPlaceholder) {
		t.Fatalf("placeholder left in system prompt")
	}
	wantRoles := []string{openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant, openai.ChatMessageRoleUser}
	wantText := []string{"q1", "first answer", "q2"}
	for i, m := range req.Messages[1:] {
		if m.Role != wantRoles[i] || m.Content != wantText[i] {
			t.Fatalf("message %d = %s/%q", i+1, m.Role, m.Content)
		}
	}
	// the document goes out verbatim on every request
	if c.requests[0].Messages[0].Content != sys.Content {
		t.Fatalf("system prompt changed between turns")
	}

	ex := s.Exchanges()
	if len(ex) != 2 || ex[0] != (Exchange{User: "q1", Assistant: "first answer"}) || ex[1] != (Exchange{User: "q2", Assistant: "second answer"}) {
		t.Fatalf("exchanges=%+v", ex)
	}
}

func TestAsk_FailureKeepsSessionUsable(t *testing.T) {
	c := &scriptedClient{replies: []string{"", "recovered"}, fail: map[int]bool{0: true}}
	s := NewSession(c, Options{Model: "m"})
	_ = s.Ground("doc")

	_, err := s.Ask(context.Background(), "lost question")
	if !errors.Is(err, ErrModelInvocation) {
		t.Fatalf("expected ErrModelInvocation, got %v", err)
	}
	if len(s.History()) != 0 {
		t.Fatalf("failed turn must be dropped: %+v", s.History())
	}
	if s.State() != Chatting {
		t.Fatalf("session should keep chatting")
	}
	got, err := s.Ask(context.Background(), "again")
	if err != nil || got != "recovered" {
		t.Fatalf("got %q err %v", got, err)
	}
	if n := len(c.requests[1].Messages); n != 2 {
		t.Fatalf("retry should carry only system + new question, got %d", n)
	}
}

func TestAsk_EmptyAnswerIsFailure(t *testing.T) {
	c := &scriptedClient{replies: []string{"   "}}
	s := NewSession(c, Options{Model: "m"})
	_ = s.Ground("doc")
	if _, err := s.Ask(context.Background(), "q"); !errors.Is(err, ErrModelInvocation) {
		t.Fatalf("got %v", err)
	}
}

func TestCustomSystemPrompt(t *testing.T) {
	c := &scriptedClient{}
	s := NewSession(c, Options{Model: "m", SystemPrompt: "Be brief."})
	_ = s.Ground("the doc")
	_, _ = s.Ask(context.Background(), "q")
	if got := c.requests[0].Messages[0].Content; got != "Be brief.\n\nthe doc" {
		t.Fatalf("system=%q", got)
	}

	c2 := &scriptedClient{}
	s2 := NewSession(c2, Options{Model: "m", SystemPrompt: "Context: {document}. Reply in Portuguese."})
	_ = s2.Ground("X")
	_, _ = s2.Ask(context.Background(), "q")
	if got := c2.requests[0].Messages[0].Content; got != "Context: X. Reply in Portuguese." {
		t.Fatalf("system=%q", got)
	}
}

func TestHistoryIsCopy(t *testing.T) {
	s := NewSession(&scriptedClient{}, Options{Model: "m"})
	_ = s.Ground("doc")
	_, _ = s.Ask(context.Background(), "q")
	h := s.History()
	h[0].Text = "mutated"
	if s.History()[0].Text != "q" {
		t.Fatalf("history exposed internal slice")
	}
}

func TestAsk_WarnsOnceWhenHistoryOutgrowsWindow(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	// 8192 window, 512 reserved, 512 headroom: 7168 tokens of room.
	s := NewSession(&scriptedClient{}, Options{Model: "llama3-70b-8192"})
	if err := s.Ground(strings.Repeat("d", 7000*4)); err != nil {
		t.Fatalf("ground: %v", err)
	}
	before := s.Usage()
	if before.Exhausted() || before.Window != 8192 {
		t.Fatalf("grounded prompt alone should leave room: %+v", before)
	}
	if strings.Contains(buf.String(), "outgrown") {
		t.Fatalf("no warning expected yet: %s", buf.String())
	}

	for i := 0; i < 2; i++ {
		if _, err := s.Ask(context.Background(), strings.Repeat("q", 400*4)); err != nil {
			t.Fatalf("ask %d: %v", i, err)
		}
	}
	after := s.Usage()
	if !after.Exhausted() || after.Prompt <= before.Prompt {
		t.Fatalf("history should exhaust the window: before=%+v after=%+v", before, after)
	}
	if n := strings.Count(buf.String(), "outgrown"); n != 1 {
		t.Fatalf("want exactly one window warning, got %d: %s", n, buf.String())
	}
}

func TestUsage_GrowsWithHistory(t *testing.T) {
	s := NewSession(&scriptedClient{replies: []string{"an answer"}}, Options{Model: "llama-3.3-70b-versatile"})
	if err := s.Ground("doc"); err != nil {
		t.Fatalf("ground: %v", err)
	}
	start := s.Usage()
	if _, err := s.Ask(context.Background(), "a question"); err != nil {
		t.Fatalf("ask: %v", err)
	}
	next := s.Usage()
	if next.Prompt <= start.Prompt || next.Remaining >= start.Remaining {
		t.Fatalf("usage should grow: start=%+v next=%+v", start, next)
	}
	if next.Window != 128_000 {
		t.Fatalf("window=%d", next.Window)
	}
}
