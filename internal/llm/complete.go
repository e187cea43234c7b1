package llm

import (
    "context"
    "errors"
    "strings"
    "time"

    openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse indicates the model returned no choices or only whitespace.
var ErrEmptyResponse = errors.New("empty model response")

// Request is the provider-neutral shape of a single chat completion.
type Request struct {
    Model       string
    Messages    []openai.ChatCompletionMessage
    Temperature float32
    // Timeout bounds the call; zero leaves only the parent context.
    Timeout time.Duration
}

// Complete issues one chat completion and returns the trimmed text of the
// first choice. It never retries; callers decide how to degrade.
func Complete(ctx context.Context, c Client, r Request) (string, error) {
    if c == nil {
        return "", errors.New("llm client not configured")
    }
    if r.Timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, r.Timeout)
        defer cancel()
    }
    resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
        Model:       r.Model,
        Messages:    r.Messages,
        Temperature: r.Temperature,
        N:           1,
    })
    if err != nil {
        return "", err
    }
    if len(resp.Choices) == 0 {
        return "", ErrEmptyResponse
    }
    out := strings.TrimSpace(resp.Choices[0].Message.Content)
    if out == "" {
        return "", ErrEmptyResponse
    }
    return out, nil
}

// System builds a system message.
func System(content string) openai.ChatCompletionMessage {
    return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: content}
}

// User builds a user message.
func User(content string) openai.ChatCompletionMessage {
    return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: content}
}

// Assistant builds an assistant message.
func Assistant(content string) openai.ChatCompletionMessage {
    return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}
}
