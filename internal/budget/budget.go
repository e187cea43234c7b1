// Package budget estimates token usage of grounded conversations against the
// context window of the configured model.
package budget

import (
    "math"
    "strings"
    "unicode/utf8"
)

// defaultWindow is assumed for models nothing else identifies.
const defaultWindow = 8192

// minHeadroom is the smallest safety margin kept free in any window.
const minHeadroom = 512

// EstimateTokensFromChars converts a character count into tokens at roughly
// four characters per token, rounding up.
func EstimateTokensFromChars(charCount int) int {
    if charCount <= 0 {
        return 0
    }
    return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens counts runes, so accented text is not overestimated.
func EstimateTokens(s string) int {
    return EstimateTokensFromChars(utf8.RuneCountInString(s))
}

// EstimatePromptTokens sums the system message and every conversation turn.
func EstimatePromptTokens(system string, turns []string) int {
    total := EstimateTokens(system)
    for _, t := range turns {
        total += EstimateTokens(t)
    }
    return total
}

// ModelContextTokens returns the context window for modelName: an exact
// table hit, then a size suffix such as "128k", then a Groq-style trailing
// window number such as "-32768", else defaultWindow.
func ModelContextTokens(modelName string) int {
    name := strings.ToLower(strings.TrimSpace(modelName))
    if name == "" {
        return defaultWindow
    }
    if v, ok := knownWindows[name]; ok {
        return v
    }
    for _, s := range sizeSuffixes {
        if strings.HasSuffix(name, s.suffix) {
            return s.tokens
        }
    }
    if n, ok := trailingWindow(name); ok {
        return n
    }
    return defaultWindow
}

// RemainingContext is the window left after the output reservation and the
// prompt. It never goes below zero.
func RemainingContext(modelName string, reservedForOutput int, promptTokens int) int {
    if reservedForOutput < 0 {
        reservedForOutput = 0
    }
    remaining := ModelContextTokens(modelName) - reservedForOutput - promptTokens
    if remaining < 0 {
        return 0
    }
    return remaining
}

// FitsInContext reports whether any room is left for the prompt.
func FitsInContext(modelName string, reservedForOutput int, promptTokens int) bool {
    return RemainingContext(modelName, reservedForOutput, promptTokens) > 0
}

// HeadroomTokens is 5% of the window, never less than minHeadroom. It absorbs
// tokenizer drift and per-message framing the estimate does not see.
func HeadroomTokens(modelName string) int {
    dyn := int(math.Ceil(float64(ModelContextTokens(modelName)) * 0.05))
    if dyn < minHeadroom {
        return minHeadroom
    }
    return dyn
}

// RemainingContextWithHeadroom is RemainingContext with HeadroomTokens also
// held back.
func RemainingContextWithHeadroom(modelName string, reservedForOutput int, promptTokens int) int {
    return RemainingContext(modelName, reservedForOutput+HeadroomTokens(modelName), promptTokens)
}

// Usage describes how much of a model window a conversation occupies.
type Usage struct {
    Prompt    int
    Window    int
    Remaining int
}

// Exhausted reports whether the next answer risks being cut or rejected.
func (u Usage) Exhausted() bool { return u.Remaining == 0 }

// Conversation measures a system prompt plus turns for modelName, keeping
// reservedForOutput and the headroom free.
func Conversation(modelName string, reservedForOutput int, system string, turns []string) Usage {
    prompt := EstimatePromptTokens(system, turns)
    return Usage{
        Prompt:    prompt,
        Window:    ModelContextTokens(modelName),
        Remaining: RemainingContextWithHeadroom(modelName, reservedForOutput, prompt),
    }
}

// knownWindows lists models served by Groq and common OpenAI-compatible
// backends. Names are lower case.
var knownWindows = map[string]int{
    "llama3-70b-8192":         8_192,
    "llama3-8b-8192":          8_192,
    "llama-3.1-8b-instant":    128_000,
    "llama-3.3-70b-versatile": 128_000,
    "llama-3.1":               128_000,
    "llama-3":                 8_192,
    "gemma2-9b-it":            8_192,
    "mixtral-8x7b-32768":      32_768,
    "gpt-4o":                  128_000,
    "gpt-4o-mini":             128_000,
    "gpt-oss-20b":             4_096,
    "openai/gpt-oss-20b":      4_096,
}

// sizeSuffixes is ordered so longer windows win on ambiguous names.
var sizeSuffixes = []struct {
    suffix string
    tokens int
}{
    {"1m", 1_000_000},
    {"512k", 512_000},
    {"200k", 200_000},
    {"128k", 128_000},
    {"32k", 32_768},
}

// trailingWindow parses a trailing "-<digits>" segment of at least 1024.
func trailingWindow(name string) (int, bool) {
    i := strings.LastIndexByte(name, '-')
    if i < 0 || i == len(name)-1 {
        return 0, false
    }
    n := 0
    for _, r := range name[i+1:] {
        if r < '0' || r > '9' {
            return 0, false
        }
        n = n*10 + int(r-'0')
        if n > 10_000_000 {
            return 0, false
        }
    }
    if n < 1024 {
        return 0, false
    }
    return n, true
}
