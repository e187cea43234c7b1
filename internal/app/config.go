package app

import (
	"time"

	"github.com/hyperifyio/asimo/internal/llm"
)

// Config holds runtime configuration for the application.
type Config struct {
	// LLM
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	ModelTimeout time.Duration

	// Web source
	UserAgent    string
	FetchTimeout time.Duration
	MaxChars     int

	// PDF source
	PDFDefaultPath   string
	UnidocLicenseKey string

	// Video source
	TranscriptLanguages string
	TranscriptTimeout   time.Duration

	// Summarizer
	ChunkSize      int
	// ChunkOverlap is a pointer so an explicit 0 survives defaulting.
	ChunkOverlap   *int
	MapConcurrency int

	// Conversation
	SystemPrompt     string
	SystemPromptFile string

	// Session history
	HistoryDir    string
	HistoryPrefix string
	HistoryPDF    bool

	// Behavior
	Verbose bool
}

const (
	defaultLLMBaseURL          = llm.GroqBaseURL
	defaultLLMModel            = "llama3-70b-8192"
	defaultModelTimeout        = 60 * time.Second
	defaultFetchTimeout        = 15 * time.Second
	defaultTranscriptTimeout   = 30 * time.Second
	defaultMaxChars            = 3000
	defaultTranscriptLanguages = "pt,pt-BR,en"
	defaultChunkSize           = 1000
	defaultChunkOverlap        = 100
	defaultMapConcurrency      = 4
	defaultHistoryDir          = "."
	defaultHistoryPrefix       = "historico_asimobot"
)

// Defaults returns a Config with every optional field set. The credential is
// left empty.
func Defaults() Config {
	var cfg Config
	fillDefaults(&cfg)
	return cfg
}

// fillDefaults sets zero-valued optional fields.
func fillDefaults(cfg *Config) {
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = defaultLLMBaseURL
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultLLMModel
	}
	if cfg.ModelTimeout == 0 {
		cfg.ModelTimeout = defaultModelTimeout
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.TranscriptTimeout == 0 {
		cfg.TranscriptTimeout = defaultTranscriptTimeout
	}
	if cfg.MaxChars == 0 {
		cfg.MaxChars = defaultMaxChars
	}
	if cfg.TranscriptLanguages == "" {
		cfg.TranscriptLanguages = defaultTranscriptLanguages
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.ChunkOverlap == nil {
		cfg.ChunkOverlap = Overlap(defaultChunkOverlap)
	}
	if cfg.MapConcurrency == 0 {
		cfg.MapConcurrency = defaultMapConcurrency
	}
	if cfg.HistoryDir == "" {
		cfg.HistoryDir = defaultHistoryDir
	}
	if cfg.HistoryPrefix == "" {
		cfg.HistoryPrefix = defaultHistoryPrefix
	}
}

// Overlap returns a ChunkOverlap value.
func Overlap(n int) *int { return &n }

// chunkOverlap reads ChunkOverlap, treating unset as the default.
func (c Config) chunkOverlap() int {
	if c.ChunkOverlap == nil {
		return defaultChunkOverlap
	}
	return *c.ChunkOverlap
}
