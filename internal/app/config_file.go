package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/asimo/internal/transcript"
)

var (
    // ErrMissingCredential is fatal: no model credential was configured.
    ErrMissingCredential = errors.New("missing model credential (set GROQ_API or LLM_API_KEY)")
    // ErrInvalidConfig wraps every other validation failure.
    ErrInvalidConfig = errors.New("invalid config")
)

// FileConfig represents the single-file configuration schema.
// Nested sections improve readability and map naturally to flags/env.
type FileConfig struct {
    LLM struct {
        BaseURL string        `yaml:"base" json:"base"`
        Model   string        `yaml:"model" json:"model"`
        APIKey  string        `yaml:"key" json:"key"`
        Timeout time.Duration `yaml:"timeout" json:"timeout"`
    } `yaml:"llm" json:"llm"`

    Web struct {
        UserAgent string        `yaml:"ua" json:"ua"`
        Timeout   time.Duration `yaml:"timeout" json:"timeout"`
        MaxChars  int           `yaml:"maxChars" json:"maxChars"`
    } `yaml:"web" json:"web"`

    PDF struct {
        DefaultPath string `yaml:"defaultPath" json:"defaultPath"`
        LicenseKey  string `yaml:"licenseKey" json:"licenseKey"`
    } `yaml:"pdf" json:"pdf"`

    Transcript struct {
        Languages []string      `yaml:"languages" json:"languages"`
        Timeout   time.Duration `yaml:"timeout" json:"timeout"`
    } `yaml:"transcript" json:"transcript"`

    Summary struct {
        ChunkSize    int  `yaml:"chunkSize" json:"chunkSize"`
        ChunkOverlap *int `yaml:"chunkOverlap" json:"chunkOverlap"`
        Concurrency  int  `yaml:"concurrency" json:"concurrency"`
    } `yaml:"summary" json:"summary"`

    Session struct {
        Dir    string `yaml:"dir" json:"dir"`
        Prefix string `yaml:"prefix" json:"prefix"`
        PDF    bool   `yaml:"pdf" json:"pdf"`
    } `yaml:"session" json:"session"`

    Prompt struct {
        System     string `yaml:"system" json:"system"`
        SystemFile string `yaml:"systemFile" json:"systemFile"`
    } `yaml:"prompt" json:"prompt"`

    Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if cfg.LLMModel == "" && fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
    if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }
    if cfg.ModelTimeout == 0 && fc.LLM.Timeout > 0 { cfg.ModelTimeout = fc.LLM.Timeout }

    if cfg.UserAgent == "" && fc.Web.UserAgent != "" { cfg.UserAgent = fc.Web.UserAgent }
    if cfg.FetchTimeout == 0 && fc.Web.Timeout > 0 { cfg.FetchTimeout = fc.Web.Timeout }
    if cfg.MaxChars == 0 && fc.Web.MaxChars > 0 { cfg.MaxChars = fc.Web.MaxChars }

    if cfg.PDFDefaultPath == "" && fc.PDF.DefaultPath != "" { cfg.PDFDefaultPath = fc.PDF.DefaultPath }
    if cfg.UnidocLicenseKey == "" && fc.PDF.LicenseKey != "" { cfg.UnidocLicenseKey = fc.PDF.LicenseKey }

    if cfg.TranscriptLanguages == "" && len(fc.Transcript.Languages) > 0 {
        cfg.TranscriptLanguages = strings.Join(fc.Transcript.Languages, ",")
    }
    if cfg.TranscriptTimeout == 0 && fc.Transcript.Timeout > 0 { cfg.TranscriptTimeout = fc.Transcript.Timeout }

    if cfg.ChunkSize == 0 && fc.Summary.ChunkSize > 0 { cfg.ChunkSize = fc.Summary.ChunkSize }
    if cfg.ChunkOverlap == nil && fc.Summary.ChunkOverlap != nil { cfg.ChunkOverlap = Overlap(*fc.Summary.ChunkOverlap) }
    if cfg.MapConcurrency == 0 && fc.Summary.Concurrency > 0 { cfg.MapConcurrency = fc.Summary.Concurrency }

    if cfg.HistoryDir == "" && fc.Session.Dir != "" { cfg.HistoryDir = fc.Session.Dir }
    if cfg.HistoryPrefix == "" && fc.Session.Prefix != "" { cfg.HistoryPrefix = fc.Session.Prefix }
    if !cfg.HistoryPDF && fc.Session.PDF { cfg.HistoryPDF = true }

    if cfg.SystemPrompt == "" && fc.Prompt.System != "" { cfg.SystemPrompt = fc.Prompt.System }
    if cfg.SystemPromptFile == "" && fc.Prompt.SystemFile != "" { cfg.SystemPromptFile = fc.Prompt.SystemFile }

    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs minimal schema validation for required settings.
// A missing credential is reported as ErrMissingCredential so callers can
// stop before any interaction.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.LLMAPIKey) == "" {
        return ErrMissingCredential
    }
    if strings.TrimSpace(cfg.LLMModel) == "" {
        return fmt.Errorf("%w: llm.model is required (or set LLM_MODEL)", ErrInvalidConfig)
    }
    if cfg.MaxChars < 0 || cfg.ChunkSize < 0 || cfg.chunkOverlap() < 0 || cfg.MapConcurrency < 0 {
        return fmt.Errorf("%w: negative limits are not allowed", ErrInvalidConfig)
    }
    if cfg.ModelTimeout < 0 || cfg.FetchTimeout < 0 || cfg.TranscriptTimeout < 0 {
        return fmt.Errorf("%w: negative timeouts are not allowed", ErrInvalidConfig)
    }
    if _, err := transcript.ParseLanguages(cfg.TranscriptLanguages); err != nil {
        return fmt.Errorf("%w: transcript languages: %v", ErrInvalidConfig, err)
    }
    return nil
}
