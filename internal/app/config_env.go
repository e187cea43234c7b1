package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// credentialFromEnv returns GROQ_API, or LLM_API_KEY when the former is unset.
func credentialFromEnv() string {
    if v := strings.TrimSpace(os.Getenv("GROQ_API")); v != "" {
        return v
    }
    return strings.TrimSpace(os.Getenv("LLM_API_KEY"))
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    if cfg.LLMAPIKey == "" { cfg.LLMAPIKey = credentialFromEnv() }
    setString := func(dst *string, envKey string) {
        if *dst == "" { *dst = os.Getenv(envKey) }
    }
    setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
    setString(&cfg.LLMModel, "LLM_MODEL")
    setString(&cfg.UserAgent, "USER_AGENT")
    setString(&cfg.TranscriptLanguages, "TRANSCRIPT_LANGUAGES")
    setString(&cfg.PDFDefaultPath, "PDF_DEFAULT_PATH")
    setString(&cfg.HistoryDir, "HISTORY_DIR")
    setString(&cfg.HistoryPrefix, "HISTORY_PREFIX")
    setString(&cfg.SystemPrompt, "SYSTEM_PROMPT")
    setString(&cfg.SystemPromptFile, "SYSTEM_PROMPT_FILE")
    setString(&cfg.UnidocLicenseKey, "UNIDOC_LICENSE_KEY")

    // Booleans
    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            if s == "1" || s == "true" || s == "yes" || s == "on" {
                *dst = true
            }
        }
    }
    setBool(&cfg.HistoryPDF, "HISTORY_PDF")
    setBool(&cfg.Verbose, "VERBOSE")

    // Optional durations
    if cfg.ModelTimeout == 0 {
        if d, ok := envDuration("MODEL_TIMEOUT"); ok { cfg.ModelTimeout = d }
    }
    if cfg.FetchTimeout == 0 {
        if d, ok := envDuration("FETCH_TIMEOUT"); ok { cfg.FetchTimeout = d }
    }
    if cfg.MaxChars == 0 {
        if s := strings.TrimSpace(os.Getenv("MAX_CHARS")); s != "" {
            if n, err := strconv.Atoi(s); err == nil && n > 0 { cfg.MaxChars = n }
        }
    }
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This is used to let env take
// precedence over values coming from a config file while still allowing flags
// to remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := credentialFromEnv(); v != "" { cfg.LLMAPIKey = v }
    if v := os.Getenv("LLM_BASE_URL"); v != "" { cfg.LLMBaseURL = v }
    if v := os.Getenv("LLM_MODEL"); v != "" { cfg.LLMModel = v }
    if v := os.Getenv("USER_AGENT"); v != "" { cfg.UserAgent = v }
    if v := os.Getenv("TRANSCRIPT_LANGUAGES"); v != "" { cfg.TranscriptLanguages = v }
    if v := os.Getenv("PDF_DEFAULT_PATH"); v != "" { cfg.PDFDefaultPath = v }
    if v := os.Getenv("HISTORY_DIR"); v != "" { cfg.HistoryDir = v }
    if v := os.Getenv("HISTORY_PREFIX"); v != "" { cfg.HistoryPrefix = v }
    if v := os.Getenv("SYSTEM_PROMPT"); v != "" { cfg.SystemPrompt = v }
    if v := os.Getenv("SYSTEM_PROMPT_FILE"); v != "" { cfg.SystemPromptFile = v }
    if v := os.Getenv("UNIDOC_LICENSE_KEY"); v != "" { cfg.UnidocLicenseKey = v }

    if d, ok := envDuration("MODEL_TIMEOUT"); ok { cfg.ModelTimeout = d }
    if d, ok := envDuration("FETCH_TIMEOUT"); ok { cfg.FetchTimeout = d }
    if s := strings.TrimSpace(os.Getenv("MAX_CHARS")); s != "" {
        if n, err := strconv.Atoi(s); err == nil && n > 0 { cfg.MaxChars = n }
    }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.HistoryPDF, "HISTORY_PDF")
    setBool(&cfg.Verbose, "VERBOSE")
}

func envDuration(key string) (time.Duration, bool) {
    s := strings.TrimSpace(os.Getenv(key))
    if s == "" { return 0, false }
    d, err := time.ParseDuration(s)
    if err != nil || d <= 0 { return 0, false }
    return d, true
}
