package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/asimo/internal/app"
)

// flagValues holds the raw flag inputs. Only flags the user set are applied,
// so env and the config file keep their say for everything else.
type flagValues struct {
	configPath       string
	envFiles         []string
	llmBaseURL       string
	llmModel         string
	llmKey           string
	modelTimeout     time.Duration
	userAgent        string
	fetchTimeout     time.Duration
	maxChars         int
	pdfDefault       string
	transcriptLangs  string
	chunkSize        int
	chunkOverlap     int
	mapConcurrency   int
	historyDir       string
	historyPrefix    string
	historyPDF       bool
	systemPrompt     string
	systemPromptFile string
	verbose          bool
}

func newRootCmd() *cobra.Command {
	var fv flagValues
	root := &cobra.Command{
		Use:   "asimo",
		Short: "Chat with a web page, PDF or video transcript",
		Long: `Asimo loads one document from a web page, a local PDF or a video transcript,
summarizes it, and answers questions grounded in it. Type x to end the session;
the conversation is saved as JSON.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildConfig(cmd, fv)
			if err != nil {
				return err
			}
			if cfg.Verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	bindFlags(root, &fv)
	root.AddCommand(newVersionCmd(), newShowCmd())
	return root
}

func bindFlags(cmd *cobra.Command, fv *flagValues) {
	f := cmd.Flags()
	f.StringVar(&fv.configPath, "config", "", "Path to a YAML or JSON config file")
	f.StringSliceVar(&fv.envFiles, "env-file", []string{".env"}, "Dotenv files to load; later files win")
	f.StringVar(&fv.llmBaseURL, "llm.base", "", "OpenAI-compatible base URL (env LLM_BASE_URL)")
	f.StringVar(&fv.llmModel, "llm.model", "", "Model name (env LLM_MODEL)")
	f.StringVar(&fv.llmKey, "llm.key", "", "API key (env GROQ_API or LLM_API_KEY)")
	f.DurationVar(&fv.modelTimeout, "llm.timeout", 0, "Timeout per model call (default 60s)")
	f.StringVar(&fv.userAgent, "user-agent", "", "User-Agent for web pages (env USER_AGENT)")
	f.DurationVar(&fv.fetchTimeout, "web.timeout", 0, "Timeout per web request (default 15s)")
	f.IntVar(&fv.maxChars, "web.maxChars", 0, "Character budget of normalized web text (default 3000)")
	f.StringVar(&fv.pdfDefault, "pdf.default", "", "PDF used when Enter is pressed at the PDF prompt (env PDF_DEFAULT_PATH)")
	f.StringVar(&fv.transcriptLangs, "transcript.langs", "", "Preferred transcript languages in order (default pt,pt-BR,en)")
	f.IntVar(&fv.chunkSize, "summary.chunkSize", 0, "Summary chunk size in characters (default 1000)")
	f.IntVar(&fv.chunkOverlap, "summary.overlap", 0, "Characters shared by adjacent chunks; 0 disables overlap (default 100)")
	f.IntVar(&fv.mapConcurrency, "summary.concurrency", 0, "Chunks summarized in parallel (default 4)")
	f.StringVar(&fv.historyDir, "history.dir", "", "Directory for saved conversations (env HISTORY_DIR)")
	f.StringVar(&fv.historyPrefix, "history.prefix", "", "File name prefix for saved conversations (env HISTORY_PREFIX)")
	f.BoolVar(&fv.historyPDF, "history.pdf", false, "Also save the conversation as PDF (env HISTORY_PDF)")
	f.StringVar(&fv.systemPrompt, "system-prompt", "", "System prompt; {document} marks where the document goes")
	f.StringVar(&fv.systemPromptFile, "system-prompt-file", "", "Read the system prompt from a file")
	f.BoolVarP(&fv.verbose, "verbose", "v", false, "Verbose logging")
}

// buildConfig resolves flags > env > config file > defaults.
func buildConfig(cmd *cobra.Command, fv flagValues) (app.Config, error) {
	if err := app.LoadEnvFiles(fv.envFiles...); err != nil {
		return app.Config{}, fmt.Errorf("%w: %v", app.ErrInvalidConfig, err)
	}
	var cfg app.Config
	if fv.configPath != "" {
		fc, err := app.LoadConfigFile(fv.configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("%w: %v", app.ErrInvalidConfig, err)
		}
		app.ApplyFileConfig(&cfg, fc)
		log.Debug().Str("path", fv.configPath).Msg("config file loaded")
	}
	app.ApplyEnvOverrides(&cfg)

	changed := cmd.Flags().Changed
	if changed("llm.base") {
		cfg.LLMBaseURL = fv.llmBaseURL
	}
	if changed("llm.model") {
		cfg.LLMModel = fv.llmModel
	}
	if changed("llm.key") {
		cfg.LLMAPIKey = fv.llmKey
	}
	if changed("llm.timeout") {
		cfg.ModelTimeout = fv.modelTimeout
	}
	if changed("user-agent") {
		cfg.UserAgent = fv.userAgent
	}
	if changed("web.timeout") {
		cfg.FetchTimeout = fv.fetchTimeout
	}
	if changed("web.maxChars") {
		cfg.MaxChars = fv.maxChars
	}
	if changed("pdf.default") {
		cfg.PDFDefaultPath = fv.pdfDefault
	}
	if changed("transcript.langs") {
		cfg.TranscriptLanguages = fv.transcriptLangs
	}
	if changed("summary.chunkSize") {
		cfg.ChunkSize = fv.chunkSize
	}
	if changed("summary.overlap") {
		cfg.ChunkOverlap = app.Overlap(fv.chunkOverlap)
	}
	if changed("summary.concurrency") {
		cfg.MapConcurrency = fv.mapConcurrency
	}
	if changed("history.dir") {
		cfg.HistoryDir = fv.historyDir
	}
	if changed("history.prefix") {
		cfg.HistoryPrefix = fv.historyPrefix
	}
	if changed("history.pdf") {
		cfg.HistoryPDF = fv.historyPDF
	}
	if changed("system-prompt") {
		cfg.SystemPrompt = fv.systemPrompt
	}
	if changed("system-prompt-file") {
		cfg.SystemPromptFile = fv.systemPromptFile
	}
	if changed("verbose") {
		cfg.Verbose = fv.verbose
	}
	return cfg, nil
}
