package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/asimo/internal/chat"
	"github.com/hyperifyio/asimo/internal/console"
	"github.com/hyperifyio/asimo/internal/fetch"
	"github.com/hyperifyio/asimo/internal/llm"
	"github.com/hyperifyio/asimo/internal/pdftext"
	"github.com/hyperifyio/asimo/internal/session"
	"github.com/hyperifyio/asimo/internal/source"
	"github.com/hyperifyio/asimo/internal/summarize"
	"github.com/hyperifyio/asimo/internal/transcript"
)

// App wires the extractors, summarizer, conversation and recorder for one
// interactive session.
type App struct {
	cfg          Config
	id           string
	llm          llm.Client
	registry     *source.Registry
	summarizer   *summarize.Summarizer
	console      *console.Console
	recorder     *session.Recorder
	systemPrompt string
	now          func() time.Time

	in         io.Reader
	out        io.Writer
	color      bool
	extractors []source.Extractor
}

// Option customizes an App.
type Option func(*App)

// WithLLMClient replaces the OpenAI-compatible client built from config.
func WithLLMClient(c llm.Client) Option {
	return func(a *App) { a.llm = c }
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer, color bool) Option {
	return func(a *App) { a.in, a.out, a.color = in, out, color }
}

// WithExtractors replaces the default web, PDF and video extractors.
func WithExtractors(ex ...source.Extractor) Option {
	return func(a *App) { a.extractors = ex }
}

// WithClock replaces time.Now for history file names.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New validates cfg and builds the App. A missing credential is returned as
// ErrMissingCredential before anything is printed.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	ApplyEnvToConfig(&cfg)
	fillDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	prompt, err := resolveSystemPrompt(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, id: uuid.NewString(), systemPrompt: prompt, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.in == nil || a.out == nil {
		a.in, a.out, a.color = os.Stdin, os.Stdout, console.ColorEnabled(os.Stdout)
	}

	if a.llm == nil {
		a.llm = llm.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL, newHTTPClient(0))
	}
	preflight(ctx, a.llm)

	if len(a.extractors) == 0 {
		ex, err := defaultExtractors(cfg)
		if err != nil {
			return nil, err
		}
		a.extractors = ex
	}
	a.registry = source.NewRegistry(a.extractors...)

	a.console = console.New(a.in, a.out, a.color)
	a.console.PDFDefault = cfg.PDFDefaultPath

	a.summarizer = &summarize.Summarizer{
		Client: a.llm,
		Model:  cfg.LLMModel,
		Splitter: summarize.NewSplitter(
			summarize.WithChunkSize(cfg.ChunkSize),
			summarize.WithChunkOverlap(cfg.chunkOverlap()),
		),
		MapConcurrency: cfg.MapConcurrency,
		CallTimeout:    cfg.ModelTimeout,
	}
	a.recorder = &session.Recorder{Dir: cfg.HistoryDir, Prefix: cfg.HistoryPrefix, Now: a.now}

	log.Debug().Str("session", a.id).Str("model", cfg.LLMModel).Str("base", cfg.LLMBaseURL).Msg("app ready")
	return a, nil
}

// preflight lists models when the client supports it. Failure only warns;
// the first real call reports errors to the user.
func preflight(ctx context.Context, c llm.Client) {
	lister, ok := c.(llm.ModelLister)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) > 0 {
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	} else {
		log.Warn().Msg("LLM returned zero models")
	}
}

func defaultExtractors(cfg Config) ([]source.Extractor, error) {
	langs, err := transcript.ParseLanguages(cfg.TranscriptLanguages)
	if err != nil {
		return nil, fmt.Errorf("%w: transcript languages: %v", ErrInvalidConfig, err)
	}
	fetcher := &fetch.Client{
		HTTPClient:        newHTTPClient(0),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       2,
		PerRequestTimeout: cfg.FetchTimeout,
	}
	return []source.Extractor{
		source.NewWeb(fetcher, cfg.MaxChars),
		&source.PDF{Reader: pdftext.ForLicense(cfg.UnidocLicenseKey), DefaultPath: cfg.PDFDefaultPath},
		&source.Video{Fetcher: transcript.NewYouTube(cfg.TranscriptTimeout), Languages: langs},
	}, nil
}

// Run drives one session: acquire a document, summarize it, chat until the
// exit token, then save the transcript. It returns console.ErrAborted when
// input ends or the context is cancelled before chatting starts.
func (a *App) Run(ctx context.Context) error {
	a.console.Banner()

	text, loc, err := a.console.Acquire(ctx, a.registry)
	if err != nil {
		return err
	}
	log.Info().Str("kind", string(loc.Kind)).Int("chars", len(text)).Msg("document acquired")

	a.console.Info("Summarizing content...")
	doc := a.summarizer.Summarize(ctx, text)
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", console.ErrAborted, ctx.Err())
	}

	sess := chat.NewSession(a.llm, chat.Options{
		Model:        a.cfg.LLMModel,
		SystemPrompt: a.systemPrompt,
		CallTimeout:  a.cfg.ModelTimeout,
	})
	if err := sess.Ground(doc); err != nil {
		return err
	}
	a.console.OK("Ready. Ask your questions.")

	if err := a.console.Converse(ctx, sess); err != nil {
		return err
	}

	a.persist(sess.Exchanges())
	a.console.Farewell()
	return nil
}

// persist reports failures on the console; they never change the outcome of
// the session.
func (a *App) persist(exchanges []chat.Exchange) {
	records := session.FromChat(exchanges)
	path, err := a.recorder.Save(records)
	if err != nil {
		log.Error().Err(err).Msg("save history")
		a.console.Error(err.Error())
		return
	}
	log.Info().Str("path", path).Int("exchanges", len(records)).Msg("history saved")
	a.console.OK("History saved to " + path)

	if !a.cfg.HistoryPDF {
		return
	}
	pdfPath := strings.TrimSuffix(path, ".json") + ".pdf"
	meta := session.PDFMeta{SessionID: a.id, Model: a.cfg.LLMModel, Created: a.now()}
	if err := session.WritePDF(pdfPath, meta, records); err != nil {
		log.Error().Err(err).Msg("save history pdf")
		a.console.Error(err.Error())
		return
	}
	a.console.OK("History PDF saved to " + pdfPath)
}
