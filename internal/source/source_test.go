package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/hyperifyio/asimo/internal/fetch"
	"github.com/hyperifyio/asimo/internal/pdftext"
	"github.com/hyperifyio/asimo/internal/transcript"
)

func newWeb() *Web {
	return NewWeb(&fetch.Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second}, 0)
}

func TestWeb_InvalidScheme(t *testing.T) {
	for _, loc := range []string{"example.com", "ftp://example.com/x", "", "javascript:alert(1)"} {
		_, err := newWeb().Extract(context.Background(), loc)
		if !errors.Is(err, ErrInvalidLocator) {
			t.Fatalf("%q: expected ErrInvalidLocator, got %v", loc, err)
		}
	}
}

func TestWeb_MainWithTwoParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><nav>Menu</nav><main><p>First paragraph.</p><p>Second paragraph.</p></main><footer>Foot</footer></body></html>`))
	}))
	defer srv.Close()

	text, err := newWeb().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "First paragraph.\nSecond paragraph." {
		t.Fatalf("text=%q", text)
	}
}

func TestWeb_PlainTextBodyIsNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`<main><p>Body</p></main>`))
	}))
	defer srv.Close()

	text, err := newWeb().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("a 2xx body must reach the normalizer: %v", err)
	}
	if text != "Body" {
		t.Fatalf("text=%q", text)
	}
}

func TestWeb_PreviewIsTakenBeforeTheCut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<main><p>0123456789</p><p>tail-marker</p></main>`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	defer func() { log.Logger = prev }()

	web := NewWeb(&fetch.Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second}, 4)
	text, err := web.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "0123" {
		t.Fatalf("text=%q", text)
	}
	if !strings.Contains(buf.String(), "tail-marker") {
		t.Fatalf("preview should include text past the cut, log=%s", buf.String())
	}
}

func TestWeb_Non2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newWeb().Extract(context.Background(), srv.URL)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestWeb_NetworkErrorIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newWeb().Extract(context.Background(), url)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestWeb_DecorativeOnlyIsAdvisory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><script>x()</script><nav><li>Home</li></nav><footer><p>c</p></footer></body></html>`))
	}))
	defer srv.Close()

	_, err := newWeb().Extract(context.Background(), srv.URL)
	if !errors.Is(err, ErrEmptyContent) || !IsAdvisory(err) {
		t.Fatalf("expected advisory ErrEmptyContent, got %v", err)
	}
}

type fakePages struct {
	pages []string
	err   error
	calls int
}

func (f *fakePages) PageTexts(ctx context.Context, path string) ([]string, error) {
	f.calls++
	return f.pages, f.err
}

func writeFile(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestPDF_MissingFileIsNotFound(t *testing.T) {
	reader := &fakePages{pages: []string{"never"}}
	p := &PDF{Reader: reader}
	text, err := p.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if text != "" {
		t.Fatalf("expected no text, got %q", text)
	}
	if reader.calls != 0 {
		t.Fatalf("parser must not run for a missing file")
	}
}

func TestPDF_DirectoryIsNotFound(t *testing.T) {
	p := &PDF{Reader: &fakePages{}}
	_, err := p.Extract(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPDF_SkipsBlankPages(t *testing.T) {
	path := writeFile(t, "doc.pdf")
	p := &PDF{Reader: &fakePages{pages: []string{"Page one", "   \n", "Page three"}}}
	text, err := p.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Page one\nPage three" {
		t.Fatalf("text=%q", text)
	}
}

func TestPDF_DefaultPathWhenBlank(t *testing.T) {
	path := writeFile(t, "default.pdf")
	p := &PDF{Reader: &fakePages{pages: []string{"Default"}}, DefaultPath: path}
	text, err := p.Extract(context.Background(), "  ")
	if err != nil || text != "Default" {
		t.Fatalf("text=%q err=%v", text, err)
	}
}

func TestPDF_WhitespaceOnlyIsEmptyContent(t *testing.T) {
	path := writeFile(t, "blank.pdf")
	p := &PDF{Reader: &fakePages{pages: []string{" ", "\n\t"}}}
	_, err := p.Extract(context.Background(), path)
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestPDF_ParserFailureIsExtractionError(t *testing.T) {
	path := writeFile(t, "broken.pdf")
	p := &PDF{Reader: &fakePages{err: errors.New("xref table corrupt")}}
	_, err := p.Extract(context.Background(), path)
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestPDF_ReadsGeneratedFileWithoutLicense(t *testing.T) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 14)
	doc.AddPage()
	doc.Cell(40, 10, "Hello grounded world")
	path := filepath.Join(t.TempDir(), "hello.pdf")
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	p := &PDF{Reader: pdftext.ForLicense("")}
	text, err := p.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got := strings.Join(strings.Fields(text), " "); !strings.Contains(got, "Hello grounded world") {
		t.Fatalf("text=%q", text)
	}
}

type fakeTranscripts struct {
	text  string
	err   error
	langs []language.Tag
}

func (f *fakeTranscripts) Transcript(ctx context.Context, locator string, langs []language.Tag) (string, error) {
	f.langs = langs
	return f.text, f.err
}

func TestVideo_DisabledIsNoTranscript(t *testing.T) {
	v := &Video{Fetcher: &fakeTranscripts{err: fmt.Errorf("%w: disabled", transcript.ErrUnavailable)}}
	_, err := v.Extract(context.Background(), "https://www.youtube.com/watch?v=abc")
	if !errors.Is(err, ErrNoTranscript) || !IsAdvisory(err) {
		t.Fatalf("expected advisory ErrNoTranscript, got %v", err)
	}
}

func TestVideo_OtherFailureIsExtractionError(t *testing.T) {
	v := &Video{Fetcher: &fakeTranscripts{err: errors.New("player response missing")}}
	_, err := v.Extract(context.Background(), "https://www.youtube.com/watch?v=abc")
	if !errors.Is(err, ErrExtraction) || IsAdvisory(err) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestVideo_PassesLanguagePreference(t *testing.T) {
	prefs, _ := transcript.ParseLanguages("en,pt")
	f := &fakeTranscripts{text: "hello there"}
	v := &Video{Fetcher: f, Languages: prefs}
	text, err := v.Extract(context.Background(), "abc")
	if err != nil || text != "hello there" {
		t.Fatalf("text=%q err=%v", text, err)
	}
	if transcript.FormatLanguages(f.langs) != "en,pt" {
		t.Fatalf("languages=%v", f.langs)
	}
}

type stubExtractor struct {
	kind Kind
	fn   func(string) (string, error)
}

func (s stubExtractor) Kind() Kind { return s.kind }
func (s stubExtractor) Extract(ctx context.Context, loc string) (string, error) {
	return s.fn(loc)
}

func TestRegistry_DispatchesByKind(t *testing.T) {
	reg := NewRegistry(
		stubExtractor{KindWeb, func(l string) (string, error) { return "web:" + l, nil }},
		stubExtractor{KindPDF, func(l string) (string, error) { return "pdf:" + l, nil }},
	)
	got, err := reg.Extract(context.Background(), Locator{Kind: KindPDF, Value: "a.pdf"})
	if err != nil || got != "pdf:a.pdf" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if _, err := reg.Extract(context.Background(), Locator{Kind: KindVideo}); !errors.Is(err, ErrInvalidLocator) {
		t.Fatalf("unregistered kind should be ErrInvalidLocator, got %v", err)
	}
	if kinds := reg.Kinds(); len(kinds) != 2 || kinds[0] != KindWeb {
		t.Fatalf("kinds=%v", kinds)
	}
}

func TestRegistry_EmptyAndPanicBecomeTypedErrors(t *testing.T) {
	reg := NewRegistry(
		stubExtractor{KindWeb, func(string) (string, error) { return "  \n", nil }},
		stubExtractor{KindPDF, func(string) (string, error) { panic("bad xref") }},
	)
	if _, err := reg.Extract(context.Background(), Locator{Kind: KindWeb}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	_, err := reg.Extract(context.Background(), Locator{Kind: KindPDF})
	if !errors.Is(err, ErrExtraction) || !strings.Contains(err.Error(), "bad xref") {
		t.Fatalf("expected ErrExtraction from panic, got %v", err)
	}
}
