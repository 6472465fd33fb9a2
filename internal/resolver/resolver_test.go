package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gaowanliang/TG-Gallery/internal/models"
	"github.com/gaowanliang/TG-Gallery/internal/testsupport"
)

// fakeBotAPI simulates a Telegram Bot API endpoint: getFile metadata plus
// file downloads.
type fakeBotAPI struct {
	t *testing.T

	filePath    string // returned by getFile; empty means negative ack
	fileContent string
	contentType string
	fetchStatus int // status for file downloads, 0 means 200

	getFileCalls int
	fetchCalls   int
	seenTokens   []string
}

func (f *fakeBotAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/getFile"):
			f.getFileCalls++
			// Path shape: /bot<token>/getFile
			token := strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, "/getFile"), "/bot")
			f.seenTokens = append(f.seenTokens, token)
			w.Header().Set("Content-Type", "application/json")
			if f.filePath == "" {
				fmt.Fprint(w, `{"ok":false,"description":"file not found"}`)
				return
			}
			fmt.Fprintf(w, `{"ok":true,"result":{"file_path":"%s"}}`, f.filePath)
		case strings.Contains(r.URL.Path, "/file/bot"):
			f.fetchCalls++
			if f.fetchStatus != 0 && f.fetchStatus != http.StatusOK {
				w.WriteHeader(f.fetchStatus)
				return
			}
			if f.contentType != "" {
				w.Header().Set("Content-Type", f.contentType)
			} else {
				// Suppress net/http content sniffing so the resolver
				// sees a missing Content-Type.
				w.Header()["Content-Type"] = nil
			}
			io.WriteString(w, f.fileContent)
		default:
			f.t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestResolver(t *testing.T, primary, mirror *fakeBotAPI, ms *testsupport.MemStore, defaultToken string) (*Resolver, func()) {
	t.Helper()

	primarySrv := httptest.NewServer(primary.handler())
	mirrorSrv := httptest.NewServer(mirror.handler())

	providers := []Provider{
		{Name: "telegram", BaseURL: primarySrv.URL},
		{Name: "mirror", BaseURL: mirrorSrv.URL},
	}
	r := New(providers, ms, defaultToken, zerolog.Nop())
	return r, func() {
		primarySrv.Close()
		mirrorSrv.Close()
	}
}

func TestResolveURLUsesPrimaryProvider(t *testing.T) {
	primary := &fakeBotAPI{t: t, filePath: "photos/file_1.jpg"}
	mirror := &fakeBotAPI{t: t}
	r, done := newTestResolver(t, primary, mirror, testsupport.NewMemStore(), "default-token")
	defer done()

	resolved, err := r.ResolveURL(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ResolveURL error: %v", err)
	}
	if resolved.Provider != "telegram" {
		t.Errorf("expected primary provider, got %s", resolved.Provider)
	}
	if !strings.HasSuffix(resolved.URL, "/file/botdefault-token/photos/file_1.jpg") {
		t.Errorf("unexpected URL %s", resolved.URL)
	}
	if mirror.getFileCalls != 0 {
		t.Errorf("mirror should not be called, got %d calls", mirror.getFileCalls)
	}
}

func TestResolveURLFallsBackToMirror(t *testing.T) {
	primary := &fakeBotAPI{t: t} // negative acknowledgement
	mirror := &fakeBotAPI{t: t, filePath: "photos/file_2.jpg"}
	r, done := newTestResolver(t, primary, mirror, testsupport.NewMemStore(), "tok")
	defer done()

	resolved, err := r.ResolveURL(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ResolveURL error: %v", err)
	}
	if resolved.Provider != "mirror" {
		t.Errorf("expected mirror provider, got %s", resolved.Provider)
	}
	if primary.getFileCalls != 1 {
		t.Errorf("expected exactly one primary attempt, got %d", primary.getFileCalls)
	}
}

func TestResolveURLFallsBackOnNetworkError(t *testing.T) {
	mirror := &fakeBotAPI{t: t, filePath: "photos/file_3.jpg"}
	mirrorSrv := httptest.NewServer(mirror.handler())
	defer mirrorSrv.Close()

	// Primary points at a closed server.
	deadSrv := httptest.NewServer(http.NotFoundHandler())
	deadURL := deadSrv.URL
	deadSrv.Close()

	providers := []Provider{
		{Name: "telegram", BaseURL: deadURL},
		{Name: "mirror", BaseURL: mirrorSrv.URL},
	}
	r := New(providers, testsupport.NewMemStore(), "tok", zerolog.Nop())

	resolved, err := r.ResolveURL(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ResolveURL error: %v", err)
	}
	if resolved.Provider != "mirror" {
		t.Errorf("expected mirror provider, got %s", resolved.Provider)
	}
}

func TestResolveURLAllProvidersFail(t *testing.T) {
	primary := &fakeBotAPI{t: t}
	mirror := &fakeBotAPI{t: t}
	r, done := newTestResolver(t, primary, mirror, testsupport.NewMemStore(), "tok")
	defer done()

	_, err := r.ResolveURL(context.Background(), "abc123")
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}
	if primary.getFileCalls != 1 || mirror.getFileCalls != 1 {
		t.Errorf("expected one attempt per provider, got %d and %d", primary.getFileCalls, mirror.getFileCalls)
	}
}

func TestResolveURLUsesPerItemTokenOverride(t *testing.T) {
	ms := testsupport.NewMemStore()
	ms.Seed(models.Item{
		ID:       "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Telegram: models.Telegram{FileID: "abc123", BotToken: "override-token"},
	})

	primary := &fakeBotAPI{t: t, filePath: "photos/file_4.jpg"}
	mirror := &fakeBotAPI{t: t}
	r, done := newTestResolver(t, primary, mirror, ms, "default-token")
	defer done()

	resolved, err := r.ResolveURL(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ResolveURL error: %v", err)
	}
	if len(primary.seenTokens) != 1 || primary.seenTokens[0] != "override-token" {
		t.Errorf("expected override token, saw %v", primary.seenTokens)
	}
	if !strings.Contains(resolved.URL, "botoverride-token") {
		t.Errorf("URL should embed the override token: %s", resolved.URL)
	}
}

func TestResolveURLStoreErrorFallsBackToDefaultToken(t *testing.T) {
	ms := testsupport.NewMemStore()
	ms.FailWith = errors.New("store down")

	primary := &fakeBotAPI{t: t, filePath: "photos/file_5.jpg"}
	mirror := &fakeBotAPI{t: t}
	r, done := newTestResolver(t, primary, mirror, ms, "default-token")
	defer done()

	if _, err := r.ResolveURL(context.Background(), "abc123"); err != nil {
		t.Fatalf("ResolveURL error: %v", err)
	}
	if len(primary.seenTokens) != 1 || primary.seenTokens[0] != "default-token" {
		t.Errorf("expected default token, saw %v", primary.seenTokens)
	}
}

func TestResolveURLNoCredential(t *testing.T) {
	primary := &fakeBotAPI{t: t, filePath: "photos/file_6.jpg"}
	mirror := &fakeBotAPI{t: t}
	r, done := newTestResolver(t, primary, mirror, testsupport.NewMemStore(), "")
	defer done()

	_, err := r.ResolveURL(context.Background(), "abc123")
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if primary.getFileCalls != 0 || mirror.getFileCalls != 0 {
		t.Error("no network calls should be attempted without a credential")
	}
}

func TestOpenStreamsContent(t *testing.T) {
	primary := &fakeBotAPI{t: t, filePath: "photos/file_7.jpg", fileContent: "JPEGBYTES", contentType: "image/png"}
	mirror := &fakeBotAPI{t: t}
	r, done := newTestResolver(t, primary, mirror, testsupport.NewMemStore(), "tok")
	defer done()

	stream, err := r.Open(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer stream.Body.Close()

	if stream.ContentType != "image/png" {
		t.Errorf("expected image/png, got %s", stream.ContentType)
	}
	body, _ := io.ReadAll(stream.Body)
	if string(body) != "JPEGBYTES" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestOpenFallsBackWhenContentFetchFails(t *testing.T) {
	// Primary resolves metadata but the content fetch 404s.
	primary := &fakeBotAPI{t: t, filePath: "photos/file_8.jpg", fetchStatus: http.StatusNotFound}
	mirror := &fakeBotAPI{t: t, filePath: "photos/file_8.jpg", fileContent: "MIRRORBYTES"}
	r, done := newTestResolver(t, primary, mirror, testsupport.NewMemStore(), "tok")
	defer done()

	stream, err := r.Open(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer stream.Body.Close()

	if stream.Provider != "mirror" {
		t.Errorf("expected mirror provider, got %s", stream.Provider)
	}
	if primary.fetchCalls != 1 {
		t.Errorf("expected one primary fetch attempt, got %d", primary.fetchCalls)
	}
	body, _ := io.ReadAll(stream.Body)
	if string(body) != "MIRRORBYTES" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestOpenDefaultsContentType(t *testing.T) {
	primary := &fakeBotAPI{t: t, filePath: "photos/file_9.jpg", fileContent: "X"}
	mirror := &fakeBotAPI{t: t}
	r, done := newTestResolver(t, primary, mirror, testsupport.NewMemStore(), "tok")
	defer done()

	stream, err := r.Open(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer stream.Body.Close()

	if stream.ContentType != DefaultContentType {
		t.Errorf("expected %s, got %s", DefaultContentType, stream.ContentType)
	}
}
