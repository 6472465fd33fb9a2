package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/gaowanliang/TG-Gallery/internal/auth"
	"github.com/gaowanliang/TG-Gallery/internal/gallery"
	"github.com/gaowanliang/TG-Gallery/internal/models"
	"github.com/gaowanliang/TG-Gallery/internal/resolver"
	"github.com/gaowanliang/TG-Gallery/internal/testsupport"
)

var errTest = errors.New("store failure")

// testEnv bundles a Handler with its fakes.
type testEnv struct {
	handler *Handler
	store   *testsupport.MemStore

	primary *providerStub
	mirror  *providerStub
}

// providerStub is a minimal Bot API fake for handler tests.
type providerStub struct {
	filePath string
	content  string
	srv      *httptest.Server
}

func newProviderStub(filePath, content string) *providerStub {
	p := &providerStub{filePath: filePath, content: content}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.filePath == "" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"ok":false}`)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/file/") {
			w.Header().Set("Content-Type", "image/jpeg")
			fmt.Fprint(w, p.content)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"ok":true,"result":{"file_path":"%s"}}`, p.filePath)
	}))
	return p
}

func newTestEnv(t *testing.T, defaultToken string) *testEnv {
	t.Helper()

	ms := testsupport.NewMemStore()

	primary := newProviderStub("photos/p.jpg", "PRIMARYBYTES")
	mirror := newProviderStub("photos/p.jpg", "MIRRORBYTES")
	t.Cleanup(primary.srv.Close)
	t.Cleanup(mirror.srv.Close)

	providers := []resolver.Provider{
		{Name: "telegram", BaseURL: primary.srv.URL},
		{Name: "mirror", BaseURL: mirror.srv.URL},
	}
	res := resolver.New(providers, ms, defaultToken, zerolog.Nop())

	issuer := auth.NewTokenIssuer("test-secret")
	creds := auth.Credentials{User: "admin", Pass: "hunter2"}

	h := NewHandler(gallery.NewEngine(ms), res, ms, nil, issuer, creds, nil)
	return &testEnv{handler: h, store: ms, primary: primary, mirror: mirror}
}

// seed inserts n items with ascending identities and returns them in seed
// order (oldest first).
func (e *testEnv) seed(t *testing.T, n int) []models.Item {
	t.Helper()
	items := make([]models.Item, n)
	for i := 0; i < n; i++ {
		ms := uint64((i + 1) * 1000)
		items[i] = models.Item{
			ID:        ulid.MustNew(ms, nil).String(),
			Prompt:    fmt.Sprintf("prompt %d", i+1),
			CreatedAt: time.UnixMilli(int64(ms)).UTC(),
			Telegram:  models.Telegram{ChatID: 42, FileID: fmt.Sprintf("file-%d", i+1)},
		}
	}
	e.store.Seed(items...)
	return items
}
