// Package resolver turns a Telegram file_id into a fetchable URL or byte
// stream by walking an ordered provider chain: the official Bot API first,
// then a mirror. The bot credential comes from a per-item override in the
// store when one exists, else the process-wide default.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gaowanliang/TG-Gallery/internal/metrics"
	"github.com/gaowanliang/TG-Gallery/internal/store"
)

// DefaultContentType is assumed when the upstream omits Content-Type.
const DefaultContentType = "image/jpeg"

var (
	// ErrNoCredential means neither a per-item override nor a default bot
	// token is available. No network calls are attempted in that case.
	ErrNoCredential = errors.New("no bot token available")
	// ErrAllProvidersFailed means every provider in the chain was tried and
	// none yielded a usable result.
	ErrAllProvidersFailed = errors.New("failed to retrieve file URL")
)

// Resolved is a direct URL for a file, tagged with the provider that
// produced it.
type Resolved struct {
	URL      string
	Provider string
}

// Stream is an open byte stream for a file, valid for one response.
// The caller owns Body and must close it.
type Stream struct {
	Body        io.ReadCloser
	ContentType string
	Provider    string
}

// Resolver walks the provider chain for one file at a time. It holds no
// per-request state and is safe for concurrent use.
type Resolver struct {
	providers    []Provider
	store        store.DataStore
	defaultToken string
	client       *http.Client
	logger       zerolog.Logger
}

// New creates a Resolver. The store may be nil, in which case only the
// default token is consulted.
func New(providers []Provider, s store.DataStore, defaultToken string, logger zerolog.Logger) *Resolver {
	return &Resolver{
		providers:    providers,
		store:        s,
		defaultToken: defaultToken,
		client:       &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

// token resolves the bot credential for fileID: per-item override first,
// then the process default. Store failures during the lookup degrade to the
// default rather than failing the request.
func (r *Resolver) token(ctx context.Context, fileID string) (string, error) {
	token := r.defaultToken

	if r.store != nil {
		item, err := r.store.FindByFileID(ctx, fileID)
		if err != nil {
			r.logger.Warn().Err(err).Str("file_id", fileID).Msg("token lookup failed, using default")
		} else if item != nil && item.Telegram.BotToken != "" {
			token = item.Telegram.BotToken
		}
	}

	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

// ResolveURL resolves fileID to a direct download URL. Providers are tried
// strictly in order, one attempt each; the first success wins.
func (r *Resolver) ResolveURL(ctx context.Context, fileID string) (*Resolved, error) {
	token, err := r.token(ctx, fileID)
	if err != nil {
		return nil, err
	}

	for i, p := range r.providers {
		filePath, err := p.FilePath(ctx, r.client, token, fileID)
		if err != nil {
			r.observeFailure(p, i, err)
			continue
		}
		r.observeSuccess(p, i)
		return &Resolved{URL: p.FileURL(token, filePath), Provider: p.Name}, nil
	}

	metrics.ResolverExhausted.Inc()
	return nil, ErrAllProvidersFailed
}

// Open resolves fileID and fetches the file itself, relaying the upstream
// byte stream. A provider only counts as successful here if its content
// fetch succeeds too; a metadata hit followed by a failed fetch still falls
// through to the next provider.
func (r *Resolver) Open(ctx context.Context, fileID string) (*Stream, error) {
	token, err := r.token(ctx, fileID)
	if err != nil {
		return nil, err
	}

	for i, p := range r.providers {
		filePath, err := p.FilePath(ctx, r.client, token, fileID)
		if err != nil {
			r.observeFailure(p, i, err)
			continue
		}

		body, contentType, err := r.fetch(ctx, p.FileURL(token, filePath))
		if err != nil {
			r.observeFailure(p, i, err)
			continue
		}

		r.observeSuccess(p, i)
		return &Stream{Body: body, ContentType: contentType, Provider: p.Name}, nil
	}

	metrics.ResolverExhausted.Inc()
	return nil, ErrAllProvidersFailed
}

// fetch downloads the resolved URL and returns the open body.
func (r *Resolver) fetch(ctx context.Context, fileURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("file fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}
	return resp.Body, contentType, nil
}

func (r *Resolver) observeSuccess(p Provider, index int) {
	metrics.ResolverAttempts.WithLabelValues(p.Name, "success").Inc()
	if index > 0 {
		metrics.ResolverFallbacks.Inc()
	}
}

func (r *Resolver) observeFailure(p Provider, index int, err error) {
	metrics.ResolverAttempts.WithLabelValues(p.Name, "failure").Inc()
	r.logger.Warn().Err(err).Str("provider", p.Name).Int("position", index).Msg("provider attempt failed")
}
