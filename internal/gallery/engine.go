// Package gallery implements listing and deletion over the gallery item
// collection: cursor pagination on item identity, the legacy flat listing,
// and single-item delete.
package gallery

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/gaowanliang/TG-Gallery/internal/models"
	"github.com/gaowanliang/TG-Gallery/internal/store"
)

const (
	// DefaultLimit applies when a supplied limit does not parse.
	DefaultLimit = 60
	// MaxLimit is the upper clamp for both pagination and legacy modes.
	MaxLimit = 200
)

var (
	// ErrInvalidCursor marks a cursor that is not a well-formed item identity.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrMissingID marks a delete request without an id.
	ErrMissingID = errors.New("missing id")
	// ErrInvalidID marks a delete id that is not a well-formed item identity.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound marks a delete whose target does not exist.
	ErrNotFound = store.ErrNotFound
)

// ListParams carries the raw pagination inputs from the query string.
// HasLimit distinguishes an absent limit parameter from an empty one: the
// presence of either parameter, even empty, selects pagination mode.
type ListParams struct {
	Limit    string
	HasLimit bool
	Cursor   string
}

// Paginated reports whether the caller asked for cursor pagination rather
// than the legacy flat listing.
func (p ListParams) Paginated() bool {
	return p.HasLimit || strings.TrimSpace(p.Cursor) != ""
}

// EffectiveLimit resolves the raw limit string: the leading integer prefix is
// taken ("12abc" reads as 12, "2.5" as 2), values with no such prefix fall
// back to DefaultLimit, and the result is clamped to [1, MaxLimit].
func (p ListParams) EffectiveLimit() int {
	n, ok := leadingInt(strings.TrimSpace(p.Limit))
	if !ok {
		return DefaultLimit
	}
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// leadingInt parses the signed base-10 integer prefix of s.
func leadingInt(s string) (int, bool) {
	rest := s
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		rest = rest[1:]
	}
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:len(s)-len(rest)+digits])
	if err != nil {
		// A digit run long enough to overflow int still reads as a number,
		// just one far outside the clamp range.
		if s[0] == '-' {
			return -1, true
		}
		return MaxLimit + 1, true
	}
	return n, true
}

// Engine pages through gallery items stored in a DataStore.
type Engine struct {
	store store.DataStore
}

// NewEngine creates a pagination engine over the given store.
func NewEngine(s store.DataStore) *Engine {
	return &Engine{store: s}
}

// List returns one page of items in descending identity order. The page
// contains items with identity strictly less than the cursor when one is
// given. It fetches limit+1 rows to detect continuation without a second
// round-trip.
func (e *Engine) List(ctx context.Context, params ListParams) (*models.Page, error) {
	limit := params.EffectiveLimit()

	cursor := strings.TrimSpace(params.Cursor)
	if cursor != "" {
		if _, err := ulid.ParseStrict(cursor); err != nil {
			return nil, ErrInvalidCursor
		}
	}

	rows, err := e.store.ListPage(ctx, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	items := make([]models.ItemView, len(rows))
	for i, row := range rows {
		items[i] = row.View()
	}

	page := &models.Page{
		Items:   items,
		HasMore: hasMore,
		Limit:   limit,
	}
	if hasMore && len(items) > 0 {
		last := items[len(items)-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

// ListLegacy returns up to MaxLimit items sorted by creation time descending,
// as a bare sequence without cursor semantics.
func (e *Engine) ListLegacy(ctx context.Context) ([]models.ItemView, error) {
	rows, err := e.store.ListRecent(ctx, MaxLimit)
	if err != nil {
		return nil, err
	}

	items := make([]models.ItemView, len(rows))
	for i, row := range rows {
		items[i] = row.View()
	}
	return items, nil
}

// Delete removes exactly one item. A missing id and a malformed id are
// distinct validation failures; a well-formed id with no matching item is
// ErrNotFound.
func (e *Engine) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrMissingID
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		return ErrInvalidID
	}
	return e.store.Delete(ctx, id)
}
