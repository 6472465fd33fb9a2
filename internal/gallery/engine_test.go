package gallery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gaowanliang/TG-Gallery/internal/models"
	"github.com/gaowanliang/TG-Gallery/internal/store"
	"github.com/gaowanliang/TG-Gallery/internal/testsupport"
)

// testID mints a deterministic ULID from a millisecond timestamp, so IDs
// compare in timestamp order.
func testID(ms uint64) string {
	return ulid.MustNew(ms, nil).String()
}

func seedItems(ms ...uint64) ([]models.Item, *testsupport.MemStore) {
	items := make([]models.Item, len(ms))
	for i, m := range ms {
		items[i] = models.Item{
			ID:        testID(m),
			Prompt:    "prompt",
			CreatedAt: time.UnixMilli(int64(m)).UTC(),
			Telegram:  models.Telegram{ChatID: 1, FileID: "file"},
		}
	}
	ms2 := testsupport.NewMemStore()
	ms2.Seed(items...)
	return items, ms2
}

func TestEffectiveLimitDefaultsAndClamps(t *testing.T) {
	cases := []struct {
		limit string
		want  int
	}{
		{"", DefaultLimit},
		{"abc", DefaultLimit},
		{".5", DefaultLimit},
		{"2.5", 2},
		{"12abc", 12},
		{" 30 ", 30},
		{"+7", 7},
		{"0", 1},
		{"-5", 1},
		{"1", 1},
		{"60", 60},
		{"200", 200},
		{"5000", 200},
		{"99999999999999999999", 200},
		{"-99999999999999999999", 1},
	}
	for _, c := range cases {
		got := ListParams{Limit: c.limit, HasLimit: true}.EffectiveLimit()
		if got != c.want {
			t.Errorf("EffectiveLimit(%q) = %d, want %d", c.limit, got, c.want)
		}
	}
}

func TestPaginatedModeSelection(t *testing.T) {
	if (ListParams{}).Paginated() {
		t.Error("no params should select legacy mode")
	}
	if !(ListParams{HasLimit: true}).Paginated() {
		t.Error("empty-but-present limit should select pagination mode")
	}
	if !(ListParams{Cursor: testID(1)}).Paginated() {
		t.Error("cursor alone should select pagination mode")
	}
}

func TestListFirstPageAndContinuation(t *testing.T) {
	// Three items with identities in ascending mint order [10, 20, 30].
	items, ms := seedItems(10, 20, 30)
	engine := NewEngine(ms)

	page, err := engine.List(context.Background(), ListParams{Limit: "2", HasLimit: true})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}

	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].ID != items[2].ID || page.Items[1].ID != items[1].ID {
		t.Fatalf("expected descending order [%s %s], got [%s %s]",
			items[2].ID, items[1].ID, page.Items[0].ID, page.Items[1].ID)
	}
	if !page.HasMore {
		t.Error("expected hasMore on first page")
	}
	if page.NextCursor == nil || *page.NextCursor != items[1].ID {
		t.Fatalf("expected nextCursor %s, got %v", items[1].ID, page.NextCursor)
	}

	// Follow-up with the returned cursor: one item, no continuation.
	page2, err := engine.List(context.Background(), ListParams{Cursor: *page.NextCursor})
	if err != nil {
		t.Fatalf("List with cursor error: %v", err)
	}
	if len(page2.Items) != 1 || page2.Items[0].ID != items[0].ID {
		t.Fatalf("expected final page [%s], got %v", items[0].ID, page2.Items)
	}
	if page2.HasMore {
		t.Error("expected hasMore=false on final page")
	}
	if page2.NextCursor != nil {
		t.Errorf("expected nil nextCursor, got %v", *page2.NextCursor)
	}
}

func TestListNoDuplicatesNoGapsAcrossPages(t *testing.T) {
	items, ms := seedItems(1, 2, 3, 4, 5, 6, 7)
	engine := NewEngine(ms)

	seen := make(map[string]bool)
	cursor := ""
	pages := 0
	for {
		params := ListParams{Limit: "3", HasLimit: true, Cursor: cursor}
		page, err := engine.List(context.Background(), params)
		if err != nil {
			t.Fatalf("List error: %v", err)
		}
		for _, item := range page.Items {
			if seen[item.ID] {
				t.Fatalf("item %s returned twice", item.ID)
			}
			seen[item.ID] = true
		}
		pages++
		if !page.HasMore {
			break
		}
		cursor = *page.NextCursor
	}

	if len(seen) != len(items) {
		t.Errorf("expected %d distinct items across pages, got %d", len(items), len(seen))
	}
	if pages != 3 {
		t.Errorf("expected 3 pages, got %d", pages)
	}
}

func TestListExactBoundaryHasNoMore(t *testing.T) {
	_, ms := seedItems(10, 20)
	engine := NewEngine(ms)

	page, err := engine.List(context.Background(), ListParams{Limit: "2", HasLimit: true})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if page.HasMore {
		t.Error("expected hasMore=false when items == limit")
	}
	if page.NextCursor != nil {
		t.Error("expected no nextCursor when items == limit")
	}
}

func TestListInvalidCursor(t *testing.T) {
	_, ms := seedItems(10)
	engine := NewEngine(ms)

	for _, cursor := range []string{"not-a-ulid", "12345", "zzzzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, err := engine.List(context.Background(), ListParams{Cursor: cursor})
		if !errors.Is(err, ErrInvalidCursor) {
			t.Errorf("cursor %q: expected ErrInvalidCursor, got %v", cursor, err)
		}
	}
}

func TestListProjectionStripsBotToken(t *testing.T) {
	ms := testsupport.NewMemStore()
	ms.Seed(models.Item{
		ID:       testID(10),
		Prompt:   "p",
		Telegram: models.Telegram{ChatID: 7, FileID: "f", BotToken: "secret"},
	})
	engine := NewEngine(ms)

	page, err := engine.List(context.Background(), ListParams{HasLimit: true})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	view := page.Items[0]
	if view.Telegram.ChatID != 7 || view.Telegram.FileID != "f" {
		t.Errorf("unexpected telegram projection: %+v", view.Telegram)
	}
	if view.Metadata == nil {
		t.Error("metadata should default to an empty map")
	}
}

func TestListLegacyOrdersByTimestamp(t *testing.T) {
	items, ms := seedItems(10, 30, 20)
	engine := NewEngine(ms)

	out, err := engine.ListLegacy(context.Background())
	if err != nil {
		t.Fatalf("ListLegacy error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 items, got %d", len(out))
	}
	// Seeded timestamps 10, 30, 20 → descending = 30, 20, 10
	if out[0].ID != items[1].ID || out[1].ID != items[2].ID || out[2].ID != items[0].ID {
		t.Errorf("unexpected legacy order: %s %s %s", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestDeleteValidation(t *testing.T) {
	_, ms := seedItems(10)
	engine := NewEngine(ms)

	if err := engine.Delete(context.Background(), ""); !errors.Is(err, ErrMissingID) {
		t.Errorf("empty id: expected ErrMissingID, got %v", err)
	}
	if err := engine.Delete(context.Background(), "   "); !errors.Is(err, ErrMissingID) {
		t.Errorf("blank id: expected ErrMissingID, got %v", err)
	}
	if err := engine.Delete(context.Background(), "not-a-ulid"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("bad id: expected ErrInvalidID, got %v", err)
	}
}

func TestDeleteSucceedsExactlyOnce(t *testing.T) {
	items, ms := seedItems(10)
	engine := NewEngine(ms)

	if err := engine.Delete(context.Background(), items[0].ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := engine.Delete(context.Background(), items[0].ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
