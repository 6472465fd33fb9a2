package models

import "time"

// Telegram holds the Telegram origin of a gallery item. BotToken is a
// per-item credential override used when resolving the file; it must never
// appear in API responses.
type Telegram struct {
	ChatID   int64  `json:"chat_id"`
	FileID   string `json:"file_id"`
	BotToken string `json:"-"`
}

// Item is a gallery entry. IDs are ULIDs minted at ingestion time, so
// lexicographic order over IDs matches creation order; that property is what
// makes the ID usable as a pagination cursor.
type Item struct {
	ID        string         `json:"id"`
	Prompt    string         `json:"prompt"`
	Metadata  map[string]any `json:"metadata"`
	Telegram  Telegram       `json:"telegram"`
	CreatedAt time.Time      `json:"timestamp"`
}

// View projects an Item into its public API shape: metadata is never null
// and the bot-token override is stripped along with the rest of the
// non-public fields.
func (i Item) View() ItemView {
	meta := i.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return ItemView{
		ID:       i.ID,
		Prompt:   i.Prompt,
		Metadata: meta,
		Telegram: TelegramView{
			ChatID: i.Telegram.ChatID,
			FileID: i.Telegram.FileID,
		},
		Timestamp: i.CreatedAt,
	}
}

// TelegramView is the public projection of Telegram.
type TelegramView struct {
	ChatID int64  `json:"chat_id"`
	FileID string `json:"file_id"`
}

// ItemView is the public projection of Item.
type ItemView struct {
	ID        string         `json:"id"`
	Prompt    string         `json:"prompt"`
	Metadata  map[string]any `json:"metadata"`
	Telegram  TelegramView   `json:"telegram"`
	Timestamp time.Time      `json:"timestamp"`
}

// Page is one page of a cursor-paginated listing. NextCursor is nil when
// HasMore is false.
type Page struct {
	Items      []ItemView `json:"items"`
	HasMore    bool       `json:"hasMore"`
	NextCursor *string    `json:"nextCursor"`
	Limit      int        `json:"limit"`
}
