package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/gaowanliang/TG-Gallery/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the development
// fallback when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/gallery.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/gallery.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS gallery_items (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL DEFAULT '',
		metadata TEXT,
		chat_id INTEGER NOT NULL DEFAULT 0,
		file_id TEXT NOT NULL DEFAULT '',
		bot_token TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_gallery_items_file_id ON gallery_items(file_id);
	CREATE INDEX IF NOT EXISTS idx_gallery_items_created_at ON gallery_items(created_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Insert stores a new gallery item.
func (s *SQLiteStore) Insert(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = ulid.Make().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	var meta []byte
	if item.Metadata != nil {
		var err error
		meta, err = json.Marshal(item.Metadata)
		if err != nil {
			return err
		}
	}

	var botToken *string
	if item.Telegram.BotToken != "" {
		botToken = &item.Telegram.BotToken
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gallery_items (id, prompt, metadata, chat_id, file_id, bot_token, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Prompt, nullableBytes(meta), item.Telegram.ChatID, item.Telegram.FileID, botToken, item.CreatedAt)
	return err
}

// ListPage retrieves up to limit items with ID strictly less than before,
// ordered by ID descending.
func (s *SQLiteStore) ListPage(ctx context.Context, before string, limit int) ([]models.Item, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if before != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, prompt, metadata, chat_id, file_id, bot_token, created_at
			FROM gallery_items
			WHERE id < ?
			ORDER BY id DESC
			LIMIT ?
		`, before, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, prompt, metadata, chat_id, file_id, bot_token, created_at
			FROM gallery_items
			ORDER BY id DESC
			LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanRows(rows)
}

// ListRecent retrieves up to limit items ordered by creation time descending.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, metadata, chat_id, file_id, bot_token, created_at
		FROM gallery_items
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanRows(rows)
}

// FindByFileID retrieves the item whose telegram file_id matches fileID.
func (s *SQLiteStore) FindByFileID(ctx context.Context, fileID string) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, prompt, metadata, chat_id, file_id, bot_token, created_at
		FROM gallery_items
		WHERE file_id = ?
	`, fileID)

	item, err := s.scanRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// Delete removes exactly one item by ID. Returns ErrNotFound when no row
// matched.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gallery_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) scanRow(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var (
		meta     []byte
		botToken *string
	)
	err := row.Scan(
		&item.ID,
		&item.Prompt,
		&meta,
		&item.Telegram.ChatID,
		&item.Telegram.FileID,
		&botToken,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &item.Metadata); err != nil {
			return nil, err
		}
	}
	if botToken != nil {
		item.Telegram.BotToken = *botToken
	}
	return item, nil
}

func (s *SQLiteStore) scanRows(rows *sql.Rows) ([]models.Item, error) {
	var items []models.Item
	for rows.Next() {
		item, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
