package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/gaowanliang/TG-Gallery/internal/metrics"
	"github.com/gaowanliang/TG-Gallery/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
// The pool is owned by the caller for the lifetime of the process; request
// handlers borrow connections per call and never manage them directly.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Insert stores a new gallery item. A ULID is minted when the ID is unset so
// identity order tracks insertion order.
func (s *PostgresStore) Insert(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = ulid.Make().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	var botToken *string
	if item.Telegram.BotToken != "" {
		botToken = &item.Telegram.BotToken
	}

	start := time.Now()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO gallery_items (id, prompt, metadata, chat_id, file_id, bot_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.Prompt, item.Metadata, item.Telegram.ChatID, item.Telegram.FileID, botToken, item.CreatedAt)
	metrics.PostgresLatency.Observe(time.Since(start).Seconds())
	return err
}

// ListPage retrieves up to limit items with ID strictly less than before,
// ordered by ID descending. An empty before starts from the newest item.
func (s *PostgresStore) ListPage(ctx context.Context, before string, limit int) ([]models.Item, error) {
	start := time.Now()
	defer func() {
		metrics.PostgresLatency.Observe(time.Since(start).Seconds())
	}()

	var (
		rows pgx.Rows
		err  error
	)
	if before != "" {
		rows, err = s.pool.Query(ctx, `
			SELECT id, prompt, metadata, chat_id, file_id, bot_token, created_at
			FROM gallery_items
			WHERE id < $1
			ORDER BY id DESC
			LIMIT $2
		`, before, limit)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, prompt, metadata, chat_id, file_id, bot_token, created_at
			FROM gallery_items
			ORDER BY id DESC
			LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListRecent retrieves up to limit items ordered by creation time descending.
// This backs the legacy flat listing.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]models.Item, error) {
	start := time.Now()
	defer func() {
		metrics.PostgresLatency.Observe(time.Since(start).Seconds())
	}()

	rows, err := s.pool.Query(ctx, `
		SELECT id, prompt, metadata, chat_id, file_id, bot_token, created_at
		FROM gallery_items
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

// FindByFileID retrieves the item whose telegram file_id matches fileID.
// Returns nil without error when no item matches.
func (s *PostgresStore) FindByFileID(ctx context.Context, fileID string) (*models.Item, error) {
	start := time.Now()
	defer func() {
		metrics.PostgresLatency.Observe(time.Since(start).Seconds())
	}()

	row := s.pool.QueryRow(ctx, `
		SELECT id, prompt, metadata, chat_id, file_id, bot_token, created_at
		FROM gallery_items
		WHERE file_id = $1
	`, fileID)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// Delete removes exactly one item by ID. Returns ErrNotFound when no row
// matched.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	tag, err := s.pool.Exec(ctx, `DELETE FROM gallery_items WHERE id = $1`, id)
	metrics.PostgresLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var botToken *string
	err := row.Scan(
		&item.ID,
		&item.Prompt,
		&item.Metadata,
		&item.Telegram.ChatID,
		&item.Telegram.FileID,
		&botToken,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if botToken != nil {
		item.Telegram.BotToken = *botToken
	}
	return item, nil
}

func scanItems(rows pgx.Rows) ([]models.Item, error) {
	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
