package store

import (
	"context"
	"errors"

	"github.com/gaowanliang/TG-Gallery/internal/models"
)

// ErrNotFound is returned when an operation targets an item that does not
// exist (or no longer exists).
var ErrNotFound = errors.New("item not found")

// DataStore defines the interface for persistent storage of gallery items.
// Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Item operations
	Insert(ctx context.Context, item *models.Item) error
	ListPage(ctx context.Context, before string, limit int) ([]models.Item, error)
	ListRecent(ctx context.Context, limit int) ([]models.Item, error)
	FindByFileID(ctx context.Context, fileID string) (*models.Item, error)
	Delete(ctx context.Context, id string) error
}
