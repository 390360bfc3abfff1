package repository

import (
	"context"
	"errors"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

var (
	// ErrNotFound is returned when no story has the requested id
	ErrNotFound = errors.New("story not found")
	// ErrSlugConflict is returned when another story already owns the slug
	ErrSlugConflict = errors.New("slug already in use")
)

// StoryStore defines the storage operations behind the story service.
// List results are always ordered by published_at descending.
type StoryStore interface {
	// Name identifies the backend in logs and status reports
	Name() string
	FetchAll(ctx context.Context) ([]models.Story, error)
	FetchPublished(ctx context.Context) ([]models.Story, error)
	// FetchBySlug returns nil, nil when no story has the slug
	FetchBySlug(ctx context.Context, slug string) (*models.Story, error)
	// FetchByCategory returns published stories of one category
	FetchByCategory(ctx context.Context, category models.Category) ([]models.Story, error)
	// FetchFeatured returns published stories flagged as featured
	FetchFeatured(ctx context.Context) ([]models.Story, error)
	// FetchList applies status, category and featured filters with a limit
	FetchList(ctx context.Context, filter models.ListFilter) ([]models.Story, error)
	Create(ctx context.Context, story models.Story) (*models.Story, error)
	Update(ctx context.Context, id string, patch models.StoryPatch) (*models.Story, error)
	Delete(ctx context.Context, id string) error
}

// Slot is a named durable value holding one serialized blob
type Slot interface {
	// Get returns false when nothing has been stored under key
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store names reported by StoryStore.Name
const (
	StoreRemote = "remote"
	StoreLocal  = "local"
)
