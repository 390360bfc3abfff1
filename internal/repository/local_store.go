package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

// DefaultSlotKey is the slot holding the serialized collection
const DefaultSlotKey = "exotics-weekly-stories"

// localStoryRepo keeps the whole collection as one JSON snapshot in a slot.
// Every write replaces the full snapshot.
type localStoryRepo struct {
	slot Slot
	key  string
	now  func() time.Time
	log  zerolog.Logger

	// mu serializes read-modify-write cycles on the snapshot
	mu sync.Mutex
}

// LocalOption configures the local store
type LocalOption func(*localStoryRepo)

// WithClock overrides the time source used for ids and timestamps
func WithClock(now func() time.Time) LocalOption {
	return func(r *localStoryRepo) { r.now = now }
}

// NewLocalStoryRepo creates a store over a durable slot
func NewLocalStoryRepo(slot Slot, key string, log zerolog.Logger, opts ...LocalOption) StoryStore {
	if key == "" {
		key = DefaultSlotKey
	}
	r := &localStoryRepo{
		slot: slot,
		key:  key,
		now:  time.Now,
		log:  log.With().Str("component", "local_store").Str("slot", key).Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name identifies the backend
func (r *localStoryRepo) Name() string {
	return StoreLocal
}

// FetchAll returns the snapshot, seeding from the bundled sample when the
// slot is empty or unreadable as JSON
func (r *localStoryRepo) FetchAll(ctx context.Context) ([]models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stories, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(stories)
	return stories, nil
}

// FetchPublished returns published stories, newest first
func (r *localStoryRepo) FetchPublished(ctx context.Context) ([]models.Story, error) {
	return r.FetchList(ctx, models.ListFilter{Status: models.StatusPublished})
}

// FetchBySlug returns nil, nil when no story has the slug
func (r *localStoryRepo) FetchBySlug(ctx context.Context, slug string) (*models.Story, error) {
	stories, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stories {
		if stories[i].Slug == slug {
			return &stories[i], nil
		}
	}
	return nil, nil
}

// FetchByCategory returns published stories in one category
func (r *localStoryRepo) FetchByCategory(ctx context.Context, category models.Category) ([]models.Story, error) {
	return r.FetchList(ctx, models.ListFilter{Status: models.StatusPublished, Category: category})
}

// FetchFeatured returns published featured stories
func (r *localStoryRepo) FetchFeatured(ctx context.Context) ([]models.Story, error) {
	return r.FetchList(ctx, models.ListFilter{Status: models.StatusPublished, Featured: true})
}

// FetchList filters the snapshot
func (r *localStoryRepo) FetchList(ctx context.Context, filter models.ListFilter) ([]models.Story, error) {
	stories, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Story, 0, len(stories))
	for _, s := range stories {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.Featured && !s.Featured {
			continue
		}
		out = append(out, s)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Create assigns a millisecond timestamp id and prepends the story
func (r *localStoryRepo) Create(ctx context.Context, story models.Story) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stories, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(stories))
	for _, s := range stories {
		if s.Slug == story.Slug {
			return nil, ErrSlugConflict
		}
		taken[s.ID] = true
	}

	// Millisecond ids collide when two creates land in the same instant
	ms := r.now().UnixMilli()
	for taken[strconv.FormatInt(ms, 10)] {
		ms++
	}

	created := story.Clone()
	created.ID = strconv.FormatInt(ms, 10)
	created.PublishedAt = created.PublishedAt.UTC()
	if created.Tags == nil {
		created.Tags = []string{}
	}

	if err := r.save(ctx, append([]models.Story{created}, stories...)); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update merges the patch and stamps updatedAt
func (r *localStoryRepo) Update(ctx context.Context, id string, patch models.StoryPatch) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stories, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range stories {
		if stories[i].ID == id {
			idx = i
			continue
		}
		if patch.Slug != nil && stories[i].Slug == *patch.Slug {
			return nil, ErrSlugConflict
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	updated := stories[idx].Clone()
	patch.Apply(&updated)
	if patch.UpdatedAt == nil {
		now := r.now().UTC()
		updated.UpdatedAt = &now
	}
	stories[idx] = updated

	if err := r.save(ctx, stories); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a story from the snapshot
func (r *localStoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stories, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i := range stories {
		if stories[i].ID == id {
			remaining := append(stories[:i:i], stories[i+1:]...)
			return r.save(ctx, remaining)
		}
	}
	return ErrNotFound
}

// load reads the snapshot. Callers must hold mu.
func (r *localStoryRepo) load(ctx context.Context) ([]models.Story, error) {
	data, ok, err := r.slot.Get(ctx, r.key)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to read story slot")
		return nil, fmt.Errorf("read story slot: %w", err)
	}
	if !ok {
		r.log.Debug().Msg("Story slot empty, seeding from sample stories")
		return models.SampleStories(), nil
	}

	var stories []models.Story
	if err := json.Unmarshal(data, &stories); err != nil {
		r.log.Warn().Err(err).Msg("Story slot unreadable, seeding from sample stories")
		return models.SampleStories(), nil
	}
	return stories, nil
}

// save writes the full snapshot. Callers must hold mu.
func (r *localStoryRepo) save(ctx context.Context, stories []models.Story) error {
	data, err := json.Marshal(stories)
	if err != nil {
		return fmt.Errorf("encode story slot: %w", err)
	}
	if err := r.slot.Put(ctx, r.key, data); err != nil {
		r.log.Error().Err(err).Int("stories", len(stories)).Msg("Failed to write story slot")
		return fmt.Errorf("write story slot: %w", err)
	}
	return nil
}

func sortNewestFirst(stories []models.Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].PublishedAt.After(stories[j].PublishedAt)
	})
}
