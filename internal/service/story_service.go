package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/events"
	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/repository"
	"github.com/willcldrr/exoticweeklywebiste/pkg/slug"
)

const (
	// SourceBundled marks a list served from the embedded sample stories
	SourceBundled = "bundled"

	// DefaultLatest is the size of Latest when no positive n is given
	DefaultLatest = 6
	// DefaultQueryLimit caps Query results when the filter sets no limit
	DefaultQueryLimit = 50

	maxSlugRetries = 5
)

var (
	// ErrInvalidSlug is returned when no slug can be derived for a story
	ErrInvalidSlug = errors.New("cannot derive slug from title")
	// ErrNotPersisted is returned when the store accepted a write but
	// returned no record, as an unconfigured remote store does
	ErrNotPersisted = errors.New("story store returned no record")
)

// LoadStatus reports which provider tier served the current list
type LoadStatus struct {
	Source   string     `json:"source"`
	Error    string     `json:"error,omitempty"`
	Loading  bool       `json:"loading"`
	Count    int        `json:"count"`
	Remote   bool       `json:"remote"`
	LoadedAt *time.Time `json:"loadedAt,omitempty"`
}

// StoryOptions configures a StoryService
type StoryOptions struct {
	// Remote reports that the store is the configured remote database
	Remote bool
	// Publisher receives change events. Nil disables events.
	Publisher Publisher
	// Now is the clock used for slug suffixes. Defaults to time.Now.
	Now func() time.Time
	// DefaultLimit applies to Query when the filter has no limit
	DefaultLimit int
	Log          zerolog.Logger
}

// storyService is the concrete implementation of StoryService
type storyService struct {
	store     repository.StoryStore
	publisher Publisher
	remote    bool
	now       func() time.Time
	limit     int
	log       zerolog.Logger

	mu       sync.RWMutex
	stories  []models.Story
	loading  bool
	source   string
	loadErr  string
	loadedAt *time.Time
}

// NewStoryService creates the story service over the active store
func NewStoryService(store repository.StoryStore, opts StoryOptions) StoryService {
	return newStoryService(store, opts)
}

func newStoryService(store repository.StoryStore, opts StoryOptions) *storyService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return &storyService{
		store:     store,
		publisher: opts.Publisher,
		remote:    opts.Remote,
		now:       now,
		limit:     limit,
		log:       opts.Log.With().Str("service", "stories").Logger(),
		stories:   []models.Story{},
	}
}

// Refresh reloads the full collection through the provider chain: the
// active store first, the bundled sample stories when it fails. The list
// is replaced wholesale and the store error, if any, is returned after
// the fallback has been applied.
func (s *storyService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	start := time.Now()
	source := s.store.Name()
	stories, err := s.store.FetchAll(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("store", source).Msg("Story load failed, serving bundled sample stories")
		stories = models.SampleStories()
		source = SourceBundled
	}
	if stories == nil {
		stories = []models.Story{}
	}
	sortNewestFirst(stories)

	loadedAt := s.now().UTC()

	s.mu.Lock()
	s.stories = stories
	s.source = source
	s.loadErr = ""
	if err != nil {
		s.loadErr = err.Error()
	}
	s.loadedAt = &loadedAt
	s.loading = false
	s.mu.Unlock()

	s.log.Info().
		Str("source", source).
		Int("stories", len(stories)).
		Dur("duration", time.Since(start)).
		Msg("Stories loaded")

	if err != nil {
		return fmt.Errorf("load stories from %s store: %w", s.store.Name(), err)
	}
	return nil
}

// Add creates a story through the store and prepends it to the list.
// The slug is taken from the story or derived from its title. A slug that
// is already taken gets a time suffix, and a conflict reported by the
// store is retried with a later suffix up to maxSlugRetries times.
func (s *storyService) Add(ctx context.Context, story models.Story) (*models.Story, error) {
	base := strings.TrimSpace(story.Slug)
	if base == "" {
		base = slug.Make(story.Title)
	}
	if base == "" {
		return nil, ErrInvalidSlug
	}

	existing, err := s.store.FetchBySlug(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}

	// Suffix times only move forward, so each retry names a new slug even
	// when several creates land in the same millisecond.
	var suffixAt time.Time
	nextSuffix := func() string {
		at := s.now()
		if !suffixAt.IsZero() && at.UnixMilli() <= suffixAt.UnixMilli() {
			at = suffixAt.Add(time.Millisecond)
		}
		suffixAt = at
		return slug.WithSuffix(base, at)
	}

	story.Slug = base
	if existing != nil {
		story.Slug = nextSuffix()
	}

	created, err := s.store.Create(ctx, story)
	for attempt := 1; errors.Is(err, repository.ErrSlugConflict) && attempt <= maxSlugRetries; attempt++ {
		retry := nextSuffix()
		s.log.Warn().Str("slug", story.Slug).Str("retry", retry).Int("attempt", attempt).Msg("Slug conflict on create, retrying")
		story.Slug = retry
		created, err = s.store.Create(ctx, story)
	}
	if err != nil {
		s.log.Error().Err(err).Str("slug", story.Slug).Msg("Failed to add story")
		return nil, err
	}
	if created == nil {
		return nil, ErrNotPersisted
	}

	s.mu.Lock()
	s.stories = append([]models.Story{created.Clone()}, s.stories...)
	s.mu.Unlock()

	s.log.Info().Str("story_id", created.ID).Str("slug", created.Slug).Msg("Story added")
	s.publish(ctx, events.ActionCreated, created)

	out := created.Clone()
	return &out, nil
}

// Update merges a partial update through the store and replaces the
// matching list entry with the stored record
func (s *storyService) Update(ctx context.Context, id string, patch models.StoryPatch) (*models.Story, error) {
	if patch.Slug != nil {
		trimmed := strings.TrimSpace(*patch.Slug)
		patch.Slug = &trimmed

		existing, err := s.store.FetchBySlug(ctx, trimmed)
		if err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, repository.ErrSlugConflict
		}
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("story_id", id).Msg("Failed to update story")
		}
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotPersisted
	}

	s.mu.Lock()
	replaced := false
	for i := range s.stories {
		if s.stories[i].ID == id {
			s.stories[i] = updated.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		s.stories = append([]models.Story{updated.Clone()}, s.stories...)
	}
	s.mu.Unlock()

	s.log.Info().Str("story_id", id).Msg("Story updated")
	s.publish(ctx, events.ActionUpdated, updated)

	out := updated.Clone()
	return &out, nil
}

// Delete removes a story through the store and drops it from the list
func (s *storyService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("story_id", id).Msg("Failed to delete story")
		}
		return err
	}

	s.mu.Lock()
	for i := range s.stories {
		if s.stories[i].ID == id {
			s.stories = append(s.stories[:i:i], s.stories[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.log.Info().Str("story_id", id).Msg("Story deleted")
	if s.publisher != nil {
		if err := s.publisher.PublishDeleted(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("story_id", id).Msg("Failed to publish story event")
		}
	}
	return nil
}

// ByID returns the story with the given id in any status
func (s *storyService) ByID(id string) (models.Story, bool) {
	return s.first(func(st *models.Story) bool { return st.ID == id })
}

// BySlug returns the story with the given slug in any status
func (s *storyService) BySlug(slug string) (models.Story, bool) {
	return s.first(func(st *models.Story) bool { return st.Slug == slug })
}

// Featured returns published featured stories
func (s *storyService) Featured() []models.Story {
	return s.filter(func(st *models.Story) bool { return st.Featured && st.IsPublished() })
}

// Published returns published stories
func (s *storyService) Published() []models.Story {
	return s.filter(func(st *models.Story) bool { return st.IsPublished() })
}

// ByCategory returns published stories in one category
func (s *storyService) ByCategory(category models.Category) []models.Story {
	return s.filter(func(st *models.Story) bool { return st.Category == category && st.IsPublished() })
}

// Latest returns the n newest published stories
func (s *storyService) Latest(n int) []models.Story {
	if n <= 0 {
		n = DefaultLatest
	}
	stories := s.Published()
	sortNewestFirst(stories)
	if len(stories) > n {
		stories = stories[:n]
	}
	return stories
}

// All returns every story regardless of status
func (s *storyService) All() []models.Story {
	return s.filter(func(*models.Story) bool { return true })
}

// Query lists stories straight from the store using the narrowest
// adapter query the filter allows
func (s *storyService) Query(ctx context.Context, filter models.ListFilter) ([]models.Story, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.limit
	}

	var (
		stories []models.Story
		err     error
	)
	published := filter.Status == models.StatusPublished
	switch {
	case published && filter.Featured && filter.Category == "":
		stories, err = s.store.FetchFeatured(ctx)
	case published && !filter.Featured && filter.Category != "":
		stories, err = s.store.FetchByCategory(ctx, filter.Category)
	case published && !filter.Featured && filter.Category == "":
		stories, err = s.store.FetchPublished(ctx)
	case filter.Status == "" && !filter.Featured && filter.Category == "":
		stories, err = s.store.FetchAll(ctx)
	default:
		stories, err = s.store.FetchList(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("query stories: %w", err)
	}

	if stories == nil {
		stories = []models.Story{}
	}
	if len(stories) > filter.Limit {
		stories = stories[:filter.Limit]
	}
	return stories, nil
}

// Status reports the tier that served the current list
func (s *storyService) Status() LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := LoadStatus{
		Source:  s.source,
		Error:   s.loadErr,
		Loading: s.loading,
		Count:   len(s.stories),
		Remote:  s.remote,
	}
	if s.loadedAt != nil {
		t := *s.loadedAt
		st.LoadedAt = &t
	}
	return st
}

// Remote reports whether the configured remote store is active
func (s *storyService) Remote() bool {
	return s.remote
}

// Loading reports whether a load is in progress
func (s *storyService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *storyService) first(match func(*models.Story) bool) (models.Story, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.stories {
		if match(&s.stories[i]) {
			return s.stories[i].Clone(), true
		}
	}
	return models.Story{}, false
}

func (s *storyService) filter(match func(*models.Story) bool) []models.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Story, 0, len(s.stories))
	for i := range s.stories {
		if match(&s.stories[i]) {
			out = append(out, s.stories[i].Clone())
		}
	}
	return out
}

// publish sends a change event. Failures never fail the write.
func (s *storyService) publish(ctx context.Context, action events.Action, story *models.Story) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStory(ctx, action, story); err != nil {
		s.log.Warn().Err(err).
			Str("story_id", story.ID).
			Str("action", string(action)).
			Msg("Failed to publish story event")
	}
}

func sortNewestFirst(stories []models.Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].PublishedAt.After(stories[j].PublishedAt)
	})
}
