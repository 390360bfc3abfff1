package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/repository"
)

// MockStoryStore is a map-backed implementation of StoryStore
type MockStoryStore struct {
	mu sync.Mutex

	Stories     map[string]models.Story
	StoreName   string
	FetchError  error
	CreateError error
	UpdateError error
	DeleteError error

	// CreateFunc overrides Create when set
	CreateFunc func(ctx context.Context, story models.Story) (*models.Story, error)

	FetchAllCalls       int
	FetchBySlugCalls    int
	FetchPublishedCalls int
	FetchCategoryCalls  int
	FetchFeaturedCalls  int
	FetchListCalls      int
	CreateCalls         int
	UpdateCalls         int
	DeleteCalls         int

	nextID int
}

// Verify interface compliance
var _ repository.StoryStore = (*MockStoryStore)(nil)

func NewMockStoryStore(seed ...models.Story) *MockStoryStore {
	m := &MockStoryStore{
		Stories:   make(map[string]models.Story),
		StoreName: "mock",
	}
	for _, s := range seed {
		m.Stories[s.ID] = s.Clone()
	}
	return m
}

func (m *MockStoryStore) Name() string {
	return m.StoreName
}

func (m *MockStoryStore) FetchAll(ctx context.Context) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchAllCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.sorted(func(models.Story) bool { return true }), nil
}

func (m *MockStoryStore) FetchPublished(ctx context.Context) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchPublishedCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.sorted(func(s models.Story) bool { return s.IsPublished() }), nil
}

func (m *MockStoryStore) FetchBySlug(ctx context.Context, slug string) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchBySlugCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	for _, s := range m.Stories {
		if s.Slug == slug {
			found := s.Clone()
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockStoryStore) FetchByCategory(ctx context.Context, category models.Category) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCategoryCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.sorted(func(s models.Story) bool { return s.IsPublished() && s.Category == category }), nil
}

func (m *MockStoryStore) FetchFeatured(ctx context.Context) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchFeaturedCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.sorted(func(s models.Story) bool { return s.IsPublished() && s.Featured }), nil
}

func (m *MockStoryStore) FetchList(ctx context.Context, filter models.ListFilter) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchListCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	out := m.sorted(func(s models.Story) bool {
		return (filter.Status == "" || s.Status == filter.Status) &&
			(filter.Category == "" || s.Category == filter.Category) &&
			(!filter.Featured || s.Featured)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MockStoryStore) Create(ctx context.Context, story models.Story) (*models.Story, error) {
	if m.CreateFunc != nil {
		m.mu.Lock()
		m.CreateCalls++
		m.mu.Unlock()
		return m.CreateFunc(ctx, story)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	for _, s := range m.Stories {
		if s.Slug == story.Slug {
			return nil, repository.ErrSlugConflict
		}
	}

	m.nextID++
	created := story.Clone()
	created.ID = fmt.Sprintf("mock-%d", m.nextID)
	m.Stories[created.ID] = created
	out := created.Clone()
	return &out, nil
}

func (m *MockStoryStore) Update(ctx context.Context, id string, patch models.StoryPatch) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	existing, ok := m.Stories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Slug != nil {
		for otherID, s := range m.Stories {
			if otherID != id && s.Slug == *patch.Slug {
				return nil, repository.ErrSlugConflict
			}
		}
	}

	updated := existing.Clone()
	patch.Apply(&updated)
	m.Stories[id] = updated
	out := updated.Clone()
	return &out, nil
}

func (m *MockStoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.Stories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Stories, id)
	return nil
}

// Count returns the number of stored stories
func (m *MockStoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Stories)
}

func (m *MockStoryStore) sorted(keep func(models.Story) bool) []models.Story {
	out := make([]models.Story, 0, len(m.Stories))
	for _, s := range m.Stories {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// MemorySlot is an in-memory implementation of Slot
type MemorySlot struct {
	mu sync.Mutex

	Values   map[string][]byte
	GetError error
	PutError error
	Puts     int
}

// Verify interface compliance
var _ repository.Slot = (*MemorySlot)(nil)

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{Values: make(map[string][]byte)}
}

func (m *MemorySlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, false, m.GetError
	}
	v, ok := m.Values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemorySlot) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutError != nil {
		return m.PutError
	}
	m.Puts++
	m.Values[key] = append([]byte(nil), value...)
	return nil
}
