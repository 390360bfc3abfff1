package models

import (
	"time"
)

// Category is the editorial section a story is filed under
type Category string

const (
	CategoryNews       Category = "News"
	CategoryReviews    Category = "Reviews"
	CategoryAuctions   Category = "Auctions"
	CategoryHeritage   Category = "Heritage"
	CategoryMotorsport Category = "Motorsport"
	CategoryCollecting Category = "Collecting"
)

// Categories lists every valid category in display order
var Categories = []Category{
	CategoryNews,
	CategoryReviews,
	CategoryAuctions,
	CategoryHeritage,
	CategoryMotorsport,
	CategoryCollecting,
}

// ValidCategories defines allowed story categories
var ValidCategories = map[Category]bool{
	CategoryNews:       true,
	CategoryReviews:    true,
	CategoryAuctions:   true,
	CategoryHeritage:   true,
	CategoryMotorsport: true,
	CategoryCollecting: true,
}

// Status is the publication state of a story
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ValidStatuses defines allowed story statuses
var ValidStatuses = map[Status]bool{
	StatusDraft:     true,
	StatusPublished: true,
	StatusArchived:  true,
}

// Story represents a single news story
type Story struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Subtitle     *string    `json:"subtitle,omitempty"`
	Excerpt      string     `json:"excerpt"`
	Content      string     `json:"content"`
	Author       string     `json:"author"`
	Category     Category   `json:"category"`
	Tags         []string   `json:"tags"`
	ImageURL     string     `json:"imageUrl"`
	ImageCaption *string    `json:"imageCaption,omitempty"`
	PublishedAt  time.Time  `json:"publishedAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	Featured     bool       `json:"featured"`
	Status       Status     `json:"status"`
	SourceURL    *string    `json:"sourceUrl,omitempty"`
	SourceName   *string    `json:"sourceName,omitempty"`
}

// IsPublished reports whether the story may appear in public views
func (s *Story) IsPublished() bool {
	return s.Status == StatusPublished
}

// Clone returns a deep copy of the story
func (s Story) Clone() Story {
	out := s
	out.Tags = append(make([]string, 0, len(s.Tags)), s.Tags...)
	out.Subtitle = cloneString(s.Subtitle)
	out.ImageCaption = cloneString(s.ImageCaption)
	out.SourceURL = cloneString(s.SourceURL)
	out.SourceName = cloneString(s.SourceName)
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// CloneStories deep-copies a slice of stories
func CloneStories(stories []Story) []Story {
	out := make([]Story, len(stories))
	for i := range stories {
		out[i] = stories[i].Clone()
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StoryPatch holds the fields of a partial update. Nil means unchanged.
type StoryPatch struct {
	Slug         *string    `json:"slug,omitempty"`
	Title        *string    `json:"title,omitempty"`
	Subtitle     *string    `json:"subtitle,omitempty"`
	Excerpt      *string    `json:"excerpt,omitempty"`
	Content      *string    `json:"content,omitempty"`
	Author       *string    `json:"author,omitempty"`
	Category     *Category  `json:"category,omitempty"`
	Tags         *[]string  `json:"tags,omitempty"`
	ImageURL     *string    `json:"imageUrl,omitempty"`
	ImageCaption *string    `json:"imageCaption,omitempty"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	Featured     *bool      `json:"featured,omitempty"`
	Status       *Status    `json:"status,omitempty"`
	SourceURL    *string    `json:"sourceUrl,omitempty"`
	SourceName   *string    `json:"sourceName,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p *StoryPatch) Empty() bool {
	return len(p.Values()) == 0
}

// Apply merges the set fields of the patch into s
func (p *StoryPatch) Apply(s *Story) {
	if p.Slug != nil {
		s.Slug = *p.Slug
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Subtitle != nil {
		s.Subtitle = cloneString(p.Subtitle)
	}
	if p.Excerpt != nil {
		s.Excerpt = *p.Excerpt
	}
	if p.Content != nil {
		s.Content = *p.Content
	}
	if p.Author != nil {
		s.Author = *p.Author
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Tags != nil {
		s.Tags = append(make([]string, 0, len(*p.Tags)), (*p.Tags)...)
	}
	if p.ImageURL != nil {
		s.ImageURL = *p.ImageURL
	}
	if p.ImageCaption != nil {
		s.ImageCaption = cloneString(p.ImageCaption)
	}
	if p.PublishedAt != nil {
		s.PublishedAt = p.PublishedAt.UTC()
	}
	if p.UpdatedAt != nil {
		t := p.UpdatedAt.UTC()
		s.UpdatedAt = &t
	}
	if p.Featured != nil {
		s.Featured = *p.Featured
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.SourceURL != nil {
		s.SourceURL = cloneString(p.SourceURL)
	}
	if p.SourceName != nil {
		s.SourceName = cloneString(p.SourceName)
	}
}

// Origin identifies which write path created a story
type Origin string

const (
	// OriginIngest is the authenticated automation endpoint
	OriginIngest Origin = "ingest"
	// OriginAdmin is the administrative form
	OriginAdmin Origin = "admin"
)

// PlaceholderImageURL is used by the admin path when no image is supplied
const PlaceholderImageURL = "/placeholder.jpg"

// CreationDefaults are the values a write path fills in when omitted
type CreationDefaults struct {
	Status   Status
	ImageURL string
}

// Defaults returns the creation defaults for a write path.
// Automation publishes immediately; the admin form starts as a draft.
func Defaults(origin Origin) CreationDefaults {
	if origin == OriginAdmin {
		return CreationDefaults{Status: StatusDraft, ImageURL: PlaceholderImageURL}
	}
	return CreationDefaults{Status: StatusPublished}
}

// ListFilter narrows a store-level story listing
type ListFilter struct {
	Status   Status
	Category Category
	Featured bool
	Limit    int
}
