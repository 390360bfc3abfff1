package models

import (
	"strings"
	"time"
)

// StoryInput is a story as submitted to a write path. Every field is
// optional at this level so the same shape serves creates and partial
// updates. Multi-word fields also accept their snake_case spelling.
type StoryInput struct {
	Slug         *string    `json:"slug"`
	Title        *string    `json:"title"`
	Subtitle     *string    `json:"subtitle"`
	Excerpt      *string    `json:"excerpt"`
	Content      *string    `json:"content"`
	Author       *string    `json:"author"`
	Category     *Category  `json:"category"`
	Tags         *[]string  `json:"tags"`
	ImageURL     *string    `json:"imageUrl"`
	ImageCaption *string    `json:"imageCaption"`
	PublishedAt  *time.Time `json:"publishedAt"`
	Featured     *bool      `json:"featured"`
	Status       *Status    `json:"status"`
	SourceURL    *string    `json:"sourceUrl"`
	SourceName   *string    `json:"sourceName"`

	ImageURLSnake     *string    `json:"image_url"`
	ImageCaptionSnake *string    `json:"image_caption"`
	PublishedAtSnake  *time.Time `json:"published_at"`
	SourceURLSnake    *string    `json:"source_url"`
	SourceNameSnake   *string    `json:"source_name"`
}

// Normalize folds snake_case spellings into their camelCase fields.
// The camelCase spelling wins when both are present.
func (in *StoryInput) Normalize() {
	in.ImageURL = firstSet(in.ImageURL, in.ImageURLSnake)
	in.ImageCaption = firstSet(in.ImageCaption, in.ImageCaptionSnake)
	in.SourceURL = firstSet(in.SourceURL, in.SourceURLSnake)
	in.SourceName = firstSet(in.SourceName, in.SourceNameSnake)
	if in.PublishedAt == nil {
		in.PublishedAt = in.PublishedAtSnake
	}
	in.ImageURLSnake, in.ImageCaptionSnake, in.SourceURLSnake, in.SourceNameSnake = nil, nil, nil, nil
	in.PublishedAtSnake = nil

	if in.Slug != nil {
		s := strings.TrimSpace(*in.Slug)
		in.Slug = &s
	}
}

// Story builds a new story from the input, filling omitted fields with the
// defaults of the given write path. The id is left for the store to assign.
func (in *StoryInput) Story(origin Origin, now time.Time) Story {
	in.Normalize()
	d := Defaults(origin)

	s := Story{
		Title:        value(in.Title),
		Subtitle:     cloneString(in.Subtitle),
		Excerpt:      value(in.Excerpt),
		Content:      value(in.Content),
		Author:       value(in.Author),
		ImageURL:     d.ImageURL,
		ImageCaption: cloneString(in.ImageCaption),
		PublishedAt:  now.UTC(),
		Status:       d.Status,
		SourceURL:    cloneString(in.SourceURL),
		SourceName:   cloneString(in.SourceName),
		Tags:         []string{},
	}
	if in.Slug != nil {
		s.Slug = *in.Slug
	}
	if in.Category != nil {
		s.Category = *in.Category
	}
	if in.Tags != nil {
		s.Tags = append(s.Tags, (*in.Tags)...)
	}
	if in.ImageURL != nil && *in.ImageURL != "" {
		s.ImageURL = *in.ImageURL
	}
	if in.PublishedAt != nil {
		s.PublishedAt = in.PublishedAt.UTC()
	}
	if in.Featured != nil {
		s.Featured = *in.Featured
	}
	if in.Status != nil && *in.Status != "" {
		s.Status = *in.Status
	}
	return s
}

// Patch converts the input into a partial update of the fields it sets
func (in *StoryInput) Patch() StoryPatch {
	in.Normalize()
	return StoryPatch{
		Slug:         in.Slug,
		Title:        in.Title,
		Subtitle:     in.Subtitle,
		Excerpt:      in.Excerpt,
		Content:      in.Content,
		Author:       in.Author,
		Category:     in.Category,
		Tags:         in.Tags,
		ImageURL:     in.ImageURL,
		ImageCaption: in.ImageCaption,
		PublishedAt:  in.PublishedAt,
		Featured:     in.Featured,
		Status:       in.Status,
		SourceURL:    in.SourceURL,
		SourceName:   in.SourceName,
	}
}

func firstSet(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
