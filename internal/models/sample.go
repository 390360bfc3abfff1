package models

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed sample_stories.yaml
var sampleStoriesYAML []byte

// sampleRecord is the on-disk shape of one bundled story
type sampleRecord struct {
	ID           string    `yaml:"id"`
	Slug         string    `yaml:"slug"`
	Title        string    `yaml:"title"`
	Subtitle     string    `yaml:"subtitle"`
	Excerpt      string    `yaml:"excerpt"`
	Content      string    `yaml:"content"`
	Author       string    `yaml:"author"`
	Category     Category  `yaml:"category"`
	Tags         []string  `yaml:"tags"`
	ImageURL     string    `yaml:"imageUrl"`
	ImageCaption string    `yaml:"imageCaption"`
	PublishedAt  time.Time `yaml:"publishedAt"`
	Featured     bool      `yaml:"featured"`
	Status       Status    `yaml:"status"`
}

var sampleStories = mustParseSamples(sampleStoriesYAML)

// SampleStories returns a fresh copy of the bundled sample dataset
func SampleStories() []Story {
	return CloneStories(sampleStories)
}

func mustParseSamples(data []byte) []Story {
	stories, err := parseSamples(data)
	if err != nil {
		panic(fmt.Sprintf("models: bundled sample stories: %v", err))
	}
	return stories
}

func parseSamples(data []byte) ([]Story, error) {
	var records []sampleRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	stories := make([]Story, 0, len(records))
	for i, r := range records {
		if !ValidCategories[r.Category] {
			return nil, fmt.Errorf("record %d: invalid category %q", i, r.Category)
		}
		if !ValidStatuses[r.Status] {
			return nil, fmt.Errorf("record %d: invalid status %q", i, r.Status)
		}
		s := Story{
			ID:          r.ID,
			Slug:        r.Slug,
			Title:       r.Title,
			Excerpt:     r.Excerpt,
			Content:     r.Content,
			Author:      r.Author,
			Category:    r.Category,
			Tags:        append([]string{}, r.Tags...),
			ImageURL:    r.ImageURL,
			PublishedAt: r.PublishedAt.UTC(),
			Featured:    r.Featured,
			Status:      r.Status,
		}
		if r.Subtitle != "" {
			s.Subtitle = &r.Subtitle
		}
		if r.ImageCaption != "" {
			s.ImageCaption = &r.ImageCaption
		}
		stories = append(stories, s)
	}
	return stories, nil
}
