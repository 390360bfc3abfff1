package validation

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// contentPolicy returns the shared policy for story bodies
func contentPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// Technical data and auction results are published as tables
		policy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption")
		policy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")

		policy.AllowElements("figure", "figcaption", "u", "s", "sub", "sup", "mark")
	})
	return policy
}

// SanitizeContent strips unsafe markup from a story body
func SanitizeContent(html string) string {
	if html == "" {
		return ""
	}
	return contentPolicy().Sanitize(html)
}

// Sanitize cleans the rich-text fields of a submitted story in place
func Sanitize(in *models.StoryInput) {
	if in.Content != nil {
		clean := SanitizeContent(*in.Content)
		in.Content = &clean
	}
}
