package models

// FieldMapping pairs an external (camelCase) story field with its
// persistence (snake_case) column.
type FieldMapping struct {
	Field  string
	Column string
	value  func(p *StoryPatch) (any, bool)
}

// FieldValue is one set field of a patch, resolved to its column
type FieldValue struct {
	Field  string
	Column string
	Value  any
}

// StoryFields is the fixed mapping table over every mutable story field.
// The id column is immutable and never appears in a patch.
var StoryFields = []FieldMapping{
	{Field: "slug", Column: "slug", value: func(p *StoryPatch) (any, bool) { return deref(p.Slug) }},
	{Field: "title", Column: "title", value: func(p *StoryPatch) (any, bool) { return deref(p.Title) }},
	{Field: "subtitle", Column: "subtitle", value: func(p *StoryPatch) (any, bool) { return deref(p.Subtitle) }},
	{Field: "excerpt", Column: "excerpt", value: func(p *StoryPatch) (any, bool) { return deref(p.Excerpt) }},
	{Field: "content", Column: "content", value: func(p *StoryPatch) (any, bool) { return deref(p.Content) }},
	{Field: "author", Column: "author", value: func(p *StoryPatch) (any, bool) { return deref(p.Author) }},
	{Field: "category", Column: "category", value: func(p *StoryPatch) (any, bool) {
		if p.Category == nil {
			return nil, false
		}
		return string(*p.Category), true
	}},
	{Field: "tags", Column: "tags", value: func(p *StoryPatch) (any, bool) {
		if p.Tags == nil {
			return nil, false
		}
		return append([]string{}, (*p.Tags)...), true
	}},
	{Field: "imageUrl", Column: "image_url", value: func(p *StoryPatch) (any, bool) { return deref(p.ImageURL) }},
	{Field: "imageCaption", Column: "image_caption", value: func(p *StoryPatch) (any, bool) { return deref(p.ImageCaption) }},
	{Field: "publishedAt", Column: "published_at", value: func(p *StoryPatch) (any, bool) {
		if p.PublishedAt == nil {
			return nil, false
		}
		return p.PublishedAt.UTC(), true
	}},
	{Field: "updatedAt", Column: "updated_at", value: func(p *StoryPatch) (any, bool) {
		if p.UpdatedAt == nil {
			return nil, false
		}
		return p.UpdatedAt.UTC(), true
	}},
	{Field: "featured", Column: "featured", value: func(p *StoryPatch) (any, bool) { return deref(p.Featured) }},
	{Field: "status", Column: "status", value: func(p *StoryPatch) (any, bool) {
		if p.Status == nil {
			return nil, false
		}
		return string(*p.Status), true
	}},
	{Field: "sourceUrl", Column: "source_url", value: func(p *StoryPatch) (any, bool) { return deref(p.SourceURL) }},
	{Field: "sourceName", Column: "source_name", value: func(p *StoryPatch) (any, bool) { return deref(p.SourceName) }},
}

var (
	fieldToColumn = make(map[string]string, len(StoryFields))
	columnToField = make(map[string]string, len(StoryFields))
)

func init() {
	for _, m := range StoryFields {
		fieldToColumn[m.Field] = m.Column
		columnToField[m.Column] = m.Field
	}
}

// ColumnFor returns the persistence column of an entity field
func ColumnFor(field string) (string, bool) {
	c, ok := fieldToColumn[field]
	return c, ok
}

// FieldFor returns the entity field of a persistence column
func FieldFor(column string) (string, bool) {
	f, ok := columnToField[column]
	return f, ok
}

// Values returns the set fields of the patch in mapping-table order
func (p *StoryPatch) Values() []FieldValue {
	var out []FieldValue
	for _, m := range StoryFields {
		if v, ok := m.value(p); ok {
			out = append(out, FieldValue{Field: m.Field, Column: m.Column, Value: v})
		}
	}
	return out
}

func deref[T any](v *T) (any, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}
