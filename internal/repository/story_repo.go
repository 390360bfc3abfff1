package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/database"
	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

const storyColumns = `id, slug, title, subtitle, excerpt, content, author, category, tags,
	image_url, image_caption, published_at, updated_at, featured, status, source_url, source_name`

// uniqueViolation is the Postgres error code for a unique index conflict
const uniqueViolation = "23505"

// storyRow is the persistence shape of a story
type storyRow struct {
	ID           string         `db:"id"`
	Slug         string         `db:"slug"`
	Title        string         `db:"title"`
	Subtitle     sql.NullString `db:"subtitle"`
	Excerpt      string         `db:"excerpt"`
	Content      string         `db:"content"`
	Author       string         `db:"author"`
	Category     string         `db:"category"`
	Tags         pq.StringArray `db:"tags"`
	ImageURL     sql.NullString `db:"image_url"`
	ImageCaption sql.NullString `db:"image_caption"`
	PublishedAt  time.Time      `db:"published_at"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
	Featured     bool           `db:"featured"`
	Status       string         `db:"status"`
	SourceURL    sql.NullString `db:"source_url"`
	SourceName   sql.NullString `db:"source_name"`
}

func (r *storyRow) toStory() models.Story {
	s := models.Story{
		ID:           r.ID,
		Slug:         r.Slug,
		Title:        r.Title,
		Subtitle:     nullString(r.Subtitle),
		Excerpt:      r.Excerpt,
		Content:      r.Content,
		Author:       r.Author,
		Category:     models.Category(r.Category),
		Tags:         append([]string{}, r.Tags...),
		ImageURL:     r.ImageURL.String,
		ImageCaption: nullString(r.ImageCaption),
		PublishedAt:  r.PublishedAt.UTC(),
		Featured:     r.Featured,
		Status:       models.Status(r.Status),
		SourceURL:    nullString(r.SourceURL),
		SourceName:   nullString(r.SourceName),
	}
	if r.UpdatedAt.Valid {
		t := r.UpdatedAt.Time.UTC()
		s.UpdatedAt = &t
	}
	return s
}

// storyRepo is the Postgres implementation of StoryStore
type storyRepo struct {
	db  *database.DB
	log zerolog.Logger
}

// NewStoryRepo creates the remote story store. A nil db behaves as an
// empty, read-only store.
func NewStoryRepo(db *database.DB, log zerolog.Logger) StoryStore {
	return &storyRepo{
		db:  db,
		log: log.With().Str("component", "story_repo").Logger(),
	}
}

// Name identifies the backend
func (r *storyRepo) Name() string {
	return StoreRemote
}

// FetchAll retrieves every story, newest first
func (r *storyRepo) FetchAll(ctx context.Context) ([]models.Story, error) {
	return r.selectStories(ctx, "fetch_all",
		`SELECT `+storyColumns+` FROM stories ORDER BY published_at DESC`)
}

// FetchPublished retrieves published stories, newest first
func (r *storyRepo) FetchPublished(ctx context.Context) ([]models.Story, error) {
	return r.selectStories(ctx, "fetch_published",
		`SELECT `+storyColumns+` FROM stories WHERE status = $1 ORDER BY published_at DESC`,
		string(models.StatusPublished))
}

// FetchBySlug retrieves a story by slug regardless of status
func (r *storyRepo) FetchBySlug(ctx context.Context, slug string) (*models.Story, error) {
	if r.db == nil {
		return nil, nil
	}

	var row storyRow
	err := r.db.GetContext(ctx, &row, `SELECT `+storyColumns+` FROM stories WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error().Err(err).Str("op", "fetch_by_slug").Str("slug", slug).Msg("Story query failed")
		return nil, fmt.Errorf("fetch story by slug: %w", err)
	}

	story := row.toStory()
	return &story, nil
}

// FetchByCategory retrieves published stories in one category, newest first
func (r *storyRepo) FetchByCategory(ctx context.Context, category models.Category) ([]models.Story, error) {
	return r.selectStories(ctx, "fetch_by_category",
		`SELECT `+storyColumns+` FROM stories WHERE category = $1 AND status = $2 ORDER BY published_at DESC`,
		string(category), string(models.StatusPublished))
}

// FetchFeatured retrieves published featured stories, newest first
func (r *storyRepo) FetchFeatured(ctx context.Context) ([]models.Story, error) {
	return r.selectStories(ctx, "fetch_featured",
		`SELECT `+storyColumns+` FROM stories WHERE featured = true AND status = $1 ORDER BY published_at DESC`,
		string(models.StatusPublished))
}

// FetchList retrieves stories matching the filter, newest first
func (r *storyRepo) FetchList(ctx context.Context, filter models.ListFilter) ([]models.Story, error) {
	query, args := buildListQuery(filter)
	return r.selectStories(ctx, "fetch_list", query, args...)
}

// Create inserts a story and returns it with its generated id
func (r *storyRepo) Create(ctx context.Context, story models.Story) (*models.Story, error) {
	if r.db == nil {
		return nil, nil
	}

	tags := story.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO stories (slug, title, subtitle, excerpt, content, author, category, tags,
			image_url, image_caption, published_at, featured, status, source_url, source_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + storyColumns

	var row storyRow
	err := r.db.QueryRowxContext(ctx, query,
		story.Slug, story.Title, story.Subtitle, story.Excerpt, story.Content, story.Author,
		string(story.Category), pq.StringArray(tags), story.ImageURL, story.ImageCaption,
		story.PublishedAt.UTC(), story.Featured, string(story.Status), story.SourceURL, story.SourceName,
	).StructScan(&row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugConflict
		}
		r.log.Error().Err(err).Str("op", "create").Str("slug", story.Slug).Msg("Story insert failed")
		return nil, fmt.Errorf("create story: %w", err)
	}

	created := row.toStory()
	return &created, nil
}

// Update applies a partial update and returns the stored result.
// updated_at is set to now() unless the patch supplies it.
func (r *storyRepo) Update(ctx context.Context, id string, patch models.StoryPatch) (*models.Story, error) {
	if r.db == nil {
		return nil, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query, args := buildUpdateQuery(id, patch)

	var row storyRow
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugConflict
		}
		r.log.Error().Err(err).Str("op", "update").Str("id", id).Msg("Story update failed")
		return nil, fmt.Errorf("update story: %w", err)
	}

	updated := row.toStory()
	return &updated, nil
}

// Delete removes a story permanently
func (r *storyRepo) Delete(ctx context.Context, id string) error {
	if r.db == nil {
		return ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM stories WHERE id = $1", id)
	if err != nil {
		r.log.Error().Err(err).Str("op", "delete").Str("id", id).Msg("Story delete failed")
		return fmt.Errorf("delete story: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *storyRepo) selectStories(ctx context.Context, op, query string, args ...interface{}) ([]models.Story, error) {
	if r.db == nil {
		return []models.Story{}, nil
	}

	var rows []storyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.Error().Err(err).Str("op", op).Msg("Story query failed")
		return nil, fmt.Errorf("%s: %w", strings.ReplaceAll(op, "_", " "), err)
	}

	stories := make([]models.Story, 0, len(rows))
	for i := range rows {
		stories = append(stories, rows[i].toStory())
	}
	return stories, nil
}

// buildListQuery renders the filtered listing query and its arguments
func buildListQuery(filter models.ListFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Featured {
		where = append(where, "featured = true")
	}

	var b strings.Builder
	b.WriteString("SELECT " + storyColumns + " FROM stories")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY published_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

// buildUpdateQuery renders a partial update over the columns the patch
// sets, translated through the field mapping table. An empty patch only
// touches updated_at.
func buildUpdateQuery(id string, patch models.StoryPatch) (string, []interface{}) {
	var (
		sets []string
		args []interface{}
	)
	touchedUpdatedAt := false
	for _, fv := range patch.Values() {
		v := fv.Value
		if fv.Column == "tags" {
			v = pq.StringArray(fv.Value.([]string))
		}
		if fv.Column == "updated_at" {
			touchedUpdatedAt = true
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", fv.Column, len(args)))
	}
	if !touchedUpdatedAt {
		sets = append(sets, "updated_at = now()")
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE stories SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), storyColumns)
	return query, args
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
