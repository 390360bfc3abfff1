package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willcldrr/exoticweeklywebiste/internal/mocks"
	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

// testdataPath returns the absolute path to a file in the testdata directory.
func testdataPath(t testing.TB, filename string) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(currentFile)))
	path := filepath.Join(projectRoot, "testdata", filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("testdata file not found: %s", path)
	}
	return path
}

type testHarness struct {
	services *Services
	store    *mocks.MockStoryStore
}

func newTestHarness(t *testing.T, seed ...models.Story) *testHarness {
	t.Helper()

	store := mocks.NewMockStoryStore(seed...)
	services := NewServices(store, StoryOptions{
		Now: func() time.Time { return fixedNow },
		Log: zerolog.Nop(),
	})
	require.NoError(t, services.Stories.Refresh(context.Background()))

	return &testHarness{services: services, store: store}
}

func TestExport_NDJSON(t *testing.T) {
	h := newTestHarness(t, fixtures()...)
	rec := httptest.NewRecorder()

	count, err := h.services.Export.Export(context.Background(), rec, models.ExportNDJSON)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	var got []string
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		var st models.Story
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &st))
		got = append(got, st.ID)
	}
	assert.Equal(t, []string{"a3", "a4", "a2", "a5", "a1", "a6"}, got)
}

func TestExport_JSON(t *testing.T) {
	h := newTestHarness(t, fixtures()...)
	var buf bytes.Buffer

	count, err := h.services.Export.Export(context.Background(), &buf, models.ExportJSON)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	var stories []models.Story
	require.NoError(t, json.Unmarshal(buf.Bytes(), &stories))
	require.Len(t, stories, 6)
	assert.Equal(t, fixtures()[0].Tags, findByID(stories, "a1").Tags)
}

func TestExport_EmptyJSONIsArray(t *testing.T) {
	h := newTestHarness(t)
	var buf bytes.Buffer

	count, err := h.services.Export.Export(context.Background(), &buf, models.ExportJSON)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, "[]", buf.String())
}

func TestExport_UnsupportedFormat(t *testing.T) {
	h := newTestHarness(t, fixtures()...)
	var buf bytes.Buffer

	_, err := h.services.Export.Export(context.Background(), &buf, "csv")
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestExport_CanceledContext(t *testing.T) {
	h := newTestHarness(t, fixtures()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	count, err := h.services.Export.Export(ctx, &buf, models.ExportNDJSON)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, count)
}

func TestImport_TestdataFile(t *testing.T) {
	h := newTestHarness(t)

	file, err := os.Open(testdataPath(t, "stories.ndjson"))
	require.NoError(t, err)
	defer file.Close()

	report, err := h.services.Import.Import(context.Background(), file, models.OriginIngest)
	require.NoError(t, err)

	assert.Equal(t, models.OriginIngest, report.Origin)
	assert.Equal(t, 7, report.TotalRecords)
	assert.Equal(t, 3, report.SuccessfulCount)
	assert.Equal(t, 4, report.FailedCount)
	assert.Len(t, report.CreatedIDs, 3)
	assert.Equal(t, 3, h.store.Count())

	fields := map[string]int{}
	for _, e := range report.Errors {
		fields[e.Field]++
		assert.Positive(t, e.Line)
	}
	assert.Equal(t, 1, fields["json"])
	assert.Equal(t, 1, fields["category"])
	assert.Equal(t, 1, fields["title"])
	assert.Equal(t, 1, fields["status"])

	ferrari, ok := h.services.Stories.BySlug("ferrari-f40-returns")
	require.True(t, ok)
	assert.Equal(t, models.StatusPublished, ferrari.Status)

	for _, st := range h.services.Stories.All() {
		assert.NotContains(t, st.Content, "<script>")
		assert.NotEqual(t, models.Category("Vintage"), st.Category)
	}
}

func TestImport_AdminOriginDefaults(t *testing.T) {
	h := newTestHarness(t)
	body := `{"title":"Miura SV Found","excerpt":"e","content":"<p>c</p>","author":"a","category":"Heritage"}`

	report, err := h.services.Import.Import(context.Background(), strings.NewReader(body), models.OriginAdmin)
	require.NoError(t, err)
	require.Equal(t, 1, report.SuccessfulCount)

	st, ok := h.services.Stories.ByID(report.CreatedIDs[0])
	require.True(t, ok)
	assert.Equal(t, models.StatusDraft, st.Status)
	assert.Equal(t, models.PlaceholderImageURL, st.ImageURL)
	assert.Equal(t, "miura-sv-found", st.Slug)
	assert.True(t, st.PublishedAt.Equal(fixedNow))
	assert.Empty(t, h.services.Stories.Published())
}

func TestImport_DuplicateTitlesGetUniqueSlugs(t *testing.T) {
	h := newTestHarness(t)
	line := `{"title":"Ferrari F40 Returns","excerpt":"e","content":"c","author":"a","category":"News"}`

	report, err := h.services.Import.Import(context.Background(), strings.NewReader(line+"\n"+line+"\n"), "")
	require.NoError(t, err)
	assert.Equal(t, models.OriginIngest, report.Origin)
	require.Equal(t, 2, report.SuccessfulCount)

	first, _ := h.services.Stories.ByID(report.CreatedIDs[0])
	second, _ := h.services.Stories.ByID(report.CreatedIDs[1])
	assert.Equal(t, "ferrari-f40-returns", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
}

func TestImport_StoreFailureIsReported(t *testing.T) {
	h := newTestHarness(t)
	h.store.CreateError = errors.New("connection reset")
	line := `{"title":"T","excerpt":"e","content":"c","author":"a","category":"News"}`

	report, err := h.services.Import.Import(context.Background(), strings.NewReader(line), models.OriginIngest)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FailedCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "store", report.Errors[0].Field)
	assert.Equal(t, 1, report.Errors[0].Line)
}

func findByID(stories []models.Story, id string) models.Story {
	for _, s := range stories {
		if s.ID == id {
			return s
		}
	}
	return models.Story{}
}
