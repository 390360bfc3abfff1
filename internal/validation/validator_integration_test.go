package validation

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

func testdataPath(t *testing.T, filename string) string {
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

func TestValidateCreate_NDJSONData(t *testing.T) {
	file, err := os.Open(testdataPath(t, "stories.ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var valid, invalid, malformed int
	fieldErrors := map[string]int{}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var in models.StoryInput
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			malformed++
			continue
		}

		Sanitize(&in)
		errors := ValidateCreate(&in)
		if len(errors) == 0 {
			valid++
			if strings.Contains(*in.Content, "<script>") {
				t.Errorf("Expected script stripped from %q", *in.Title)
			}
			continue
		}
		invalid++
		for _, e := range errors {
			fieldErrors[e.Field]++
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	if valid != 3 {
		t.Errorf("Expected 3 valid stories, got %d", valid)
	}
	if invalid != 3 {
		t.Errorf("Expected 3 invalid stories, got %d", invalid)
	}
	if malformed != 1 {
		t.Errorf("Expected 1 malformed line, got %d", malformed)
	}
	for _, f := range []string{"category", "title", "status"} {
		if fieldErrors[f] != 1 {
			t.Errorf("Expected 1 error on %s, got %d", f, fieldErrors[f])
		}
	}
}
