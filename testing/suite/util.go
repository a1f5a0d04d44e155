package suite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// GetDateTime returns a time.Time object from a string.
// Example: GetDateTime("2021-01-01")
func GetDateTime(t *testing.T, incomingDateTime string) time.Time {
	t.Helper()

	dateTime, err := time.Parse("2006-01-02", incomingDateTime)
	if err != nil {
		t.Fatalf("could not parse date time: %v", err)
	}
	return dateTime
}

// WriteFile writes lines joined by newlines into dir/name and returns the path.
func WriteFile(t *testing.T, dir string, name string, lines ...string) string {
	t.Helper()

	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of a file produced by the code under test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read %s: %v", path, err)
	}
	return string(content)
}
