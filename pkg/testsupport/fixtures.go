package testsupport

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fixtureTime pins zip entry timestamps so fixture packages are reproducible.
var fixtureTime = time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

// Entry is one file of an in-memory package fixture.
type Entry struct {
	Name    string
	Content string
}

// BuildDocx assembles a zip package with entries in the given order.
func BuildDocx(t *testing.T, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry.Name,
			Method:   zip.Deflate,
			Modified: fixtureTime,
		})
		if err != nil {
			t.Fatalf("create entry %q: %v", entry.Name, err)
		}
		if _, err := w.Write([]byte(entry.Content)); err != nil {
			t.Fatalf("write entry %q: %v", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close package: %v", err)
	}
	return buf.Bytes()
}

// MinimalDocument wraps body paragraphs in a word/document.xml envelope.
func MinimalDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body +
		`</w:body></w:document>`
}

// MinimalDocx builds a package holding a content-types part and a main
// document part with body.
func MinimalDocx(t *testing.T, body string) []byte {
	t.Helper()
	return BuildDocx(t,
		Entry{Name: "[Content_Types].xml", Content: `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		Entry{Name: "word/document.xml", Content: MinimalDocument(body)},
	)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
