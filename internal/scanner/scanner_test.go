package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Printf(string, ...any) {}
func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, format)
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanDirectoryExtractsTextAndModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "AA01 Grid Basics", "ohm.md"), "# Ohm's law\n\nVoltage equals current times resistance.")
	writeFile(t, filepath.Join(dir, "misc", "notes.txt"), "plain notes")

	fixed := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	s := New(nil, WithClock(func() time.Time { return fixed }))
	docs, err := s.ScanDirectory(dir, CategoryCourse)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	byName := map[string]Document{}
	for _, d := range docs {
		byName[d.Filename] = d
	}
	ohm := byName["ohm.md"]
	if ohm.Module != "AA01" {
		t.Fatalf("expected module AA01, got %q", ohm.Module)
	}
	if ohm.WordCount != 8 {
		t.Fatalf("unexpected word count %d", ohm.WordCount)
	}
	if !ohm.ScannedAt.Equal(fixed) {
		t.Fatalf("clock not applied: %s", ohm.ScannedAt)
	}
	if notes := byName["notes.txt"]; notes.Module != "" {
		t.Fatalf("expected no module for notes.txt, got %q", notes.Module)
	}
}

func TestScanDirectoryCreatesMissingDirWithWarning(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")
	logger := &recordingLogger{}
	docs, err := New(logger).ScanDirectory(dir, CategoryDirective)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
	if len(logger.warnings) == 0 {
		t.Fatalf("expected a missing-directory warning")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("directory was not created: %v", err)
	}
}

func TestScanDirectorySkipsUnsupportedWithWarning(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "slides.docx"), "binary-ish")
	writeFile(t, filepath.Join(dir, "readme.md"), "keep me")

	logger := &recordingLogger{}
	docs, err := New(logger).ScanDirectory(dir, CategoryCourse)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(docs) != 1 || docs[0].Filename != "readme.md" {
		t.Fatalf("expected only readme.md, got %+v", docs)
	}
	if len(logger.warnings) == 0 {
		t.Fatalf("expected a skip warning for the docx file")
	}
}

func TestDetectModule(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"courses/AA01 Grid Basics/intro.pdf", "AA01"},
		{"courses/ae03/notes.md", "AE03"},
		{"courses/module2/x.txt", "module2"},
		{"courses/M1/x.txt", "M1"},
		{"courses/general/x.txt", ""},
		{"courses/AExy/x.txt", ""},
	}
	for _, tc := range cases {
		if got := DetectModule(tc.path); got != tc.want {
			t.Errorf("DetectModule(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestScanAllMergesCategories(t *testing.T) {
	root := t.TempDir()
	courses := filepath.Join(root, "courses")
	directives := filepath.Join(root, "directives")
	writeFile(t, filepath.Join(courses, "a.txt"), "course text")
	writeFile(t, filepath.Join(directives, "d.txt"), "directive text")

	docs, err := New(nil).ScanAll(courses, directives)
	if err != nil {
		t.Fatalf("scan all: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Category != CategoryCourse || docs[1].Category != CategoryDirective {
		t.Fatalf("unexpected categories: %s, %s", docs[0].Category, docs[1].Category)
	}
}
