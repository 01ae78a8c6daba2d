package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gabvrl/revisor/internal/analyzer"
	"github.com/gabvrl/revisor/internal/scanner"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "index.duckdb"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestReplaceAndListDocuments(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	scanned := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	docs := []scanner.Document{
		{Path: "courses/AA01/intro.md", Filename: "intro.md", Extension: ".md", Category: scanner.CategoryCourse, Module: "AA01", WordCount: 120, ScannedAt: scanned},
		{Path: "directives/exam.txt", Filename: "exam.txt", Extension: ".txt", Category: scanner.CategoryDirective, WordCount: 40, ScannedAt: scanned},
	}
	if err := ix.ReplaceDocuments(ctx, docs); err != nil {
		t.Fatalf("ReplaceDocuments: %v", err)
	}

	got, err := ix.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d documents, want 2", len(got))
	}
	if got[0].Category != scanner.CategoryCourse || got[0].Module != "AA01" {
		t.Errorf("first row = %+v", got[0])
	}

	// A second scan replaces, not appends.
	if err := ix.ReplaceDocuments(ctx, docs[:1]); err != nil {
		t.Fatalf("ReplaceDocuments again: %v", err)
	}
	got, err = ix.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d documents after replace, want 1", len(got))
	}
}

func TestReplaceAndListConcepts(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	concepts := []analyzer.Concept{
		{ID: "c1", Name: "Zebra Topic", Priority: analyzer.PriorityMedium, Prerequisites: []string{"A", "B"}},
		{ID: "c2", Name: "Alpha Topic", Priority: analyzer.PriorityCritical, ExamRelevant: true},
	}
	if err := ix.ReplaceConcepts(ctx, concepts, time.Now()); err != nil {
		t.Fatalf("ReplaceConcepts: %v", err)
	}

	got, err := ix.Concepts(ctx)
	if err != nil {
		t.Fatalf("Concepts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d concepts, want 2", len(got))
	}
	if got[0].Name != "Alpha Topic" {
		t.Errorf("critical concept should sort first, got %q", got[0].Name)
	}
	if len(got[1].Prerequisites) != 2 {
		t.Errorf("prerequisites lost: %+v", got[1])
	}
}

func TestStats(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()

	docs := []scanner.Document{
		{Path: "courses/a.md", Filename: "a.md", Extension: ".md", Category: scanner.CategoryCourse, WordCount: 10, ScannedAt: time.Now()},
		{Path: "directives/d.md", Filename: "d.md", Extension: ".md", Category: scanner.CategoryDirective, WordCount: 10, ScannedAt: time.Now()},
	}
	if err := ix.ReplaceDocuments(ctx, docs); err != nil {
		t.Fatalf("ReplaceDocuments: %v", err)
	}
	concepts := []analyzer.Concept{
		{ID: "c1", Name: "One", Priority: analyzer.PriorityHigh, ExamRelevant: true},
		{ID: "c2", Name: "Two", Priority: analyzer.PriorityLow},
	}
	if err := ix.ReplaceConcepts(ctx, concepts, time.Now()); err != nil {
		t.Fatalf("ReplaceConcepts: %v", err)
	}

	stats, err := ix.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := Stats{Documents: 2, Courses: 1, Directives: 1, Concepts: 2, ExamRelevant: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}
