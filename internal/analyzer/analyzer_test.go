package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gabvrl/revisor/internal/scanner"
)

type stubGenerator struct {
	responses map[string]string
	err       error
	calls     int
}

func (g *stubGenerator) GenerateJSON(_ context.Context, prompt string) ([]byte, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	for marker, response := range g.responses {
		if strings.Contains(prompt, marker) {
			return []byte(response), nil
		}
	}
	return nil, fmt.Errorf("no stub response for prompt")
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestAnalyzeCourseDocumentDecodesConcepts(t *testing.T) {
	gen := &stubGenerator{responses: map[string]string{
		"ohm.md": `{"concepts": [
			{"name": "Ohm's law", "description": "V = I*R", "category": "Fundamentals",
			 "importance": "critical", "prerequisites": [], "related_concepts": ["Power"]},
			{"name": "  ", "description": "ignored"},
			{"name": "Power", "description": "P = U*I", "importance": "weird"}
		]}`,
	}}
	a := New(gen, nil, WithIDSource(sequentialIDs()))
	doc := scanner.Document{Filename: "ohm.md", Module: "AA01", Category: scanner.CategoryCourse, Content: "..."}

	concepts, err := a.AnalyzeCourseDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(concepts) != 2 {
		t.Fatalf("expected 2 concepts (blank name dropped), got %d", len(concepts))
	}
	first := concepts[0]
	if first.ID != "id-1" || first.Name != "Ohm's law" || first.Priority != PriorityCritical {
		t.Fatalf("unexpected first concept: %+v", first)
	}
	if first.SourceDocument != "ohm.md" || first.SourceModule != "AA01" {
		t.Fatalf("source not propagated: %+v", first)
	}
	if concepts[1].Priority != PriorityMedium {
		t.Fatalf("unknown importance should normalize to medium, got %s", concepts[1].Priority)
	}
}

func TestAnalyzeCourseDocumentSurfacesCallError(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	a := New(&stubGenerator{err: wantErr}, nil)
	_, err := a.AnalyzeCourseDocument(context.Background(), scanner.Document{Filename: "x.md"})
	if err == nil || !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped call error, got %v", err)
	}
}

func TestMapConceptsFlagsExamRelevance(t *testing.T) {
	gen := &stubGenerator{responses: map[string]string{
		"EXAM REQUIREMENTS": `{"mappings": [
			{"requirement": "Grid protection", "required_concepts": ["ohm's law"], "coverage": "partial"}
		], "gaps": [{"requirement": "Safety rules", "missing_knowledge": "not in courses"}]}`,
	}}
	a := New(gen, nil, WithIDSource(sequentialIDs()))
	concepts := []Concept{{ID: "c1", Name: "Ohm's law"}, {ID: "c2", Name: "Power"}}
	requirements := []ExamRequirement{{ID: "r1", Topic: "Grid protection", Description: "protect the grid"}}

	result, err := a.MapConceptsToRequirements(context.Background(), concepts, requirements)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if !concepts[0].ExamRelevant {
		t.Fatalf("expected Ohm's law flagged exam-relevant")
	}
	if concepts[1].ExamRelevant {
		t.Fatalf("Power should not be flagged")
	}
	if len(concepts[0].ExamTopics) != 1 || concepts[0].ExamTopics[0] != "Grid protection" {
		t.Fatalf("exam topics not recorded: %v", concepts[0].ExamTopics)
	}
	if len(result.Gaps) != 1 {
		t.Fatalf("expected one gap, got %d", len(result.Gaps))
	}
}

func TestMapConceptsDegradesOnFailure(t *testing.T) {
	a := New(&stubGenerator{err: errors.New("boom")}, nil)
	concepts := []Concept{{ID: "c1", Name: "Ohm's law"}}
	requirements := []ExamRequirement{{ID: "r1", Topic: "Grid protection"}}
	result, err := a.MapConceptsToRequirements(context.Background(), concepts, requirements)
	if err != nil {
		t.Fatalf("mapping failure should degrade, got error %v", err)
	}
	if len(result.Mappings) != 0 {
		t.Fatalf("expected empty mapping result")
	}
}

func TestAnalyzeAllSkipsFailedDocuments(t *testing.T) {
	gen := &stubGenerator{responses: map[string]string{
		"good.md": `{"concepts": [{"name": "Transformers", "description": "...", "importance": "high"}]}`,
	}}
	a := New(gen, nil, WithIDSource(sequentialIDs()))
	docs := []scanner.Document{
		{Filename: "good.md", Category: scanner.CategoryCourse},
		{Filename: "bad.md", Category: scanner.CategoryCourse},
	}
	concepts, requirements, _, err := a.AnalyzeAll(context.Background(), docs)
	if err != nil {
		t.Fatalf("analyze all: %v", err)
	}
	if len(concepts) != 1 || concepts[0].Name != "Transformers" {
		t.Fatalf("unexpected concepts: %+v", concepts)
	}
	if len(requirements) != 0 {
		t.Fatalf("unexpected requirements: %+v", requirements)
	}
}

func TestAnalyzeAllFailsWhenNothingExtracted(t *testing.T) {
	a := New(&stubGenerator{err: errors.New("down")}, nil)
	docs := []scanner.Document{{Filename: "a.md", Category: scanner.CategoryCourse}}
	if _, _, _, err := a.AnalyzeAll(context.Background(), docs); err == nil {
		t.Fatalf("expected error when no concepts could be extracted")
	}
}
