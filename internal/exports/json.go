package exports

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gabvrl/revisor/internal/analyzer"
	"github.com/gabvrl/revisor/internal/conceptmap"
	"github.com/gabvrl/revisor/internal/planner"
	"github.com/gabvrl/revisor/internal/quiz"
)

// PlanDocument is the JSON shape of revision_plan.json.
type PlanDocument struct {
	Meta Metadata      `json:"_revisor"`
	Plan *planner.Plan `json:"plan"`
}

// ConceptMapDocument is the JSON shape of concept_map.json: the analyzed
// concepts, the derived graph views, and the exam-coverage report.
type ConceptMapDocument struct {
	Meta          Metadata                  `json:"_revisor"`
	Concepts      []analyzer.Concept        `json:"concepts"`
	Categories    map[string][]string       `json:"categories"`
	LearningOrder []string                  `json:"learning_order"`
	Coverage      conceptmap.CoverageReport `json:"coverage"`
}

// WritePlanJSON writes revision_plan.json.
func WritePlanJSON(path string, plan *planner.Plan, meta Metadata) error {
	return writeJSON(path, PlanDocument{Meta: meta, Plan: plan})
}

// LoadPlanJSON reads a plan export back, verifying the envelope.
func LoadPlanJSON(path string) (*PlanDocument, error) {
	var doc PlanDocument
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc.Meta.Generator != Generator || doc.Plan == nil {
		return nil, fmt.Errorf("exports: %s is not a revisor plan export", path)
	}
	return &doc, nil
}

// WriteConceptMapJSON writes concept_map.json from the analyzed concepts and
// the graph built over them.
func WriteConceptMapJSON(path string, concepts []analyzer.Concept, graph *conceptmap.Graph, coverage conceptmap.CoverageReport, meta Metadata) error {
	doc := ConceptMapDocument{
		Meta:          meta,
		Concepts:      concepts,
		Categories:    graph.Categories(),
		LearningOrder: graph.LearningOrder(),
		Coverage:      coverage,
	}
	return writeJSON(path, doc)
}

// LoadConceptMapJSON reads a concept map export back, verifying the envelope.
func LoadConceptMapJSON(path string) (*ConceptMapDocument, error) {
	var doc ConceptMapDocument
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc.Meta.Generator != Generator {
		return nil, fmt.Errorf("exports: %s is not a revisor concept map export", path)
	}
	return &doc, nil
}

// QuizDocument is the JSON shape of quiz.json: the last generated quiz or
// mock exam, waiting to be taken.
type QuizDocument struct {
	Meta Metadata   `json:"_revisor"`
	Quiz *quiz.Quiz `json:"quiz"`
}

// WriteQuizJSON writes quiz.json.
func WriteQuizJSON(path string, q *quiz.Quiz, meta Metadata) error {
	return writeJSON(path, QuizDocument{Meta: meta, Quiz: q})
}

// LoadQuizJSON reads a quiz export back, verifying the envelope.
func LoadQuizJSON(path string) (*QuizDocument, error) {
	var doc QuizDocument
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc.Meta.Generator != Generator || doc.Quiz == nil {
		return nil, fmt.Errorf("exports: %s is not a revisor quiz export", path)
	}
	return &doc, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("exports: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("exports: write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("exports: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("exports: decode %s: %w", path, err)
	}
	return nil
}
