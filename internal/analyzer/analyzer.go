// Package analyzer extracts concepts and exam requirements from scanned
// documents through a generative-AI call, and matches the two sets so the
// planner knows what is exam-relevant.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gabvrl/revisor/internal/scanner"
)

// Logger matches logging.Logger.
type Logger interface {
	Printf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Analyzer runs the AI analysis pass over scanned documents.
type Analyzer struct {
	generator ContentGenerator
	logger    Logger
	newID     func() string
}

// Option customizes analyzer construction.
type Option func(*Analyzer)

// WithIDSource overrides concept ID generation (tests).
func WithIDSource(newID func() string) Option {
	return func(a *Analyzer) {
		if newID != nil {
			a.newID = newID
		}
	}
}

// New builds an Analyzer on top of a content generator.
func New(generator ContentGenerator, logger Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		generator: generator,
		logger:    logger,
		newID:     func() string { return uuid.NewString() },
	}
	if a.logger == nil {
		a.logger = nopLogger{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

type conceptPayload struct {
	Concepts []struct {
		Name            string   `json:"name"`
		Description     string   `json:"description"`
		Category        string   `json:"category"`
		Importance      string   `json:"importance"`
		Prerequisites   []string `json:"prerequisites"`
		RelatedConcepts []string `json:"related_concepts"`
	} `json:"concepts"`
}

type requirementPayload struct {
	Requirements []struct {
		Topic           string `json:"topic"`
		Description     string `json:"description"`
		CompetencyLevel string `json:"competency_level"`
	} `json:"requirements"`
}

// AnalyzeCourseDocument extracts concepts from one course document.
func (a *Analyzer) AnalyzeCourseDocument(ctx context.Context, doc scanner.Document) ([]Concept, error) {
	raw, err := a.generator.GenerateJSON(ctx, coursePrompt(doc.Filename, doc.Module, doc.Content))
	if err != nil {
		return nil, fmt.Errorf("analyzer: %s: %w", doc.Filename, err)
	}
	var payload conceptPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("analyzer: %s: decode concepts: %w", doc.Filename, err)
	}
	concepts := make([]Concept, 0, len(payload.Concepts))
	for _, c := range payload.Concepts {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		concepts = append(concepts, Concept{
			ID:              a.newID(),
			Name:            name,
			Description:     strings.TrimSpace(c.Description),
			Category:        defaultString(c.Category, "General"),
			Priority:        Priority(strings.ToLower(strings.TrimSpace(c.Importance))).Normalize(),
			SourceDocument:  doc.Filename,
			SourceModule:    doc.Module,
			Prerequisites:   trimAll(c.Prerequisites),
			RelatedConcepts: trimAll(c.RelatedConcepts),
		})
	}
	a.logger.Printf("analyzer: %s: %d concepts", doc.Filename, len(concepts))
	return concepts, nil
}

// AnalyzeDirectiveDocument extracts exam requirements from one directive.
func (a *Analyzer) AnalyzeDirectiveDocument(ctx context.Context, doc scanner.Document) ([]ExamRequirement, error) {
	raw, err := a.generator.GenerateJSON(ctx, directivePrompt(doc.Filename, doc.Content))
	if err != nil {
		return nil, fmt.Errorf("analyzer: %s: %w", doc.Filename, err)
	}
	var payload requirementPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("analyzer: %s: decode requirements: %w", doc.Filename, err)
	}
	reqs := make([]ExamRequirement, 0, len(payload.Requirements))
	for _, r := range payload.Requirements {
		topic := strings.TrimSpace(r.Topic)
		if topic == "" {
			continue
		}
		reqs = append(reqs, ExamRequirement{
			ID:              a.newID(),
			Topic:           topic,
			Description:     strings.TrimSpace(r.Description),
			CompetencyLevel: strings.TrimSpace(r.CompetencyLevel),
			SourceDocument:  doc.Filename,
		})
	}
	a.logger.Printf("analyzer: %s: %d requirements", doc.Filename, len(reqs))
	return reqs, nil
}

// MapConceptsToRequirements matches concepts to requirements with one model
// call and flags exam-relevant concepts in place. A failed call degrades to
// an empty mapping so planning can continue without exam weighting.
func (a *Analyzer) MapConceptsToRequirements(ctx context.Context, concepts []Concept, requirements []ExamRequirement) (MappingResult, error) {
	if len(concepts) == 0 || len(requirements) == 0 {
		return MappingResult{}, nil
	}
	raw, err := a.generator.GenerateJSON(ctx, mappingPrompt(concepts, requirements))
	if err != nil {
		a.logger.Warnf("analyzer: requirement mapping failed, continuing without exam weighting: %v", err)
		return MappingResult{}, nil
	}
	var result MappingResult
	if err := json.Unmarshal(raw, &result); err != nil {
		a.logger.Warnf("analyzer: requirement mapping returned invalid JSON, continuing without exam weighting: %v", err)
		return MappingResult{}, nil
	}
	byName := make(map[string]*Concept, len(concepts))
	for i := range concepts {
		byName[strings.ToLower(concepts[i].Name)] = &concepts[i]
	}
	for _, mapping := range result.Mappings {
		for _, name := range mapping.RequiredConcepts {
			if c, ok := byName[strings.ToLower(strings.TrimSpace(name))]; ok {
				c.ExamRelevant = true
				c.ExamTopics = appendUnique(c.ExamTopics, mapping.Requirement)
			}
		}
	}
	return result, nil
}

// AnalyzeAll runs the full analysis pass: concepts per course document,
// requirements per directive, then the mapping call. Per-document failures
// are reported and skipped; the pass only fails when nothing was extracted.
func (a *Analyzer) AnalyzeAll(ctx context.Context, docs []scanner.Document) ([]Concept, []ExamRequirement, MappingResult, error) {
	var concepts []Concept
	var requirements []ExamRequirement
	var failures int
	for _, doc := range docs {
		switch doc.Category {
		case scanner.CategoryCourse:
			extracted, err := a.AnalyzeCourseDocument(ctx, doc)
			if err != nil {
				a.logger.Warnf("%v", err)
				failures++
				continue
			}
			concepts = append(concepts, extracted...)
		case scanner.CategoryDirective:
			extracted, err := a.AnalyzeDirectiveDocument(ctx, doc)
			if err != nil {
				a.logger.Warnf("%v", err)
				failures++
				continue
			}
			requirements = append(requirements, extracted...)
		}
	}
	if len(concepts) == 0 {
		return nil, nil, MappingResult{}, fmt.Errorf("analyzer: no concepts extracted (%d of %d documents failed)", failures, len(docs))
	}
	mapping, err := a.MapConceptsToRequirements(ctx, concepts, requirements)
	if err != nil {
		return nil, nil, MappingResult{}, err
	}
	return concepts, requirements, mapping, nil
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func appendUnique(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
