package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gabvrl/revisor/internal/analyzer"
	"github.com/gabvrl/revisor/internal/conceptmap"
	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/planner"
	"github.com/gabvrl/revisor/internal/progress"
)

func writeFixtures(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	paths := Paths{
		PlanJSON:   filepath.Join(dir, "revision_plan.json"),
		ConceptMap: filepath.Join(dir, "concept_map.json"),
		Progress:   filepath.Join(dir, "progress.json"),
	}
	plan := &planner.Plan{
		StartDate: "2026-09-01",
		ExamDate:  "2026-11-30",
		Sessions: []planner.Session{
			{ID: "s1", Date: "2026-09-01", Kind: planner.KindLearning, Concept: "IP Addressing", DurationMinutes: 120, Priority: analyzer.PriorityCritical, Objective: "Learn IP Addressing"},
			{ID: "s2", Date: "2026-09-08", Kind: planner.KindReview, Concept: "IP Addressing", DurationMinutes: 20, Priority: analyzer.PriorityCritical, Objective: "Review IP Addressing"},
		},
		TotalMinutes: 140,
	}
	created := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	if err := exports.WritePlanJSON(paths.PlanJSON, plan, exports.NewMetadata("revision_plan", created)); err != nil {
		t.Fatalf("WritePlanJSON: %v", err)
	}
	concepts := []analyzer.Concept{
		{ID: "c1", Name: "IP Addressing", Description: "Structure of IPv4 addresses.", Priority: analyzer.PriorityCritical, ExamRelevant: true},
	}
	graph := conceptmap.Build(concepts)
	if err := exports.WriteConceptMapJSON(paths.ConceptMap, concepts, graph, conceptmap.CoverageReport{}, exports.NewMetadata("concept_map", created)); err != nil {
		t.Fatalf("WriteConceptMapJSON: %v", err)
	}
	return paths
}

func TestNewAppLoadsPlanAndConcepts(t *testing.T) {
	app, err := NewApp(writeFixtures(t))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if len(app.sessions.Items()) != 2 {
		t.Fatalf("sessions = %d, want 2", len(app.sessions.Items()))
	}
	if len(app.concepts.Items()) != 1 {
		t.Fatalf("concepts = %d, want 1", len(app.concepts.Items()))
	}
}

func TestNewAppFailsWithoutPlan(t *testing.T) {
	paths := writeFixtures(t)
	paths.PlanJSON = filepath.Join(t.TempDir(), "missing.json")
	if _, err := NewApp(paths); err == nil {
		t.Fatal("expected error when the plan export is missing")
	}
}

func TestEnterMarksSessionDone(t *testing.T) {
	paths := writeFixtures(t)
	app, err := NewApp(paths)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	tracker, err := progress.Load(paths.Progress)
	if err != nil {
		t.Fatalf("Load progress: %v", err)
	}
	if !tracker.SessionCompleted("s1") {
		t.Fatal("first session should be completed after enter")
	}
	if !tracker.ConceptMastered("IP Addressing") {
		t.Fatal("completing a learning session should master its concept")
	}
	if app.status == "" {
		t.Error("expected a status line after completion")
	}
}

func TestTabSwitchesViews(t *testing.T) {
	app, err := NewApp(writeFixtures(t))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.state != viewSessions {
		t.Fatal("should start on the sessions view")
	}
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if app.state != viewConcepts {
		t.Fatal("tab should switch to the concepts view")
	}
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if app.state != viewSessions {
		t.Fatal("tab should switch back")
	}
}

func TestViewRendersConceptsInLearningOrder(t *testing.T) {
	app, err := NewApp(writeFixtures(t))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	view := app.View()
	if !strings.Contains(view, "IP Addressing") {
		t.Fatalf("concept view missing concept name:\n%s", view)
	}
}
