package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gabvrl/revisor/internal/analyzer"
	"github.com/gabvrl/revisor/internal/conceptmap"
	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/planner"
	"github.com/gabvrl/revisor/internal/progress"
)

func fixedClock() time.Time {
	return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
}

func writeFixtures(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	paths := Paths{
		PlanJSON:   filepath.Join(dir, "revision_plan.json"),
		ConceptMap: filepath.Join(dir, "concept_map.json"),
		Progress:   filepath.Join(dir, "progress.json"),
	}
	plan := &planner.Plan{
		StartDate:    "2026-09-01",
		ExamDate:     "2026-11-30",
		TotalMinutes: 140,
		Sessions: []planner.Session{
			{ID: "s1", Date: "2026-09-01", Kind: planner.KindLearning, Concept: "IP Addressing", DurationMinutes: 120, Priority: analyzer.PriorityCritical, Objective: "Learn IP Addressing"},
			{ID: "s2", Date: "2026-09-08", Kind: planner.KindReview, Concept: "IP Addressing", DurationMinutes: 20, Priority: analyzer.PriorityCritical, Objective: "Review IP Addressing"},
		},
	}
	meta := exports.NewMetadata("revision_plan", fixedClock())
	if err := exports.WritePlanJSON(paths.PlanJSON, plan, meta); err != nil {
		t.Fatalf("WritePlanJSON: %v", err)
	}
	concepts := []analyzer.Concept{
		{ID: "c1", Name: "IP Addressing", Category: "Networking", Priority: analyzer.PriorityCritical},
	}
	graph := conceptmap.Build(concepts)
	coverage := conceptmap.Coverage(analyzer.MappingResult{})
	if err := exports.WriteConceptMapJSON(paths.ConceptMap, concepts, graph, coverage, exports.NewMetadata("concept_map", fixedClock())); err != nil {
		t.Fatalf("WriteConceptMapJSON: %v", err)
	}
	return paths
}

func testServer(t *testing.T, paths Paths) *httptest.Server {
	t.Helper()
	srv := NewServer(NewSettings("", 0), paths, WithClock(fixedClock))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := testServer(t, writeFixtures(t))
	var body map[string]any
	if status := getJSON(t, ts.URL+"/health", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" || body["stale"] != false {
		t.Fatalf("body = %v", body)
	}
}

func TestPlanEndpoint(t *testing.T) {
	ts := testServer(t, writeFixtures(t))
	var body struct {
		Plan  planner.Plan `json:"plan"`
		Stale bool         `json:"stale"`
	}
	if status := getJSON(t, ts.URL+"/api/plan", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(body.Plan.Sessions) != 2 || body.Plan.ExamDate != "2026-11-30" {
		t.Fatalf("plan = %+v", body.Plan)
	}
}

func TestPlanEndpointWithoutPlan(t *testing.T) {
	paths := writeFixtures(t)
	paths.PlanJSON = filepath.Join(t.TempDir(), "missing.json")
	ts := testServer(t, paths)
	var body map[string]string
	if status := getJSON(t, ts.URL+"/api/plan", &body); status != http.StatusNotFound {
		t.Fatalf("status = %d", status)
	}
	if body["error"] == "" {
		t.Fatal("expected a JSON error payload")
	}
}

func TestConceptsEndpoint(t *testing.T) {
	ts := testServer(t, writeFixtures(t))
	var body struct {
		Concepts      []analyzer.Concept `json:"concepts"`
		LearningOrder []string           `json:"learning_order"`
	}
	if status := getJSON(t, ts.URL+"/api/concepts", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(body.Concepts) != 1 || len(body.LearningOrder) != 1 {
		t.Fatalf("body = %+v", body)
	}
}

func TestSessionCompleteUpdatesProgress(t *testing.T) {
	paths := writeFixtures(t)
	ts := testServer(t, paths)

	resp, err := http.Post(ts.URL+"/api/sessions/s1/complete", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	tracker, err := progress.Load(paths.Progress)
	if err != nil {
		t.Fatalf("Load progress: %v", err)
	}
	if !tracker.SessionCompleted("s1") {
		t.Fatal("session s1 should be completed")
	}
	if !tracker.ConceptMastered("IP Addressing") {
		t.Fatal("completing a learning session should master its concept")
	}

	// The plan endpoint now reflects the completion.
	var body struct {
		Plan planner.Plan `json:"plan"`
	}
	getJSON(t, ts.URL+"/api/plan", &body)
	if !body.Plan.Sessions[0].Completed {
		t.Fatal("plan endpoint should overlay completion state")
	}
}

func TestSessionCompleteUnknownID(t *testing.T) {
	ts := testServer(t, writeFixtures(t))
	resp, err := http.Post(ts.URL+"/api/sessions/nope/complete", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestSessionCompleteRejectsGet(t *testing.T) {
	ts := testServer(t, writeFixtures(t))
	resp, err := http.Get(ts.URL + "/api/sessions/s1/complete")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestProgressEndpoint(t *testing.T) {
	paths := writeFixtures(t)
	ts := testServer(t, paths)

	if _, err := http.Post(ts.URL+"/api/sessions/s1/complete", "application/json", nil); err != nil {
		t.Fatalf("POST: %v", err)
	}
	var sum progress.Summary
	if status := getJSON(t, ts.URL+"/api/progress", &sum); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if sum.TotalSessions != 2 || sum.CompletedSessions != 1 || sum.CompletionRate != 50 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestOverviewPage(t *testing.T) {
	ts := testServer(t, writeFixtures(t))
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	for _, want := range []string{"exam on 2026-11-30", "IP Addressing", "critical"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("overview missing %q", want)
		}
	}
}

func TestMarkStaleShowsInHealth(t *testing.T) {
	paths := writeFixtures(t)
	srv := NewServer(NewSettings("", 0), paths, WithClock(fixedClock))
	srv.MarkStale()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var body map[string]any
	getJSON(t, ts.URL+"/health", &body)
	if body["stale"] != true {
		t.Fatalf("stale = %v", body["stale"])
	}
}
