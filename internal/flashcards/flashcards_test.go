package flashcards

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/gabvrl/revisor/internal/analyzer"
)

func testDeck(t *testing.T, nowStr string) *Deck {
	t.Helper()
	now, err := time.Parse("2006-01-02", nowStr)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	d, err := Load(filepath.Join(t.TempDir(), "flashcards.json"),
		WithClock(func() time.Time { return now }),
		WithIDSource(func() string { n++; return fmt.Sprintf("card-%d", n) }),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return d
}

func TestGenerateSkipsDuplicatesAndBlankDescriptions(t *testing.T) {
	d := testDeck(t, "2026-09-01")
	concepts := []analyzer.Concept{
		{Name: "OSPF", Description: "Link-state routing protocol."},
		{Name: "ospf", Description: "Duplicate under case folding."},
		{Name: "Mystery", Description: "   "},
	}
	if added := d.Generate(concepts); added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if added := d.Generate(concepts); added != 0 {
		t.Fatalf("regenerate added %d, want 0", added)
	}
	card, ok := d.Card("card-1")
	if !ok {
		t.Fatal("card-1 missing")
	}
	if card.Easiness != 2.5 || card.Question != "Explain: OSPF" {
		t.Errorf("card = %+v", card)
	}
}

func TestReviewFollowsSM2Intervals(t *testing.T) {
	d := testDeck(t, "2026-09-01")
	d.Generate([]analyzer.Concept{{Name: "VLAN", Description: "Layer-2 segmentation."}})

	// Three successful reviews: 1 day, 6 days, then interval times easiness.
	card, err := d.Review("card-1", 4)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if card.IntervalDays != 1 || card.Repetitions != 1 {
		t.Fatalf("after rep 1: %+v", card)
	}
	card, _ = d.Review("card-1", 4)
	if card.IntervalDays != 6 || card.Repetitions != 2 {
		t.Fatalf("after rep 2: %+v", card)
	}
	easinessBefore := card.Easiness
	card, _ = d.Review("card-1", 4)
	want := int(math.Round(6 * easinessBefore))
	if card.IntervalDays != want {
		t.Fatalf("after rep 3: interval = %d, want %d", card.IntervalDays, want)
	}
	if card.Due != time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, want) {
		t.Errorf("due = %v", card.Due)
	}
}

func TestReviewFailureResetsRepetitions(t *testing.T) {
	d := testDeck(t, "2026-09-01")
	d.Generate([]analyzer.Concept{{Name: "STP", Description: "Spanning tree."}})

	d.Review("card-1", 5)
	d.Review("card-1", 5)
	card, err := d.Review("card-1", 2)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if card.Repetitions != 0 || card.IntervalDays != 1 {
		t.Fatalf("failed review should reset: %+v", card)
	}
}

func TestEasinessNeverDropsBelowFloor(t *testing.T) {
	d := testDeck(t, "2026-09-01")
	d.Generate([]analyzer.Concept{{Name: "NAT", Description: "Address translation."}})

	var card Card
	for i := 0; i < 20; i++ {
		card, _ = d.Review("card-1", 3)
	}
	if card.Easiness < 1.3 {
		t.Fatalf("easiness = %v, want >= 1.3", card.Easiness)
	}
}

func TestReviewValidation(t *testing.T) {
	d := testDeck(t, "2026-09-01")
	if _, err := d.Review("nope", 4); !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("err = %v, want ErrUnknownCard", err)
	}
	d.Generate([]analyzer.Concept{{Name: "ACL", Description: "Packet filtering rules."}})
	if _, err := d.Review("card-1", 6); err == nil {
		t.Fatal("expected error for out-of-range quality")
	}
}

func TestDueSortingAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flashcards.json")
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	d, err := Load(path,
		WithClock(func() time.Time { return now }),
		WithIDSource(func() string { n++; return fmt.Sprintf("card-%d", n) }),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d.Generate([]analyzer.Concept{
		{Name: "BGP", Description: "Path-vector routing."},
		{Name: "DNS", Description: "Name resolution."},
	})
	// Push one card into the future.
	if _, err := d.Review("card-1", 5); err != nil {
		t.Fatalf("Review: %v", err)
	}
	due := d.Due()
	if len(due) != 1 || due[0].ID != "card-2" {
		t.Fatalf("due = %+v", due)
	}
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded %d cards, want 2", reloaded.Len())
	}
	card, ok := reloaded.Card("card-1")
	if !ok || card.Repetitions != 1 {
		t.Fatalf("card-1 after reload: %+v ok=%v", card, ok)
	}
}
