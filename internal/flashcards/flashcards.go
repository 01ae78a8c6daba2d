// Package flashcards schedules spaced-repetition flashcards generated from
// analyzed concepts, using the SM-2 algorithm. The deck is a JSON file under
// .revisor/state/.
package flashcards

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gabvrl/revisor/internal/analyzer"
)

// Card is one question/answer pair with its SM-2 scheduling state.
type Card struct {
	ID           string    `json:"id"`
	Concept      string    `json:"concept"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	Easiness     float64   `json:"easiness"`
	Repetitions  int       `json:"repetitions"`
	IntervalDays int       `json:"interval_days"`
	Due          time.Time `json:"due"`
	LastReviewed time.Time `json:"last_reviewed,omitempty"`
}

const (
	initialEasiness = 2.5
	minEasiness     = 1.3
	minQuality      = 0
	maxQuality      = 5
)

// ErrUnknownCard is returned when a review names a card that is not in the deck.
var ErrUnknownCard = errors.New("flashcards: unknown card")

// Deck holds the cards and persists them to a JSON file.
type Deck struct {
	path  string
	cards []Card
	byID  map[string]int
	now   func() time.Time
	newID func() string
}

// Option adjusts a Deck at construction time.
type Option func(*Deck)

// WithClock overrides the clock, used in tests.
func WithClock(f func() time.Time) Option {
	return func(d *Deck) {
		if f != nil {
			d.now = f
		}
	}
}

// WithIDSource overrides card ID generation, used in tests.
func WithIDSource(f func() string) Option {
	return func(d *Deck) {
		if f != nil {
			d.newID = f
		}
	}
}

// Load reads the deck file, starting empty when it does not exist.
func Load(path string, opts ...Option) (*Deck, error) {
	d := &Deck{
		path:  path,
		byID:  map[string]int{},
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return d, nil
		}
		return nil, fmt.Errorf("flashcards: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &d.cards); err != nil {
		return nil, fmt.Errorf("flashcards: decode %s: %w", path, err)
	}
	for i, c := range d.cards {
		d.byID[c.ID] = i
	}
	return d, nil
}

// Save writes the deck back to disk.
func (d *Deck) Save() error {
	data, err := json.MarshalIndent(d.cards, "", "  ")
	if err != nil {
		return fmt.Errorf("flashcards: encode: %w", err)
	}
	if err := os.WriteFile(d.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("flashcards: write %s: %w", d.path, err)
	}
	return nil
}

// Len returns the deck size.
func (d *Deck) Len() int { return len(d.cards) }

// Cards returns a copy of the deck in stable order.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Card looks a card up by ID.
func (d *Deck) Card(id string) (Card, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Card{}, false
	}
	return d.cards[i], true
}

// Generate adds one card per concept that has a description, skipping
// concepts that already have a card. Returns the number of cards added.
func (d *Deck) Generate(concepts []analyzer.Concept) int {
	existing := map[string]bool{}
	for _, c := range d.cards {
		existing[conceptKey(c.Concept)] = true
	}
	added := 0
	for _, concept := range concepts {
		key := conceptKey(concept.Name)
		if key == "" || existing[key] || strings.TrimSpace(concept.Description) == "" {
			continue
		}
		existing[key] = true
		card := Card{
			ID:       d.newID(),
			Concept:  concept.Name,
			Question: fmt.Sprintf("Explain: %s", concept.Name),
			Answer:   concept.Description,
			Easiness: initialEasiness,
			Due:      d.now(),
		}
		d.byID[card.ID] = len(d.cards)
		d.cards = append(d.cards, card)
		added++
	}
	return added
}

// Due lists cards whose due date is not after now, earliest first.
func (d *Deck) Due() []Card {
	now := d.now()
	var due []Card
	for _, c := range d.cards {
		if !c.Due.After(now) {
			due = append(due, c)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].Due.Before(due[j].Due) })
	return due
}

// Review applies one SM-2 grading step to a card. Quality runs 0 (blackout)
// to 5 (perfect); below 3 the repetition count resets and the card comes back
// tomorrow. Easiness never drops under 1.3.
func (d *Deck) Review(id string, quality int) (Card, error) {
	i, ok := d.byID[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	if quality < minQuality || quality > maxQuality {
		return Card{}, fmt.Errorf("flashcards: quality %d out of range [%d, %d]", quality, minQuality, maxQuality)
	}

	card := d.cards[i]
	if quality < 3 {
		card.Repetitions = 0
		card.IntervalDays = 1
	} else {
		card.Repetitions++
		switch card.Repetitions {
		case 1:
			card.IntervalDays = 1
		case 2:
			card.IntervalDays = 6
		default:
			card.IntervalDays = int(math.Round(float64(card.IntervalDays) * card.Easiness))
		}
		q := float64(quality)
		card.Easiness += 0.1 - (5-q)*(0.08+(5-q)*0.02)
		if card.Easiness < minEasiness {
			card.Easiness = minEasiness
		}
	}
	now := d.now()
	card.LastReviewed = now
	card.Due = now.AddDate(0, 0, card.IntervalDays)
	d.cards[i] = card
	return card, nil
}

func conceptKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
