// Package quiz builds multiple-choice quizzes and timed mock exams from the
// analyzed concepts, one AI-generated question per selected concept with a
// deterministic fallback when the model call fails. Results are graded per
// module and recorded in a score history under .revisor/state/.
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gabvrl/revisor/internal/analyzer"
)

// Kind discriminates a short quiz from a full mock exam.
type Kind string

const (
	KindQuiz     Kind = "quiz"
	KindMockExam Kind = "mock_exam"
)

const (
	defaultQuestions = 5
	optionCount      = 4

	// Mock exams mirror real conditions: a fixed question count answered
	// against a global timer.
	mockExamQuestions = 42
	mockExamMinutes   = 120
)

// Question is one multiple-choice item. CorrectIndex points into Options.
type Question struct {
	Number       int      `json:"number"`
	Concept      string   `json:"concept,omitempty"`
	Module       string   `json:"module,omitempty"`
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_answer"`
	Explanation  string   `json:"explanation,omitempty"`
	Fallback     bool     `json:"fallback,omitempty"`
}

// Quiz is a generated question set. DurationMinutes is zero for short
// quizzes and carries the timer for mock exams.
type Quiz struct {
	ID              string     `json:"id"`
	Kind            Kind       `json:"type"`
	CreatedAt       time.Time  `json:"created_at"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	Questions       []Question `json:"questions"`
}

// Logger matches logging.Logger.
type Logger interface {
	Printf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Generator turns concepts into questions through a content generator.
type Generator struct {
	generator analyzer.ContentGenerator
	logger    Logger
	newID     func() string
	now       func() time.Time
	rng       *rand.Rand
}

// Option adjusts a Generator at construction time.
type Option func(*Generator)

// WithIDSource overrides quiz ID generation, used in tests.
func WithIDSource(f func() string) Option {
	return func(g *Generator) {
		if f != nil {
			g.newID = f
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(f func() time.Time) Option {
	return func(g *Generator) {
		if f != nil {
			g.now = f
		}
	}
}

// WithRand overrides the sampling source, used in tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// ErrNoConcepts is returned when the concept pool for a quiz is empty.
var ErrNoConcepts = errors.New("quiz: no concepts to draw questions from")

// New builds a Generator on top of a content generator.
func New(generator analyzer.ContentGenerator, logger Logger, opts ...Option) *Generator {
	g := &Generator{
		generator: generator,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if g.logger == nil {
		g.logger = nopLogger{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Generate builds a short quiz of count questions, optionally restricted to
// one module. Concepts are sampled without replacement; a failed model call
// degrades to a fallback question instead of aborting the quiz.
func (g *Generator) Generate(ctx context.Context, concepts []analyzer.Concept, module string, count int) (*Quiz, error) {
	pool := filterByModule(concepts, module)
	if len(pool) == 0 {
		if module != "" {
			return nil, fmt.Errorf("%w for module %q", ErrNoConcepts, module)
		}
		return nil, ErrNoConcepts
	}
	if count <= 0 {
		count = defaultQuestions
	}
	if count > len(pool) {
		count = len(pool)
	}

	quiz := &Quiz{
		ID:        g.newID(),
		Kind:      KindQuiz,
		CreatedAt: g.now(),
	}
	for i, concept := range g.sample(pool, count) {
		quiz.Questions = append(quiz.Questions, g.question(ctx, concept, i+1))
	}
	g.logger.Printf("quiz: generated %d questions (module %q)", len(quiz.Questions), module)
	return quiz, nil
}

// MockExam builds a timed exam that spreads questions over every module in
// the concept set, proportional to each module's share of the material.
// Within a module, higher-priority concepts are drawn more often. Questions
// are shuffled so modules do not appear in blocks.
func (g *Generator) MockExam(ctx context.Context, concepts []analyzer.Concept, total int) (*Quiz, error) {
	if len(concepts) == 0 {
		return nil, ErrNoConcepts
	}
	if total <= 0 {
		total = mockExamQuestions
	}

	byModule := map[string][]analyzer.Concept{}
	for _, c := range concepts {
		byModule[moduleKey(c.SourceModule)] = append(byModule[moduleKey(c.SourceModule)], c)
	}
	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	quiz := &Quiz{
		ID:              g.newID(),
		Kind:            KindMockExam,
		CreatedAt:       g.now(),
		DurationMinutes: mockExamMinutes,
	}
	quotas := allocate(modules, byModule, total)
	for _, module := range modules {
		pool := byModule[module]
		for i := 0; i < quotas[module]; i++ {
			concept := g.weightedPick(pool)
			quiz.Questions = append(quiz.Questions, g.question(ctx, concept, 0))
		}
	}

	g.rng.Shuffle(len(quiz.Questions), func(i, j int) {
		quiz.Questions[i], quiz.Questions[j] = quiz.Questions[j], quiz.Questions[i]
	})
	for i := range quiz.Questions {
		quiz.Questions[i].Number = i + 1
	}
	g.logger.Printf("quiz: generated mock exam with %d questions over %d modules", len(quiz.Questions), len(modules))
	return quiz, nil
}

// allocate splits total across modules proportionally to their concept
// counts, at least one question per module, remainders going to the largest
// modules first.
func allocate(modules []string, byModule map[string][]analyzer.Concept, total int) map[string]int {
	conceptCount := 0
	for _, pool := range byModule {
		conceptCount += len(pool)
	}
	quotas := make(map[string]int, len(modules))
	assigned := 0
	for _, m := range modules {
		q := total * len(byModule[m]) / conceptCount
		if q < 1 {
			q = 1
		}
		quotas[m] = q
		assigned += q
	}
	bySize := append([]string(nil), modules...)
	sort.SliceStable(bySize, func(i, j int) bool {
		return len(byModule[bySize[i]]) > len(byModule[bySize[j]])
	})
	for i := 0; assigned < total; i = (i + 1) % len(bySize) {
		quotas[bySize[i]]++
		assigned++
	}
	for i := 0; assigned > total && i < len(bySize); {
		m := bySize[len(bySize)-1-i]
		if quotas[m] > 1 {
			quotas[m]--
			assigned--
			continue
		}
		i++
	}
	return quotas
}

type questionPayload struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// question generates one item for a concept, falling back to a canned
// question when the model call fails or answers with an unusable shape.
func (g *Generator) question(ctx context.Context, concept analyzer.Concept, number int) Question {
	raw, err := g.generator.GenerateJSON(ctx, questionPrompt(concept))
	if err != nil {
		g.logger.Warnf("quiz: question for %q failed, using fallback: %v", concept.Name, err)
		return fallbackQuestion(concept, number)
	}
	var payload questionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.logger.Warnf("quiz: question for %q returned invalid JSON, using fallback: %v", concept.Name, err)
		return fallbackQuestion(concept, number)
	}
	if strings.TrimSpace(payload.Question) == "" ||
		len(payload.Options) != optionCount ||
		payload.CorrectAnswer < 0 || payload.CorrectAnswer >= optionCount {
		g.logger.Warnf("quiz: question for %q has an unusable shape, using fallback", concept.Name)
		return fallbackQuestion(concept, number)
	}
	return Question{
		Number:       number,
		Concept:      concept.Name,
		Module:       concept.SourceModule,
		Text:         strings.TrimSpace(payload.Question),
		Options:      payload.Options,
		CorrectIndex: payload.CorrectAnswer,
		Explanation:  strings.TrimSpace(payload.Explanation),
	}
}

// fallbackQuestion keeps a quiz usable without the AI: the concept's own
// description is the correct option.
func fallbackQuestion(concept analyzer.Concept, number int) Question {
	correct := strings.TrimSpace(concept.Description)
	if correct == "" {
		correct = fmt.Sprintf("A core topic of the %s material", concept.Category)
	}
	return Question{
		Number:       number,
		Concept:      concept.Name,
		Module:       concept.SourceModule,
		Text:         fmt.Sprintf("Which statement best describes %s?", concept.Name),
		Options:      append([]string{correct}, fallbackDistractors...),
		CorrectIndex: 0,
		Explanation:  fmt.Sprintf("%s: %s", concept.Name, correct),
		Fallback:     true,
	}
}

var fallbackDistractors = []string{
	"A legacy practice that current standards no longer permit",
	"An optional topic that is never assessed in the exam",
	"A vendor-specific detail outside the certification scope",
}

func (g *Generator) sample(pool []analyzer.Concept, n int) []analyzer.Concept {
	picked := make([]analyzer.Concept, 0, n)
	for _, i := range g.rng.Perm(len(pool))[:n] {
		picked = append(picked, pool[i])
	}
	return picked
}

// weightedPick draws one concept, priority tiers weighing 4/3/2/1.
func (g *Generator) weightedPick(pool []analyzer.Concept) analyzer.Concept {
	total := 0
	for _, c := range pool {
		total += priorityWeight(c.Priority)
	}
	r := g.rng.Intn(total)
	for _, c := range pool {
		r -= priorityWeight(c.Priority)
		if r < 0 {
			return c
		}
	}
	return pool[len(pool)-1]
}

func priorityWeight(p analyzer.Priority) int {
	switch p.Normalize() {
	case analyzer.PriorityCritical:
		return 4
	case analyzer.PriorityHigh:
		return 3
	case analyzer.PriorityLow:
		return 1
	default:
		return 2
	}
}

func filterByModule(concepts []analyzer.Concept, module string) []analyzer.Concept {
	if strings.TrimSpace(module) == "" {
		return concepts
	}
	want := moduleKey(module)
	var out []analyzer.Concept
	for _, c := range concepts {
		if moduleKey(c.SourceModule) == want {
			out = append(out, c)
		}
	}
	return out
}

func moduleKey(module string) string {
	key := strings.ToUpper(strings.TrimSpace(module))
	if key == "" {
		return "GENERAL"
	}
	return key
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
