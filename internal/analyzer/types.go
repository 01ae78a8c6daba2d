package analyzer

// Priority is the tier assigned to a concept by the analysis pass.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities, lower is more urgent. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Weight scales study time by priority tier.
func (p Priority) Weight() float64 {
	switch p {
	case PriorityCritical:
		return 2.0
	case PriorityHigh:
		return 1.5
	case PriorityLow:
		return 0.5
	default:
		return 1.0
	}
}

// Normalize maps unknown or empty tiers to medium.
func (p Priority) Normalize() Priority {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityMedium
	}
}

// Concept is a unit of knowledge extracted from a course document. Concepts
// are produced once by the analysis pass and read-only afterwards.
type Concept struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Priority        Priority `json:"importance"`
	SourceDocument  string   `json:"source_document"`
	SourceModule    string   `json:"module,omitempty"`
	Prerequisites   []string `json:"prerequisites,omitempty"`
	RelatedConcepts []string `json:"related_concepts,omitempty"`
	ExamRelevant    bool     `json:"exam_relevant"`
	ExamTopics      []string `json:"exam_topics,omitempty"`
}

// ExamRequirement is one competency extracted from a directive document.
type ExamRequirement struct {
	ID              string   `json:"id"`
	Topic           string   `json:"topic"`
	Description     string   `json:"description"`
	CompetencyLevel string   `json:"competency_level,omitempty"`
	SourceDocument  string   `json:"source_document"`
	RelatedConcepts []string `json:"related_concepts,omitempty"`
}

// CoverageState describes how well the courses cover one exam requirement.
type CoverageState string

const (
	CoverageComplete CoverageState = "complete"
	CoveragePartial  CoverageState = "partial"
	CoverageMissing  CoverageState = "missing"
)

// RequirementMapping links an exam requirement to the concepts it needs.
type RequirementMapping struct {
	Requirement      string        `json:"requirement"`
	RequiredConcepts []string      `json:"required_concepts"`
	Coverage         CoverageState `json:"coverage"`
	Notes            string        `json:"notes,omitempty"`
}

// KnowledgeGap records a requirement the course corpus does not cover.
type KnowledgeGap struct {
	Requirement      string `json:"requirement"`
	MissingKnowledge string `json:"missing_knowledge"`
}

// MappingResult is the outcome of the concept-to-requirement matching call.
type MappingResult struct {
	Mappings []RequirementMapping `json:"mappings"`
	Gaps     []KnowledgeGap       `json:"gaps"`
}
