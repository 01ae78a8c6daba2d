package quiz

import (
	"fmt"
	"strings"

	"github.com/gabvrl/revisor/internal/analyzer"
)

func questionPrompt(concept analyzer.Concept) string {
	var context []string
	context = append(context, fmt.Sprintf("CONCEPT: %s", concept.Name))
	if concept.Description != "" {
		context = append(context, fmt.Sprintf("DESCRIPTION: %s", concept.Description))
	}
	if concept.Category != "" {
		context = append(context, fmt.Sprintf("CATEGORY: %s", concept.Category))
	}
	if concept.SourceModule != "" {
		context = append(context, fmt.Sprintf("MODULE: %s", concept.SourceModule))
	}
	if len(concept.Prerequisites) > 0 {
		context = append(context, fmt.Sprintf("PREREQUISITES: %s", strings.Join(concept.Prerequisites, ", ")))
	}
	if len(concept.RelatedConcepts) > 0 {
		context = append(context, fmt.Sprintf("RELATED: %s", strings.Join(concept.RelatedConcepts, ", ")))
	}
	if len(concept.ExamTopics) > 0 {
		context = append(context, fmt.Sprintf("EXAM TOPICS: %s", strings.Join(concept.ExamTopics, "; ")))
	}

	return fmt.Sprintf(`You are an examiner writing questions for a professional certification exam.

Write ONE exam-level multiple-choice question on the concept below.

%s

INSTRUCTIONS:
1. The question must be concrete and technical, at professional exam level.
2. Prefer a realistic work scenario over a definition lookup.
3. All four options must be plausible and of similar length.
4. Never ask a vague question like "What does concept X represent?".
5. The explanation must teach: state the rule or reasoning behind the answer.

Answer in JSON with this structure:
{
  "question": "Precise technical question in a professional context",
  "options": ["Option A", "Option B", "Option C", "Option D"],
  "correct_answer": 0,
  "explanation": "Detailed explanation of why the answer is correct"
}

correct_answer is the INDEX (0-3) of the right option.`, strings.Join(context, "\n"))
}
