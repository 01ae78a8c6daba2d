package analyzer

import (
	"fmt"
	"strings"
)

// maxPromptContent bounds how much document text is pasted into a prompt so
// a single oversized PDF cannot blow the model context.
const maxPromptContent = 15000

func truncate(content string) string {
	if len(content) <= maxPromptContent {
		return content
	}
	return content[:maxPromptContent]
}

func coursePrompt(filename, module, content string) string {
	if module == "" {
		module = "unspecified"
	}
	return fmt.Sprintf(`You are an expert tutor preparing a student for a professional certification exam.

Analyze this course document and extract the key concepts the student must master.

DOCUMENT: %s
MODULE: %s

CONTENT:
%s

INSTRUCTIONS:
1. Identify the essential technical concepts.
2. For each concept determine:
   - its importance (critical/high/medium/low)
   - the prerequisites needed to understand it
   - related concepts

Answer in JSON with this structure:
{
  "concepts": [
    {
      "name": "Concept name",
      "description": "Clear, concise description",
      "category": "Technical category",
      "importance": "critical|high|medium|low",
      "prerequisites": ["Prerequisite concept 1"],
      "related_concepts": ["Related concept 1"]
    }
  ]
}

Focus on the concepts that genuinely matter for the exam.`, filename, module, truncate(content))
}

func directivePrompt(filename, content string) string {
	return fmt.Sprintf(`You are an expert tutor preparing a student for a professional certification exam.

Analyze these exam directives and extract the key requirements.

DOCUMENT: %s

CONTENT:
%s

INSTRUCTIONS:
1. Identify each assessed competency or topic.
2. For each requirement determine:
   - the main topic
   - what is expected of the candidate
   - the required competency level

Answer in JSON with this structure:
{
  "requirements": [
    {
      "topic": "Requirement topic",
      "description": "Detailed description of what is expected",
      "competency_level": "What the candidate must be able to do"
    }
  ]
}

Be precise and exhaustive.`, filename, truncate(content))
}

func mappingPrompt(concepts []Concept, requirements []ExamRequirement) string {
	var conceptLines, requirementLines []string
	for _, c := range concepts {
		conceptLines = append(conceptLines, fmt.Sprintf("- %s: %s", c.Name, c.Description))
	}
	for _, r := range requirements {
		requirementLines = append(requirementLines, fmt.Sprintf("- %s: %s", r.Topic, r.Description))
	}
	return fmt.Sprintf(`Match course concepts to exam requirements.

COURSE CONCEPTS:
%s

EXAM REQUIREMENTS:
%s

For each exam requirement, identify which course concepts are needed.
Also identify MISSING knowledge (requirements the courses do not cover).

Answer in JSON:
{
  "mappings": [
    {
      "requirement": "Requirement name",
      "required_concepts": ["Concept 1", "Concept 2"],
      "coverage": "complete|partial|missing",
      "notes": "Optional observations"
    }
  ],
  "gaps": [
    {
      "requirement": "Uncovered requirement",
      "missing_knowledge": "What the courses lack"
    }
  ]
}`, strings.Join(conceptLines, "\n"), strings.Join(requirementLines, "\n"))
}
