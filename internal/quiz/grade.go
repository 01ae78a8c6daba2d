package quiz

import "sort"

// passPercent is the global and per-module pass threshold.
const passPercent = 50.0

// strongPercent marks a module as a strength.
const strongPercent = 70.0

// AnswerRecord is the outcome of one question. Given is -1 when the
// question was left unanswered.
type AnswerRecord struct {
	Number    int    `json:"number"`
	Concept   string `json:"concept,omitempty"`
	Module    string `json:"module,omitempty"`
	Given     int    `json:"given"`
	Correct   int    `json:"correct"`
	IsCorrect bool   `json:"is_correct"`
}

// ModuleScore aggregates results for one module.
type ModuleScore struct {
	Module  string  `json:"module"`
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Result is a graded quiz with the per-module breakdown used to spot weak
// spots before the real exam.
type Result struct {
	QuizID        string         `json:"quiz_id"`
	Kind          Kind           `json:"type"`
	Score         int            `json:"score"`
	Total         int            `json:"total"`
	Percent       float64        `json:"percent"`
	Passed        bool           `json:"passed"`
	Modules       []ModuleScore  `json:"modules"`
	WeakModules   []string       `json:"weak_modules,omitempty"`
	StrongModules []string       `json:"strong_modules,omitempty"`
	Answers       []AnswerRecord `json:"answers"`
}

// Grade scores the given answers, keyed by question number, against the
// quiz. Missing or out-of-range answers count as wrong.
func Grade(q *Quiz, answers map[int]int) Result {
	result := Result{
		QuizID: q.ID,
		Kind:   q.Kind,
		Total:  len(q.Questions),
	}
	perModule := map[string]*ModuleScore{}
	for _, question := range q.Questions {
		given, ok := answers[question.Number]
		if !ok {
			given = -1
		}
		correct := given == question.CorrectIndex
		if correct {
			result.Score++
		}
		result.Answers = append(result.Answers, AnswerRecord{
			Number:    question.Number,
			Concept:   question.Concept,
			Module:    question.Module,
			Given:     given,
			Correct:   question.CorrectIndex,
			IsCorrect: correct,
		})

		key := moduleKey(question.Module)
		ms, ok := perModule[key]
		if !ok {
			ms = &ModuleScore{Module: key}
			perModule[key] = ms
		}
		ms.Total++
		if correct {
			ms.Correct++
		}
	}

	for _, ms := range perModule {
		ms.Percent = 100 * float64(ms.Correct) / float64(ms.Total)
		result.Modules = append(result.Modules, *ms)
	}
	sort.Slice(result.Modules, func(i, j int) bool {
		return result.Modules[i].Module < result.Modules[j].Module
	})
	for _, ms := range result.Modules {
		if ms.Percent < passPercent {
			result.WeakModules = append(result.WeakModules, ms.Module)
		} else if ms.Percent >= strongPercent {
			result.StrongModules = append(result.StrongModules, ms.Module)
		}
	}
	sort.SliceStable(result.WeakModules, func(i, j int) bool {
		return modulePercent(result.Modules, result.WeakModules[i]) < modulePercent(result.Modules, result.WeakModules[j])
	})
	sort.SliceStable(result.StrongModules, func(i, j int) bool {
		return modulePercent(result.Modules, result.StrongModules[i]) > modulePercent(result.Modules, result.StrongModules[j])
	})

	if result.Total > 0 {
		result.Percent = 100 * float64(result.Score) / float64(result.Total)
	}
	result.Passed = result.Percent >= passPercent
	return result
}

func modulePercent(modules []ModuleScore, module string) float64 {
	for _, ms := range modules {
		if ms.Module == module {
			return ms.Percent
		}
	}
	return 0
}
