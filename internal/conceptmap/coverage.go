package conceptmap

import "github.com/gabvrl/revisor/internal/analyzer"

// CoverageReport summarizes how well the scanned material covers the exam
// requirements extracted from directive documents.
type CoverageReport struct {
	Total    int                           `json:"total_requirements"`
	Complete int                           `json:"complete"`
	Partial  int                           `json:"partial"`
	Missing  int                           `json:"missing"`
	Percent  float64                       `json:"coverage_percent"`
	Mappings []analyzer.RequirementMapping `json:"mappings"`
	Gaps     []analyzer.KnowledgeGap       `json:"gaps"`
	AtRisk   []string                      `json:"at_risk_requirements,omitempty"`
}

// Coverage builds the report from a requirement mapping. Requirements with
// no course coverage at all are listed as at risk.
func Coverage(result analyzer.MappingResult) CoverageReport {
	report := CoverageReport{
		Total:    len(result.Mappings),
		Mappings: result.Mappings,
		Gaps:     result.Gaps,
	}
	for _, m := range result.Mappings {
		switch m.Coverage {
		case analyzer.CoverageComplete:
			report.Complete++
		case analyzer.CoveragePartial:
			report.Partial++
		default:
			report.Missing++
			report.AtRisk = append(report.AtRisk, m.Requirement)
		}
	}
	if report.Total > 0 {
		covered := float64(report.Complete) + 0.5*float64(report.Partial)
		report.Percent = 100 * covered / float64(report.Total)
	}
	return report
}
