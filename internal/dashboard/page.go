package dashboard

import (
	"html/template"
	"net/http"

	"github.com/gabvrl/revisor/internal/planner"
	"github.com/gabvrl/revisor/internal/progress"
)

var overviewTemplate = template.Must(template.New("overview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>revisor</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 56rem; color: #1a1a2e; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { text-align: left; padding: .35rem .6rem; border-bottom: 1px solid #ddd; }
.badge { padding: .1rem .4rem; border-radius: .3rem; font-size: .8rem; color: #fff; }
.critical { background: #c0392b; } .high { background: #d68910; }
.medium { background: #2e86c1; } .low { background: #7f8c8d; }
.done { color: #7f8c8d; text-decoration: line-through; }
.stale { background: #fdf2d0; padding: .6rem; border-radius: .3rem; }
</style>
</head>
<body>
<h1>Revision plan — exam on {{.ExamDate}}</h1>
{{if .Stale}}<p class="stale">Course documents changed since the last analysis; rerun <code>revisor analyze</code>.</p>{{end}}
<p>{{.Summary.CompletedSessions}}/{{.Summary.TotalSessions}} sessions done
({{printf "%.0f" .Summary.CompletionRate}}%) · {{.Summary.ConceptsMastered}} concepts mastered
· {{.Summary.DaysToExam}} days to the exam</p>
<h2>Next sessions</h2>
<table>
<tr><th>Date</th><th>Type</th><th>Concept</th><th>Minutes</th></tr>
{{range .Upcoming}}<tr{{if .Completed}} class="done"{{end}}>
<td>{{.Date}}</td><td>{{.Kind}}</td>
<td>{{if .Concept}}{{.Concept}} {{if .Priority}}<span class="badge {{.Priority}}">{{.Priority}}</span>{{end}}{{else}}{{.Objective}}{{end}}</td>
<td>{{.DurationMinutes}}</td></tr>
{{end}}
</table>
</body>
</html>
`))

type overviewData struct {
	ExamDate string
	Stale    bool
	Summary  progress.Summary
	Upcoming []planner.Session
}

const upcomingLimit = 15

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	plan, err := s.loadPlan()
	if err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<h1>revisor</h1><p>No plan yet. Run <code>revisor plan</code> first.</p>"))
		return
	}
	tracker, err := progress.Load(s.paths.Progress)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	today := s.clock().Format(planner.DateLayout)
	var upcoming []planner.Session
	for _, session := range plan.Sessions {
		if session.Date >= today {
			upcoming = append(upcoming, session)
		}
		if len(upcoming) == upcomingLimit {
			break
		}
	}

	data := overviewData{
		ExamDate: plan.ExamDate,
		Stale:    s.stale.Load(),
		Summary:  tracker.Summarize(plan),
		Upcoming: upcoming,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := overviewTemplate.Execute(w, data); err != nil {
		s.logger.Printf("dashboard: render overview: %v", err)
	}
}
