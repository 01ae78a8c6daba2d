// Package tui is the interactive plan browser. It follows the bubbletea
// model/update/view loop: two lists (upcoming sessions and concepts), tab to
// switch between them, enter to mark a session done.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gabvrl/revisor/internal/analyzer"
	"github.com/gabvrl/revisor/internal/exports"
	"github.com/gabvrl/revisor/internal/planner"
	"github.com/gabvrl/revisor/internal/progress"
)

type viewState int

const (
	viewSessions viewState = iota
	viewConcepts
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)

	priorityStyles = map[analyzer.Priority]lipgloss.Style{
		analyzer.PriorityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		analyzer.PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		analyzer.PriorityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		analyzer.PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

// Paths tells the app where the exported artifacts and progress state live.
type Paths struct {
	PlanJSON   string
	ConceptMap string
	Progress   string
}

type sessionItem struct {
	session   planner.Session
	completed bool
}

func (i sessionItem) Title() string {
	label := i.session.Objective
	if i.session.Concept != "" {
		label = fmt.Sprintf("%s %s", i.session.Kind, i.session.Concept)
	}
	if badge := priorityBadge(i.session.Priority); badge != "" {
		label += " " + badge
	}
	if i.completed {
		return doneStyle.Render(label)
	}
	return label
}

func (i sessionItem) Description() string {
	return fmt.Sprintf("%s · %d min", i.session.Date, i.session.DurationMinutes)
}

func (i sessionItem) FilterValue() string { return i.session.Concept + " " + i.session.Date }

type conceptItem struct {
	concept analyzer.Concept
}

func (i conceptItem) Title() string {
	label := i.concept.Name
	if badge := priorityBadge(i.concept.Priority); badge != "" {
		label += " " + badge
	}
	if i.concept.ExamRelevant {
		label += " *"
	}
	return label
}

func (i conceptItem) Description() string {
	if i.concept.Description == "" {
		return i.concept.Category
	}
	return i.concept.Description
}

func (i conceptItem) FilterValue() string { return i.concept.Name }

func priorityBadge(p analyzer.Priority) string {
	if p == "" {
		return ""
	}
	style, ok := priorityStyles[p.Normalize()]
	if !ok {
		return string(p)
	}
	return style.Render("[" + string(p) + "]")
}

// App is the bubbletea model for the plan browser.
type App struct {
	sessions list.Model
	concepts list.Model
	tracker  *progress.Tracker
	plan     *planner.Plan
	state    viewState
	status   string
	err      error
}

// NewApp loads the exported plan, concept map and progress state.
func NewApp(paths Paths) (*App, error) {
	planDoc, err := exports.LoadPlanJSON(paths.PlanJSON)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	tracker, err := progress.Load(paths.Progress)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	tracker.Apply(planDoc.Plan)

	sessionItems := make([]list.Item, 0, len(planDoc.Plan.Sessions))
	for _, s := range planDoc.Plan.Sessions {
		sessionItems = append(sessionItems, sessionItem{session: s, completed: s.Completed})
	}
	sessions := list.New(sessionItems, list.NewDefaultDelegate(), 0, 0)
	sessions.Title = fmt.Sprintf("Sessions — exam on %s", planDoc.Plan.ExamDate)
	sessions.SetShowHelp(true)

	var conceptItems []list.Item
	if mapDoc, err := exports.LoadConceptMapJSON(paths.ConceptMap); err == nil {
		byName := make(map[string]analyzer.Concept, len(mapDoc.Concepts))
		for _, c := range mapDoc.Concepts {
			byName[c.Name] = c
		}
		// Present concepts in learning order.
		for _, name := range mapDoc.LearningOrder {
			if c, ok := byName[name]; ok {
				conceptItems = append(conceptItems, conceptItem{concept: c})
			}
		}
	}
	concepts := list.New(conceptItems, list.NewDefaultDelegate(), 0, 0)
	concepts.Title = "Concepts (learning order, * = exam relevant)"

	return &App{
		sessions: sessions,
		concepts: concepts,
		tracker:  tracker,
		plan:     planDoc.Plan,
	}, nil
}

// Run starts the bubbletea program.
func Run(app *App) error {
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.sessions.SetSize(msg.Width, msg.Height-2)
		a.concepts.SetSize(msg.Width, msg.Height-2)
		return a, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "tab":
			if a.state == viewSessions {
				a.state = viewConcepts
			} else {
				a.state = viewSessions
			}
			return a, nil
		case "enter", " ":
			if a.state == viewSessions {
				a.completeSelected()
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case viewSessions:
		a.sessions, cmd = a.sessions.Update(msg)
	case viewConcepts:
		a.concepts, cmd = a.concepts.Update(msg)
	}
	return a, cmd
}

// completeSelected marks the highlighted session done and persists it.
func (a *App) completeSelected() {
	item, ok := a.sessions.SelectedItem().(sessionItem)
	if !ok {
		return
	}
	if item.completed {
		a.status = "already completed"
		return
	}
	if !a.tracker.CompleteSession(item.session.ID, item.session.DurationMinutes) {
		return
	}
	if item.session.Kind == planner.KindLearning && item.session.Concept != "" {
		a.tracker.MasterConcept(item.session.Concept)
	}
	if err := a.tracker.Save(); err != nil {
		a.err = err
		a.status = err.Error()
		return
	}
	item.completed = true
	a.sessions.SetItem(a.sessions.Index(), item)
	a.status = fmt.Sprintf("done: %s on %s", item.session.Objective, item.session.Date)
}

// View implements tea.Model.
func (a *App) View() string {
	var body string
	switch a.state {
	case viewSessions:
		body = a.sessions.View()
	case viewConcepts:
		body = a.concepts.View()
	}
	footer := statusStyle.Render("tab: switch view · enter: mark done · q: quit")
	if a.status != "" {
		footer = statusStyle.Render(a.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("revisor"), body, footer)
}
