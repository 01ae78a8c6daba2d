// internal/config/config.go
//
// This package handles configuration and the .revisor directory structure.
// Every study project that uses revisor gets a .revisor/ folder created in
// its root, holding config.yaml, logs, state and exports.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// RevisorDir is the name of the directory we create in each study project.
	RevisorDir = ".revisor"

	// DateLayout is the calendar-date format used throughout config files.
	DateLayout = "2006-01-02"
)

const defaultConfigYAML = `# revisor project configuration
version: 1

api:
  # Gemini API key. Leave empty and set GEMINI_API_KEY instead if you prefer.
  key: ""
  model: gemini-1.5-pro
  temperature: 0.2

paths:
  courses: courses
  directives: directives
  exports: .revisor/exports

user:
  exam_date: "2027-03-22"

planning:
  weekday_minutes: 30
  weekend_minutes: 240
  review_minutes: 20
  review_intervals: [7, 21, 45]
  # Dates already taken by in-person course days (no revision scheduled).
  course_dates: []

dashboard:
  host: 127.0.0.1
  port: 8470
`

// APIConfig holds the generative-AI call settings.
type APIConfig struct {
	Key         string  `mapstructure:"key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

// PathsConfig locates the document directories and the export target.
// Relative entries are resolved against the project directory.
type PathsConfig struct {
	Courses    string `mapstructure:"courses"`
	Directives string `mapstructure:"directives"`
	Exports    string `mapstructure:"exports"`
}

// UserConfig captures per-student settings.
type UserConfig struct {
	ExamDate string `mapstructure:"exam_date"`
}

// PlanningConfig controls the spaced-repetition planner.
type PlanningConfig struct {
	// WeekdayMinutes is the revision budget for Monday through Friday.
	WeekdayMinutes int `mapstructure:"weekday_minutes"`
	// WeekendMinutes is the revision budget for Saturday and Sunday.
	WeekendMinutes int `mapstructure:"weekend_minutes"`
	// ReviewMinutes is the fixed length of a spaced-repetition review pass.
	ReviewMinutes int `mapstructure:"review_minutes"`
	// ReviewIntervals lists the day offsets after first study at which a
	// concept comes back for review.
	ReviewIntervals []int `mapstructure:"review_intervals"`
	// CourseDates lists YYYY-MM-DD days that carry in-person courses and
	// therefore receive no revision sessions.
	CourseDates []string `mapstructure:"course_dates"`
}

// DashboardConfig controls the web dashboard listener.
type DashboardConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Config holds the runtime configuration for revisor.
type Config struct {
	// ProjectDir is the directory where the user ran `revisor` from.
	ProjectDir string `mapstructure:"-"`

	Version   int             `mapstructure:"version"`
	API       APIConfig       `mapstructure:"api"`
	Paths     PathsConfig     `mapstructure:"paths"`
	User      UserConfig      `mapstructure:"user"`
	Planning  PlanningConfig  `mapstructure:"planning"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`

	examDate time.Time
}

// InitProjectDir creates the .revisor directory structure in the given
// project directory and seeds a default config.yaml when none exists.
//
// Structure created:
// .revisor/
// ├── logs/      <- append-only activity log
// ├── state/     <- progress, flashcards, document index
// └── exports/   <- generated plan and concept map
func InitProjectDir(projectDir string) error {
	base := filepath.Join(projectDir, RevisorDir)
	dirs := []string{
		filepath.Join(base, "logs"),
		filepath.Join(base, "state"),
		filepath.Join(base, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureConfigFile(filepath.Join(base, "config.yaml"))
}

// Load reads .revisor/config.yaml, applies defaults and environment
// overrides, validates the result and returns the runtime configuration.
// A malformed file or an impossible exam date fails fast.
func Load(projectDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	path := filepath.Join(projectDir, RevisorDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}

	v.SetEnvPrefix("REVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.ProjectDir = projectDir

	// GEMINI_API_KEY is the conventional variable name for this key, so it
	// wins over the file value when set.
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		cfg.API.Key = key
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", 1)
	v.SetDefault("api.model", "gemini-1.5-pro")
	v.SetDefault("api.temperature", 0.2)
	v.SetDefault("paths.courses", "courses")
	v.SetDefault("paths.directives", "directives")
	v.SetDefault("paths.exports", filepath.Join(RevisorDir, "exports"))
	v.SetDefault("user.exam_date", "2027-03-22")
	v.SetDefault("planning.weekday_minutes", 30)
	v.SetDefault("planning.weekend_minutes", 240)
	v.SetDefault("planning.review_minutes", 20)
	v.SetDefault("planning.review_intervals", []int{7, 21, 45})
	v.SetDefault("dashboard.host", "127.0.0.1")
	v.SetDefault("dashboard.port", 8470)
}

func (c *Config) normalize() {
	if c.Version == 0 {
		c.Version = 1
	}
	c.API.Key = strings.TrimSpace(c.API.Key)
	c.API.Model = strings.TrimSpace(c.API.Model)
	c.User.ExamDate = strings.TrimSpace(c.User.ExamDate)
	c.Dashboard.Host = strings.TrimSpace(c.Dashboard.Host)
	if c.Dashboard.Host == "" {
		c.Dashboard.Host = "127.0.0.1"
	}
	if len(c.Planning.ReviewIntervals) == 0 {
		c.Planning.ReviewIntervals = []int{7, 21, 45}
	}
	if c.Planning.ReviewMinutes <= 0 {
		c.Planning.ReviewMinutes = 20
	}
}

func (c *Config) validate() error {
	if c.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if c.User.ExamDate == "" {
		return fmt.Errorf("user.exam_date is required")
	}
	examDate, err := time.Parse(DateLayout, c.User.ExamDate)
	if err != nil {
		return fmt.Errorf("user.exam_date %q is not a valid YYYY-MM-DD date", c.User.ExamDate)
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, examDate.Location())
	if examDate.Before(today) {
		return fmt.Errorf("user.exam_date %s is in the past", c.User.ExamDate)
	}
	c.examDate = examDate
	if c.Planning.WeekdayMinutes <= 0 {
		return fmt.Errorf("planning.weekday_minutes must be positive")
	}
	if c.Planning.WeekendMinutes <= 0 {
		return fmt.Errorf("planning.weekend_minutes must be positive")
	}
	last := 0
	for i, interval := range c.Planning.ReviewIntervals {
		if interval <= last {
			return fmt.Errorf("planning.review_intervals[%d] must be a strictly increasing positive day offset", i)
		}
		last = interval
	}
	for i, raw := range c.Planning.CourseDates {
		if _, err := time.Parse(DateLayout, strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("planning.course_dates[%d] %q is not a valid YYYY-MM-DD date", i, raw)
		}
	}
	if c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port %d is out of range", c.Dashboard.Port)
	}
	return nil
}

// ExamDate returns the parsed exam date.
func (c *Config) ExamDate() time.Time {
	return c.examDate
}

// CourseDateSet returns the configured course days keyed by YYYY-MM-DD.
func (c *Config) CourseDateSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Planning.CourseDates))
	for _, raw := range c.Planning.CourseDates {
		set[strings.TrimSpace(raw)] = struct{}{}
	}
	return set
}

// RevisorProjectDir returns ProjectDir/.revisor.
func (c *Config) RevisorProjectDir() string {
	return filepath.Join(c.ProjectDir, RevisorDir)
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.RevisorProjectDir(), "logs")
}

// StateDir returns the path to the state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.RevisorProjectDir(), "state")
}

// ExportsDir returns the directory generated artifacts are written to.
func (c *Config) ExportsDir() string {
	return c.resolve(c.Paths.Exports)
}

// CoursesDir returns the directory scanned for course documents.
func (c *Config) CoursesDir() string {
	return c.resolve(c.Paths.Courses)
}

// DirectivesDir returns the directory scanned for exam directives.
func (c *Config) DirectivesDir() string {
	return c.resolve(c.Paths.Directives)
}

// IndexPath returns the on-disk location of the DuckDB document index.
func (c *Config) IndexPath() string {
	return filepath.Join(c.StateDir(), "index.duckdb")
}

// QuizPath returns the export holding the last generated quiz or mock exam.
func (c *Config) QuizPath() string {
	return filepath.Join(c.ExportsDir(), "quiz.json")
}

// QuizHistoryPath returns the quiz score history file.
func (c *Config) QuizHistoryPath() string {
	return filepath.Join(c.StateDir(), "quiz_history.json")
}

// ProgressPath returns the progress-tracking state file.
func (c *Config) ProgressPath() string {
	return filepath.Join(c.StateDir(), "progress.json")
}

// FlashcardsPath returns the flashcard deck state file.
func (c *Config) FlashcardsPath() string {
	return filepath.Join(c.StateDir(), "flashcards.json")
}

// ConceptMapPath returns the exported concept map location.
func (c *Config) ConceptMapPath() string {
	return filepath.Join(c.ExportsDir(), "concept_map.json")
}

// PlanJSONPath returns the exported JSON plan location.
func (c *Config) PlanJSONPath() string {
	return filepath.Join(c.ExportsDir(), "revision_plan.json")
}

// PlanMarkdownPath returns the exported Markdown plan location.
func (c *Config) PlanMarkdownPath() string {
	return filepath.Join(c.ExportsDir(), "revision_plan.md")
}

// ConfigPath returns the on-disk location for the project config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.RevisorProjectDir(), "config.yaml")
}

func (c *Config) resolve(candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return c.ProjectDir
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(c.ProjectDir, trimmed))
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
