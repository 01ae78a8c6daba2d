// Package scanner walks the configured document directories and extracts
// plain text from course and directive files so the analyzer can work on
// uniform content regardless of source format.
package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// Category distinguishes the two document corpora the pipeline consumes.
type Category string

const (
	CategoryCourse    Category = "course"
	CategoryDirective Category = "directive"
)

// ErrUnsupportedExtension marks files the scanner cannot extract text from.
var ErrUnsupportedExtension = errors.New("scanner: unsupported extension")

// supportedExtensions maps the file types the scanner can read. Word
// documents are handled separately in ScanDirectory, which warns and skips
// them instead of failing the scan.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

// Document is one scanned file with its extracted text.
type Document struct {
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Extension string    `json:"extension"`
	Category  Category  `json:"category"`
	Module    string    `json:"module,omitempty"`
	Content   string    `json:"content"`
	WordCount int       `json:"word_count"`
	ScannedAt time.Time `json:"scanned_at"`
}

// Logger is the minimal logging contract the scanner needs. It matches
// logging.Logger.
type Logger interface {
	Printf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Scanner extracts documents from a set of category directories.
type Scanner struct {
	logger Logger
	now    func() time.Time
}

// Option customizes scanner construction.
type Option func(*Scanner)

// WithClock overrides the timestamp source for scanned documents.
func WithClock(clock func() time.Time) Option {
	return func(s *Scanner) {
		if clock != nil {
			s.now = clock
		}
	}
}

// New builds a Scanner. A nil logger is replaced with a no-op.
func New(logger Logger, opts ...Option) *Scanner {
	s := &Scanner{logger: logger, now: time.Now}
	if s.logger == nil {
		s.logger = nopLogger{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ScanDirectory walks dir recursively and extracts every supported document,
// tagging each with the given category. A missing directory is created and
// reported, not treated as fatal. Files that cannot be read are skipped with
// a warning.
func (s *Scanner) ScanDirectory(dir string, category Category) ([]Document, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		s.logger.Warnf("scanner: %s does not exist, creating it", dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("scanner: create %s: %w", dir, err)
		}
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("scanner: stat %s: %w", dir, err)
	}

	var docs []Document
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warnf("scanner: skip %s: %v", path, err)
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !supportedExtensions[ext] {
			if ext == ".docx" || ext == ".doc" {
				s.logger.Warnf("scanner: %s: Word documents are not supported, export to PDF or text", entry.Name())
			}
			return nil
		}
		content, err := extractContent(path, ext)
		if err != nil {
			s.logger.Warnf("scanner: skip %s: %v", entry.Name(), err)
			return nil
		}
		docs = append(docs, Document{
			Path:      path,
			Filename:  entry.Name(),
			Extension: ext,
			Category:  category,
			Module:    DetectModule(path),
			Content:   content,
			WordCount: countWords(content),
			ScannedAt: s.now(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanner: walk %s: %w", dir, err)
	}
	s.logger.Printf("scanner: %d %s documents under %s", len(docs), category, dir)
	return docs, nil
}

// ScanAll scans the course and directive directories and returns the merged
// document list, courses first.
func (s *Scanner) ScanAll(coursesDir, directivesDir string) ([]Document, error) {
	courses, err := s.ScanDirectory(coursesDir, CategoryCourse)
	if err != nil {
		return nil, err
	}
	directives, err := s.ScanDirectory(directivesDir, CategoryDirective)
	if err != nil {
		return nil, err
	}
	return append(courses, directives...), nil
}

func extractContent(path, ext string) (string, error) {
	switch ext {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ".pdf":
		return extractPDF(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
	}
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// DetectModule infers a module code from the file's path segments. The
// corpus uses AA01/AE03-style codes, module-prefixed directory names and
// short M1/M2 markers.
func DetectModule(path string) string {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if code := moduleCode(part); code != "" {
			return code
		}
	}
	return ""
}

func moduleCode(part string) string {
	if part == "" {
		return ""
	}
	upper := strings.ToUpper(part)
	if len(part) >= 4 && (strings.HasPrefix(upper, "AA") || strings.HasPrefix(upper, "AE")) {
		if unicode.IsDigit(rune(upper[2])) && unicode.IsDigit(rune(upper[3])) {
			if fields := strings.Fields(part); len(fields) > 1 {
				return strings.ToUpper(fields[0])
			}
			return upper[:4]
		}
	}
	lower := strings.ToLower(part)
	if strings.HasPrefix(lower, "module") {
		return part
	}
	if len(part) >= 2 && upper[0] == 'M' && unicode.IsDigit(rune(part[1])) {
		return part
	}
	return ""
}

func countWords(content string) int {
	return len(strings.Fields(content))
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
