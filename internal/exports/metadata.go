// Package exports writes the plan and concept map to disk as Markdown and
// JSON documents. Every export carries a metadata envelope (YAML frontmatter
// for Markdown, a `_revisor` object for JSON) so stale artifacts can be
// detected without parsing the whole document.
package exports

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Metadata identifies who generated an export, from what, and when.
type Metadata struct {
	Generator string    `json:"generator" yaml:"generator"`
	Kind      string    `json:"kind" yaml:"kind"`
	Created   time.Time `json:"created" yaml:"created"`
	Inputs    []string  `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

// Generator is the value written into every envelope.
const Generator = "revisor"

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("exports: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("exports: malformed frontmatter")
)

type envelope struct {
	Revisor Metadata `yaml:"revisor"`
}

// NewMetadata fills the envelope for one export kind.
func NewMetadata(kind string, created time.Time, inputs ...string) Metadata {
	return Metadata{
		Generator: Generator,
		Kind:      kind,
		Created:   created.UTC().Truncate(time.Second),
		Inputs:    inputs,
	}
}

// wrapFrontMatter renders metadata + body with YAML fences.
func wrapFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	data, err := yaml.Marshal(envelope{Revisor: meta})
	if err != nil {
		return nil, fmt.Errorf("exports: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// ParseFrontMatter extracts the metadata block and body from a Markdown
// export that starts with `---` YAML fences.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	var env envelope
	if err := yaml.Unmarshal(parts[0], &env); err != nil {
		return Metadata{}, nil, fmt.Errorf("exports: parse frontmatter: %w", err)
	}
	if env.Revisor.Generator == "" {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	return env.Revisor, bytes.TrimLeft(parts[1], "\n"), nil
}
