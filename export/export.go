// Package export writes saved sessions to files in portable formats.
//
// Information Hiding:
// - Per-format encoding hidden behind the Exporter interface
// - Format names and file extensions hidden in the registry

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/richinex/parley/model"
)

// Exporter writes one session to w.
type Exporter interface {
	Export(s *model.Session, w io.Writer) error
	Extension() string
}

var exporters = map[string]func() Exporter{
	"json":     func() Exporter { return jsonExporter{} },
	"yaml":     func() Exporter { return yamlExporter{} },
	"yml":      func() Exporter { return yamlExporter{} },
	"md":       func() Exporter { return markdownExporter{} },
	"markdown": func() Exporter { return markdownExporter{} },
}

// NewExporter returns the exporter for a format name.
func NewExporter(format string) (Exporter, error) {
	ctor, ok := exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unknown export format: %q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	return ctor(), nil
}

// Formats returns the canonical format names, sorted.
func Formats() []string {
	formats := []string{"json", "md", "yaml"}
	sort.Strings(formats)
	return formats
}

// FileName suggests a file name for a session in the exporter's format.
func FileName(s *model.Session, e Exporter) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, s.Name)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "session"
	}
	return fmt.Sprintf("%d-%s.%s", s.ID, slug, e.Extension())
}

// document is the exported shape shared by JSON and YAML.
type document struct {
	ID      int64            `json:"id" yaml:"id"`
	Name    string           `json:"name" yaml:"name"`
	History model.Transcript `json:"history" yaml:"history"`
}

func newDocument(s *model.Session) document {
	// Clone never leaves Parts nil, so empty turns encode as [].
	return document{ID: s.ID, Name: s.Name, History: s.Transcript.Clone()}
}

type jsonExporter struct{}

func (jsonExporter) Extension() string { return "json" }

func (jsonExporter) Export(s *model.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(s)); err != nil {
		return fmt.Errorf("failed to encode session as json: %w", err)
	}
	return nil
}

type yamlExporter struct{}

func (yamlExporter) Extension() string { return "yaml" }

func (yamlExporter) Export(s *model.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(s)); err != nil {
		return fmt.Errorf("failed to encode session as yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush yaml: %w", err)
	}
	return nil
}

type markdownExporter struct{}

func (markdownExporter) Extension() string { return "md" }

func (markdownExporter) Export(s *model.Session, w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", s.Name)
	for _, turn := range s.Transcript {
		heading := "User"
		if turn.Role == model.RoleModel {
			heading = "Model"
		}
		fmt.Fprintf(&b, "\n### %s\n\n%s\n", heading, turn.Text())
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}
