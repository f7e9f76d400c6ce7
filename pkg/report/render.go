package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// Renderer serializes a Model. Implementations hold no state besides their
// immutable configuration.
type Renderer interface {
	Render(w io.Writer, m Model) error
}

// HTML renders the dashboard page.
type HTML struct {
	tmpl *template.Template
}

// NewHTML parses a dashboard template. Pass DefaultTemplate unless the page
// layout is being customised.
func NewHTML(text string) (*HTML, error) {
	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"chart": chartHTML,
		"base":  baseName,
		"pct":   func(f float64) string { return fmt.Sprintf("%.1f", f) },
		"stamp": func(m Model) string { return m.GeneratedAt.Format("2006-01-02 15:04:05") },
	}).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	return &HTML{tmpl: tmpl}, nil
}

// Render executes the template into w. The page is built in memory first so
// a template error never leaves a partial document behind.
func (h *HTML) Render(w io.Writer, m Model) error {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, m); err != nil {
		return fmt.Errorf("execute dashboard template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// JSON renders the model as indented JSON, for scripts and CI checks.
type JSON struct{}

// Render encodes m into w.
func (JSON) Render(w io.Writer, m Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// ForFormat returns the renderer for a --format value.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "html":
		return NewHTML(DefaultTemplate)
	case "json":
		return JSON{}, nil
	}
	return nil, fmt.Errorf("unknown report format %q (want html or json)", format)
}
