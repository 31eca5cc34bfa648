package shell

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/partdb/internal/record"
	"github.com/roach88/partdb/internal/schema"
)

// Theme defines the colors used by the shell.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
	Error   lipgloss.Color
	Warn    lipgloss.Color
}

// DefaultTheme is a green accent on the terminal default background.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Error:   lipgloss.Color("#ff5f5f"),
	Warn:    lipgloss.Color("#ffaf00"),
}

// Styles holds all styles derived from a theme. Colors are dropped
// automatically when the output is not a terminal.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Prompt lipgloss.Style
	OK     lipgloss.Style
	Warn   lipgloss.Style
	Error  lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme for the given renderer.
func NewStyles(r *lipgloss.Renderer, t Theme) Styles {
	return Styles{
		Title:  r.NewStyle().Bold(true).Foreground(t.Primary),
		Header: r.NewStyle().Bold(true),
		Prompt: r.NewStyle().Foreground(t.Primary),
		OK:     r.NewStyle().Foreground(t.Primary),
		Warn:   r.NewStyle().Foreground(t.Warn),
		Error:  r.NewStyle().Bold(true).Foreground(t.Error),
		Help:   r.NewStyle().Foreground(t.Dim),
	}
}

// RenderTable lays records out in aligned columns under a bold header row.
// Columns are separated by two spaces and lines carry no trailing padding.
func (st Styles) RenderTable(s *schema.Schema, recs []record.Record) string {
	names := s.Names()
	widths := make([]int, len(names))
	for i, name := range names {
		widths[i] = lipgloss.Width(name)
	}
	for _, rec := range recs {
		for i := range widths {
			widths[i] = max(widths[i], lipgloss.Width(rec.Field(i)))
		}
	}

	var b strings.Builder
	b.WriteString(st.Header.Render(row(names, widths)))
	b.WriteByte('\n')
	for _, rec := range recs {
		b.WriteString(row(rec.Fields(), widths))
		b.WriteByte('\n')
	}
	return b.String()
}

func row(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
	}
	return strings.TrimRight(b.String(), " ")
}
