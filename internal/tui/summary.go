package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	units "github.com/docker/go-units"

	"github.com/codebar-ag/docs.clouddocs.ch/internal/logging"
	"github.com/codebar-ag/docs.clouddocs.ch/internal/processor"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows is the table shown after a run with a progress view.
func SummaryRows(s processor.Summary) []SummaryRow {
	return []SummaryRow{
		{Label: "Images optimized", Value: fmt.Sprintf("%d/%d", s.Optimized, s.Total)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed)},
		{Label: "Skipped (unsupported)", Value: fmt.Sprintf("%d", s.Skipped)},
		{Label: "Flattened onto white", Value: fmt.Sprintf("%d", s.Flattened)},
		{Label: "Metadata dropped", Value: fmt.Sprintf("%d", s.MetadataDropped)},
		{Label: "Space saved", Value: units.BytesSize(float64(s.BytesSaved()))},
	}
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Label))
		valueWidth = max(valueWidth, lipgloss.Width(row.Value))
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(logging.ColorInk).Bold(true)
)
