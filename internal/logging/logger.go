// Package logging renders leveled console lines. Styling is resolved against
// the destination writer, so pipes and buffers receive plain text.
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Logger writes one line per call. Safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	info    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
}

// New returns a Logger writing to out.
func New(out io.Writer) *Logger {
	r := lipgloss.NewRenderer(out)
	return &Logger{
		out:     out,
		info:    r.NewStyle().Foreground(ColorInk),
		success: r.NewStyle().Foreground(ColorSuccess),
		warn:    r.NewStyle().Foreground(ColorWarn),
		err:     r.NewStyle().Foreground(ColorError),
	}
}

func (l *Logger) line(style lipgloss.Style, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, style.Render(text)+"\n")
}

// Info logs a neutral line.
func (l *Logger) Info(format string, args ...any) {
	l.line(l.info, fmt.Sprintf(format, args...))
}

// Success logs a line prefixed with a check mark.
func (l *Logger) Success(format string, args ...any) {
	l.line(l.success, "✓ "+fmt.Sprintf(format, args...))
}

// Warn logs a highlighted, non-fatal line.
func (l *Logger) Warn(format string, args ...any) {
	l.line(l.warn, fmt.Sprintf(format, args...))
}

// Error logs a line prefixed with a cross.
func (l *Logger) Error(format string, args ...any) {
	l.line(l.err, "✗ "+fmt.Sprintf(format, args...))
}

// Blank writes an empty line.
func (l *Logger) Blank() {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, "\n")
}

// LineWriter adapts a func that prints whole lines (for example a TUI that
// prints above its own view) into an io.Writer for New.
type LineWriter func(line string)

func (w LineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSuffix(string(p), "\n"), "\n") {
		w(line)
	}
	return len(p), nil
}
