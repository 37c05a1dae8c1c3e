package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_PlainTextOnNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.Info("Found %d image files", 3)
	log.Success("Optimized: %s", "a.png")
	log.Error("Failed to optimize %s: %v", "b.png", "boom")
	log.Warn("Skipping unsupported format: %s", "c.gif")
	log.Blank()

	want := "Found 3 image files\n" +
		"✓ Optimized: a.png\n" +
		"✗ Failed to optimize b.png: boom\n" +
		"Skipping unsupported format: c.gif\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestLineWriter(t *testing.T) {
	var lines []string
	w := LineWriter(func(line string) { lines = append(lines, line) })

	log := New(w)
	log.Info("one")
	log.Info("two")

	assert.Equal(t, []string{"one", "two"}, lines)
}
