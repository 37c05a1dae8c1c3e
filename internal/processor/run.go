package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	units "github.com/docker/go-units"

	"github.com/codebar-ag/docs.clouddocs.ch/internal/logging"
)

// Run discovers the images under root and optimizes them one at a time,
// logging one line per file and a closing summary. Per-file failures are
// counted, not returned; the error is reserved for a root that cannot be
// listed. updates may be nil.
func Run(ctx context.Context, root string, opt *Optimizer, log *logging.Logger, updates chan<- ProgressUpdate) (Summary, error) {
	summary := Summary{}
	send := func(u ProgressUpdate) {
		if updates != nil {
			updates <- u
		}
	}

	disc, err := Discover(root)
	if err != nil {
		return summary, err
	}

	for _, dir := range disc.Unreadable {
		log.Warn("Cannot read %s, skipping", dir)
	}

	switch {
	case disc.Created:
		log.Info("No %s directory found. Creating it...", root)
		log.Info("Created %s directory. No images to optimize.", root)
	case len(disc.Images) == 0:
		log.Info("No image files found in %s directory.", root)
	default:
		log.Info("Found %d image files to optimize in %s/...", len(disc.Images), root)
	}
	send(ProgressUpdate{TotalDelta: len(disc.Images), UnsupportedDelta: len(disc.Unsupported)})

	queue := append(append([]string{}, disc.Images...), disc.Unsupported...)
	for _, path := range queue {
		if ctx.Err() != nil {
			log.Warn("Interrupted, %d files left unprocessed", len(queue)-summary.Total-summary.Skipped)
			break
		}

		res := opt.Optimize(path)
		summary.Add(res)
		reportResult(log, res)
		send(updateFor(res))
	}

	log.Blank()
	if summary.Skipped > 0 {
		log.Info("Skipped %d file(s) in unsupported formats.", summary.Skipped)
	}
	if summary.Optimized > 0 {
		log.Info("Saved %s (%s → %s).",
			units.BytesSize(float64(summary.BytesSaved())),
			units.BytesSize(float64(summary.BytesBefore)),
			units.BytesSize(float64(summary.BytesAfter)),
		)
	}
	log.Info("Optimization complete: %d/%d images optimized.", summary.Optimized, summary.Total)

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return summary, err
	}
	return summary, nil
}

func reportResult(log *logging.Logger, res Result) {
	switch res.Outcome {
	case OutcomeOptimized:
		log.Success("Optimized: %s (%s)", res.Path, strings.Join(successNotes(res), ", "))
	case OutcomeFailed:
		log.Error("Failed to optimize %s: %v", res.Path, res.Err)
	case OutcomeSkipped:
		if res.Mismatched() {
			log.Warn("Skipping unsupported format: %s (content is %s)", res.Path, res.Detected)
			return
		}
		log.Warn("Skipping unsupported format: %s", res.Path)
	}
}

func successNotes(res Result) []string {
	notes := []string{units.BytesSize(float64(res.BytesBefore)) + " → " + units.BytesSize(float64(res.BytesAfter))}
	if res.Mismatched() {
		notes = append(notes, "content is "+res.Detected.String())
	}
	if res.Flattened {
		notes = append(notes, "flattened onto white")
	}
	if res.MetadataDropped > 0 {
		notes = append(notes, fmt.Sprintf("dropped %d metadata item(s)", res.MetadataDropped))
	}
	return notes
}
