package processor

import (
	"github.com/codebar-ag/docs.clouddocs.ch/pkg/imgutil"
)

// ColorMode is the pixel representation of a decoded image.
type ColorMode int

const (
	ModeUnknown ColorMode = iota
	ModeRGB
	ModeRGBA
	ModeLuminance
	ModeLuminanceAlpha
	ModePalette
	ModeCMYK
)

func (m ColorMode) String() string {
	switch m {
	case ModeRGB:
		return "RGB"
	case ModeRGBA:
		return "RGBA"
	case ModeLuminance:
		return "L"
	case ModeLuminanceAlpha:
		return "LA"
	case ModePalette:
		return "P"
	case ModeCMYK:
		return "CMYK"
	default:
		return "unknown"
	}
}

// NeedsFlatten reports whether the mode carries transparency or a palette
// and must be composited onto an opaque canvas before encoding.
func (m ColorMode) NeedsFlatten() bool {
	return m == ModeRGBA || m == ModeLuminanceAlpha || m == ModePalette
}

type Outcome int

const (
	OutcomeOptimized Outcome = iota
	OutcomeFailed
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOptimized:
		return "optimized"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is the outcome of one Optimize call.
type Result struct {
	Path    string
	Outcome Outcome
	Err     error

	// Kind is derived from the extension and selects the encoder. Detected
	// is what the file content actually is.
	Kind     imgutil.Kind
	Detected imgutil.Kind

	Mode      ColorMode
	Flattened bool

	BytesBefore int64
	BytesAfter  int64

	// MetadataDropped counts EXIF tags and PNG metadata chunks present in
	// the original that the re-encode does not carry over.
	MetadataDropped int
}

// Mismatched reports whether the content format disagrees with the
// extension.
func (r Result) Mismatched() bool {
	return r.Detected != imgutil.KindUnknown && r.Detected != r.Kind
}

// Summary aggregates Results over a run. Total counts attempts (optimized
// plus failed); skipped files are not attempts.
type Summary struct {
	Total       int
	Optimized   int
	Failed      int
	Skipped     int
	BytesBefore int64
	BytesAfter  int64

	// Flattened and MetadataDropped sum the per-file values over
	// optimized files.
	Flattened       int
	MetadataDropped int
}

// Add folds r into the summary.
func (s *Summary) Add(r Result) {
	switch r.Outcome {
	case OutcomeOptimized:
		s.Total++
		s.Optimized++
		s.BytesBefore += r.BytesBefore
		s.BytesAfter += r.BytesAfter
		s.MetadataDropped += r.MetadataDropped
		if r.Flattened {
			s.Flattened++
		}
	case OutcomeFailed:
		s.Total++
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
}

// BytesSaved is positive when the optimized files shrank overall.
func (s Summary) BytesSaved() int64 {
	return s.BytesBefore - s.BytesAfter
}

// ProgressUpdate is one increment for a progress view. The first update of
// a run carries the queue sizes; each later one reports a finished file.
type ProgressUpdate struct {
	TotalDelta       int
	UnsupportedDelta int
	OptimizedDelta   int
	FailedDelta      int
	SkippedDelta     int
	BytesSavedDelta  int64

	Path    string
	Outcome Outcome
}

func updateFor(r Result) ProgressUpdate {
	u := ProgressUpdate{Path: r.Path, Outcome: r.Outcome}
	switch r.Outcome {
	case OutcomeOptimized:
		u.OptimizedDelta = 1
		u.BytesSavedDelta = r.BytesBefore - r.BytesAfter
	case OutcomeFailed:
		u.FailedDelta = 1
	default:
		u.SkippedDelta = 1
	}
	return u
}

// ScanReport describes one file without modifying it.
type ScanReport struct {
	Path     string
	Kind     imgutil.Kind
	Detected imgutil.Kind
	Width    int
	Height   int
	Mode     ColorMode
	Size     int64
	Err      error
	Details  []ScanDetail

	// Flattened is set when Optimize would composite onto Background.
	Flattened bool
}

type ScanDetail struct {
	Category string
	Values   []string
}
