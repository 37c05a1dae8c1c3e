package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"

	"github.com/codebar-ag/docs.clouddocs.ch/internal/config"
	"github.com/codebar-ag/docs.clouddocs.ch/pkg/imgutil"
)

// ErrUnsupported marks a path whose extension has no encoder.
var ErrUnsupported = errors.New("unsupported format")

// Optimizer re-encodes single files in place.
type Optimizer struct {
	encoders map[imgutil.Kind]Encoder
}

// NewOptimizer returns an Optimizer using the encoder settings in cfg.
func NewOptimizer(cfg *config.Config) *Optimizer {
	return &Optimizer{encoders: encoders(cfg)}
}

// Optimize decodes path, flattens transparency, re-encodes it with the
// encoder chosen by its extension and overwrites it. It never returns an
// error directly: failures are reported in the Result, and the original
// file is untouched unless the Result is OutcomeOptimized.
func (o *Optimizer) Optimize(path string) (res Result) {
	res = Result{Path: path, Kind: imgutil.KindFromPath(path)}
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("panic: %v", r)
		}
	}()

	enc, ok := o.encoders[res.Kind]
	if !ok {
		res.Outcome = OutcomeSkipped
		res.Err = ErrUnsupported
		res.Detected, _ = imgutil.SniffFile(path)
		return res
	}

	fail := func(err error) Result {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("read: %w", err))
	}
	res.BytesBefore = int64(len(data))
	res.Detected = imgutil.DetectHeader(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fail(fmt.Errorf("decode: %w", err))
	}
	res.MetadataDropped = readMetadata(data).Dropped()

	res.Mode = colorMode(data, img)
	img, res.Flattened = normalize(img, res.Mode)

	var buf bytes.Buffer
	buf.Grow(len(data))
	if err := enc.Encode(&buf, img); err != nil {
		return fail(encodeStageErr(res.Kind, err))
	}

	if err := writeInPlace(path, buf.Bytes()); err != nil {
		return fail(fmt.Errorf("write: %w", err))
	}

	res.Outcome = OutcomeOptimized
	res.BytesAfter = int64(buf.Len())
	return res
}
