package processor

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	libjpeg "github.com/pixiv/go-libjpeg/jpeg"
	"golang.org/x/image/draw"

	"github.com/codebar-ag/docs.clouddocs.ch/internal/config"
	"github.com/codebar-ag/docs.clouddocs.ch/pkg/imgutil"
)

// Encoder writes img in one target format.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
}

type jpegEncoder struct {
	opts config.JPEGOptions
}

func (e jpegEncoder) Encode(w io.Writer, img image.Image) error {
	return libjpeg.Encode(w, libjpegInput(img), &libjpeg.EncoderOptions{
		Quality:         e.opts.Quality,
		OptimizeCoding:  e.opts.OptimizeCoding,
		ProgressiveMode: e.opts.Progressive,
	})
}

// libjpegInput converts img to a buffer type libjpeg accepts directly.
// libjpeg only knows the 4:4:4, 4:4:0, 4:2:2 and 4:2:0 chroma layouts, so
// other YCbCr ratios go through RGBA.
func libjpegInput(img image.Image) image.Image {
	switch m := img.(type) {
	case *image.Gray, *image.RGBA:
		return img
	case *image.YCbCr:
		switch m.SubsampleRatio {
		case image.YCbCrSubsampleRatio444, image.YCbCrSubsampleRatio440,
			image.YCbCrSubsampleRatio422, image.YCbCrSubsampleRatio420:
			return img
		}
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

type pngEncoder struct {
	level png.CompressionLevel
}

func (e pngEncoder) Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: e.level}
	return enc.Encode(w, img)
}

// pngLevel maps a zlib 0-9 level onto the levels image/png exposes.
func pngLevel(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

type webpEncoder struct {
	opts config.WebPOptions
}

func (e webpEncoder) Encode(w io.Writer, img image.Image) error {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(e.opts.Quality))
	if err != nil {
		return err
	}
	options.Method = e.opts.Method

	src, ok := img.(*image.NRGBA)
	if !ok {
		src = imaging.Clone(img)
	}
	return webp.Encode(w, src, options)
}

// encoders builds the extension-keyed encoder table from cfg.
func encoders(cfg *config.Config) map[imgutil.Kind]Encoder {
	return map[imgutil.Kind]Encoder{
		imgutil.KindJPEG: jpegEncoder{opts: cfg.JPEG},
		imgutil.KindPNG:  pngEncoder{level: pngLevel(cfg.PNG.CompressionLevel)},
		imgutil.KindWebP: webpEncoder{opts: cfg.WebP},
	}
}

func encodeStageErr(kind imgutil.Kind, err error) error {
	return fmt.Errorf("encode %s: %w", kind, err)
}
