package processor

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Background is the canvas transparent pixels are composited onto.
var Background color.Color = color.White

type opaquer interface {
	Opaque() bool
}

// colorMode classifies a decoded image. PNG data is classified from its
// IHDR colour type, since the decoder returns NRGBA for both RGBA and
// grayscale+alpha files.
func colorMode(data []byte, img image.Image) ColorMode {
	if mode, ok := pngColorMode(data); ok {
		return mode
	}
	return colorModeOf(img)
}

// pngColorMode reads the colour type byte of the IHDR chunk, which the PNG
// format requires to come first.
func pngColorMode(data []byte) (ColorMode, bool) {
	if len(data) < 26 || !bytes.HasPrefix(data, pngSignature) || string(data[12:16]) != "IHDR" {
		return ModeUnknown, false
	}
	switch data[25] {
	case 0:
		return ModeLuminance, true
	case 2:
		return ModeRGB, true
	case 3:
		return ModePalette, true
	case 4:
		return ModeLuminanceAlpha, true
	case 6:
		return ModeRGBA, true
	}
	return ModeUnknown, false
}

// colorModeOf classifies a decoded image by its buffer type. Alpha-capable
// buffers whose pixels are all opaque count as RGB.
func colorModeOf(img image.Image) ColorMode {
	switch img.(type) {
	case *image.Paletted:
		return ModePalette
	case *image.Gray, *image.Gray16:
		return ModeLuminance
	case *image.YCbCr:
		return ModeRGB
	case *image.CMYK:
		return ModeCMYK
	}

	if o, ok := img.(opaquer); ok {
		if o.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	}
	return ModeUnknown
}

// normalize composites img over an opaque canvas of the same size when mode
// carries alpha or a palette, or when the pixels are not opaque anyway (an
// RGB or gray PNG with a tRNS chunk). Other images are returned unchanged.
func normalize(img image.Image, mode ColorMode) (image.Image, bool) {
	if !mode.NeedsFlatten() && !hasTransparency(img) {
		return img, false
	}
	return flatten(img), true
}

func hasTransparency(img image.Image) bool {
	o, ok := img.(opaquer)
	return ok && !o.Opaque()
}

// flatten alpha-blends img over a freshly allocated Background canvas.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), Background)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}
