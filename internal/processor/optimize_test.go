package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebar-ag/docs.clouddocs.ch/internal/config"
	"github.com/codebar-ag/docs.clouddocs.ch/pkg/imgutil"
)

func newOptimizer() *Optimizer {
	return NewOptimizer(config.Default())
}

func TestOptimize_PNG(t *testing.T) {
	path := writeFile(t, t.TempDir(), "diagram.png", encodePNG(t, pattern(96, 96), png.NoCompression))
	before := fileSize(t, path)

	res := newOptimizer().Optimize(path)
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeOptimized, res.Outcome)
	assert.Equal(t, ModeRGB, res.Mode)
	assert.False(t, res.Flattened)
	assert.Equal(t, before, res.BytesBefore)
	assert.Equal(t, fileSize(t, path), res.BytesAfter)
	assert.Less(t, res.BytesAfter, before)

	img, format := decodeFile(t, path)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 96, 96), img.Bounds())
}

func TestOptimize_JPEGIsProgressive(t *testing.T) {
	path := writeFile(t, t.TempDir(), "photo.JPG", encodeJPEG(t, pattern(128, 96), 100))
	before := fileSize(t, path)

	res := newOptimizer().Optimize(path)
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeOptimized, res.Outcome)
	assert.Equal(t, imgutil.KindJPEG, res.Kind)
	assert.LessOrEqual(t, res.BytesAfter, before)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte{0xff, 0xc2}), "expected a progressive SOF2 marker")

	img, format := decodeFile(t, path)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, 128, 96), img.Bounds())
}

func TestOptimize_WebP(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hero.webp", encodeWebP(t, pattern(64, 64), 100))
	before := fileSize(t, path)

	res := newOptimizer().Optimize(path)
	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeOptimized, res.Outcome)
	assert.LessOrEqual(t, res.BytesAfter, before)

	img, format := decodeFile(t, path)
	assert.Equal(t, "webp", format)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
}

func TestOptimize_TransparentPNGSavedAsJPEGIsWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	path := writeFile(t, t.TempDir(), "icon.jpg", encodePNG(t, src, png.DefaultCompression))

	res := newOptimizer().Optimize(path)
	require.NoError(t, res.Err)
	assert.True(t, res.Flattened)
	assert.Equal(t, imgutil.KindPNG, res.Detected)
	assert.True(t, res.Mismatched())

	img, format := decodeFile(t, path)
	assert.Equal(t, "jpeg", format)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.GreaterOrEqual(t, r>>8, uint32(250))
	assert.GreaterOrEqual(t, g>>8, uint32(250))
	assert.GreaterOrEqual(t, b>>8, uint32(250))
}

func TestOptimize_PaletteBecomesOpaquePNG(t *testing.T) {
	pal := color.Palette{color.NRGBA{}, color.NRGBA{R: 255, A: 255}}
	src := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	src.SetColorIndex(3, 3, 1)
	path := writeFile(t, t.TempDir(), "sprite.png", encodePNG(t, src, png.DefaultCompression))

	res := newOptimizer().Optimize(path)
	require.NoError(t, res.Err)
	assert.Equal(t, ModePalette, res.Mode)

	img, _ := decodeFile(t, path)
	assert.Equal(t, color.NRGBAModel.Convert(color.White), color.NRGBAModel.Convert(img.At(0, 0)))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, color.NRGBAModel.Convert(img.At(3, 3)))
}

func TestOptimize_CorruptFileLeftUntouched(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.png", nil)

	full := encodePNG(t, pattern(32, 32), png.DefaultCompression)
	truncatedData := full[:len(full)/2]
	truncated := writeFile(t, dir, "truncated.png", truncatedData)

	opt := newOptimizer()
	for path, want := range map[string][]byte{empty: nil, truncated: truncatedData} {
		res := opt.Optimize(path)
		assert.Equal(t, OutcomeFailed, res.Outcome, path)
		assert.ErrorContains(t, res.Err, "decode", path)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, len(want), len(got), path)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files may be left behind")
}

func TestOptimize_UnsupportedExtensionSkipped(t *testing.T) {
	data := encodePNG(t, pattern(8, 8), png.DefaultCompression)
	path := writeFile(t, t.TempDir(), "anim.gif", data)

	res := newOptimizer().Optimize(path)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrUnsupported)
	assert.Equal(t, imgutil.KindPNG, res.Detected)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestOptimize_MissingFile(t *testing.T) {
	res := newOptimizer().Optimize(filepath.Join(t.TempDir(), "gone.png"))
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, os.ErrNotExist)
}

func TestOptimize_PreservesPermissions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "diagram.png", encodePNG(t, pattern(16, 16), png.NoCompression))
	require.NoError(t, os.Chmod(path, 0o640))

	res := newOptimizer().Optimize(path)
	require.NoError(t, res.Err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestOptimize_WriteFailureKeepsOriginal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	data := encodePNG(t, pattern(16, 16), png.NoCompression)
	path := writeFile(t, dir, "diagram.png", data)
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	res := newOptimizer().Optimize(path)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorContains(t, res.Err, "write")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestOptimize_NearIdempotent(t *testing.T) {
	dir := t.TempDir()
	pngPath := writeFile(t, dir, "a.png", encodePNG(t, pattern(64, 64), png.NoCompression))
	jpgPath := writeFile(t, dir, "b.jpg", encodeJPEG(t, pattern(64, 64), 100))

	opt := newOptimizer()
	for _, path := range []string{pngPath, jpgPath} {
		first := opt.Optimize(path)
		require.NoError(t, first.Err)
		second := opt.Optimize(path)
		require.NoError(t, second.Err)

		assert.Equal(t, first.BytesAfter, second.BytesBefore)
		ratio := float64(second.BytesAfter) / float64(first.BytesAfter)
		assert.InDelta(t, 1.0, ratio, 0.1, path)
	}

	// Lossless at a fixed level is byte-stable.
	again := opt.Optimize(pngPath)
	assert.Equal(t, again.BytesBefore, again.BytesAfter)
}

func TestOptimize_CountsDroppedMetadata(t *testing.T) {
	data := withPNGChunks(t, encodePNG(t, pattern(8, 8), png.DefaultCompression),
		buildPNGChunk("tEXt", []byte("Author\x00Docs Team")),
		buildPNGChunk("tIME", []byte{0x07, 0xE8, 0x01, 0x02, 0x03, 0x04, 0x05}),
	)
	path := writeFile(t, t.TempDir(), "meta.png", data)

	res := newOptimizer().Optimize(path)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.MetadataDropped)

	md := Metadata{}
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, readPNGChunks(bytes.NewReader(after), &md))
	assert.Zero(t, md.Dropped())
}

func TestPNGLevel(t *testing.T) {
	assert.Equal(t, png.NoCompression, pngLevel(0))
	assert.Equal(t, png.BestSpeed, pngLevel(1))
	assert.Equal(t, png.DefaultCompression, pngLevel(6))
	assert.Equal(t, png.BestCompression, pngLevel(9))
}

// splitChroma is a flat-luma YCbCr image whose blue-difference chroma
// changes between the left and right halves.
func splitChroma(w, h int, ratio image.YCbCrSubsampleRatio) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, w, h), ratio)
	for i := range img.Y {
		img.Y[i] = 128
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ci := img.COffset(x, y)
			img.Cr[ci] = 128
			img.Cb[ci] = 40
			if x >= w/2 {
				img.Cb[ci] = 220
			}
		}
	}
	return img
}

func assertColorNear(t *testing.T, want, got color.Color, tolerance int) {
	t.Helper()
	w := color.NRGBAModel.Convert(want).(color.NRGBA)
	g := color.NRGBAModel.Convert(got).(color.NRGBA)
	assert.InDelta(t, int(w.R), int(g.R), float64(tolerance), "R: want %v got %v", w, g)
	assert.InDelta(t, int(w.G), int(g.G), float64(tolerance), "G: want %v got %v", w, g)
	assert.InDelta(t, int(w.B), int(g.B), float64(tolerance), "B: want %v got %v", w, g)
}

func TestJPEGEncoder_ChromaSubsampling(t *testing.T) {
	enc := jpegEncoder{opts: config.Default().JPEG}
	cases := map[string]struct {
		ratio image.YCbCrSubsampleRatio
		w, h  int
	}{
		"4:1:1":            {image.YCbCrSubsampleRatio411, 64, 32},
		"4:1:0":            {image.YCbCrSubsampleRatio410, 64, 37},
		"4:2:0 odd height": {image.YCbCrSubsampleRatio420, 64, 33},
		"4:4:4":            {image.YCbCrSubsampleRatio444, 64, 32},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			src := splitChroma(tc.w, tc.h, tc.ratio)

			var buf bytes.Buffer
			require.NoError(t, enc.Encode(&buf, src))
			out, err := jpeg.Decode(&buf)
			require.NoError(t, err)
			require.Equal(t, src.Bounds(), out.Bounds())

			y := tc.h / 2
			for _, x := range []int{8, 40} {
				assertColorNear(t, src.At(x, y), out.At(x, y), 16)
			}
		})
	}
}

func TestLibjpegInput_ConvertsUnsupportedRatios(t *testing.T) {
	for _, ratio := range []image.YCbCrSubsampleRatio{
		image.YCbCrSubsampleRatio411,
		image.YCbCrSubsampleRatio410,
	} {
		_, ok := libjpegInput(splitChroma(16, 16, ratio)).(*image.RGBA)
		assert.True(t, ok, ratio.String())
	}

	native := splitChroma(16, 16, image.YCbCrSubsampleRatio422)
	assert.Same(t, native, libjpegInput(native))
}

func TestOptimize_ThroughSymlinkRewritesTarget(t *testing.T) {
	target := writeFile(t, t.TempDir(), "shared.png", encodePNG(t, pattern(32, 32), png.NoCompression))
	before := fileSize(t, target)
	link := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.Symlink(target, link))

	res := newOptimizer().Optimize(link)
	require.NoError(t, res.Err)

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link must stay a symlink")
	assert.Less(t, fileSize(t, target), before)
}
