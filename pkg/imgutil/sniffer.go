package imgutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind identifies an image container format.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindWebP
	KindGIF
	KindTIFF
	KindBMP
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindWebP:
		return "webp"
	case KindGIF:
		return "gif"
	case KindTIFF:
		return "tiff"
	case KindBMP:
		return "bmp"
	default:
		return "unknown"
	}
}

var mimeKinds = map[string]Kind{
	"image/jpeg": KindJPEG,
	"image/png":  KindPNG,
	"image/webp": KindWebP,
	"image/gif":  KindGIF,
	"image/tiff": KindTIFF,
	"image/bmp":  KindBMP,
}

var extKinds = map[string]Kind{
	".jpg":  KindJPEG,
	".jpeg": KindJPEG,
	".png":  KindPNG,
	".webp": KindWebP,
	".gif":  KindGIF,
	".tif":  KindTIFF,
	".tiff": KindTIFF,
	".bmp":  KindBMP,
}

// DetectHeader inspects the leading bytes of a file for known signatures.
func DetectHeader(header []byte) Kind {
	mt := mimetype.Detect(header)
	for m := mt; m != nil; m = m.Parent() {
		if kind, ok := mimeKinds[m.String()]; ok {
			return kind
		}
	}
	return KindUnknown
}

// SniffFile reads the head of the file at path to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads from r and determines its type. Empty input is
// KindUnknown, not an error.
func SniffReader(r io.Reader) (Kind, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return KindUnknown, err
	}
	for m := mt; m != nil; m = m.Parent() {
		if kind, ok := mimeKinds[m.String()]; ok {
			return kind, nil
		}
	}
	return KindUnknown, nil
}

// KindFromExt maps a file extension (with or without the leading dot, any
// case) to the format it conventionally names.
func KindFromExt(ext string) Kind {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return extKinds[ext]
}

// KindFromPath is KindFromExt applied to the path's extension.
func KindFromPath(path string) Kind {
	return KindFromExt(filepath.Ext(path))
}
