package processor

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sort"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// Metadata is what a file carries besides pixels. None of it survives a
// re-encode.
type Metadata struct {
	ExifTags     int
	HasGPS       bool
	DeviceModel  string
	Timestamp    string
	PNGTextKeys  []string
	PNGTimestamp bool
	ICCProfile   bool
}

// Dropped counts the metadata items a re-encode discards.
func (m Metadata) Dropped() int {
	n := m.ExifTags + len(m.PNGTextKeys)
	if m.PNGTimestamp {
		n++
	}
	if m.ICCProfile {
		n++
	}
	return n
}

// readMetadata inspects data for EXIF (any container) and PNG ancillary
// chunks. Unparseable metadata is treated as absent.
func readMetadata(data []byte) Metadata {
	md := Metadata{}
	readExif(bytes.NewReader(data), &md)
	if bytes.HasPrefix(data, pngSignature) {
		_ = readPNGChunks(bytes.NewReader(data), &md)
	}
	return md
}

func readExif(rs io.ReadSeeker, md *Metadata) {
	defer func() {
		// go-exif reports some malformed IFDs by panicking.
		_ = recover()
	}()

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		return
	}

	md.ExifTags = len(tags)
	for _, tag := range tags {
		name := tag.TagName
		if strings.HasPrefix(name, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			md.HasGPS = true
		}
		if (name == "Model" || name == "CameraModelName") && md.DeviceModel == "" {
			md.DeviceModel = strings.TrimSpace(tag.FormattedFirst)
		}
		if name == "DateTimeOriginal" || (name == "DateTime" && md.Timestamp == "") {
			md.Timestamp = strings.TrimSpace(tag.FormattedFirst)
		}
	}
}

// readPNGChunks walks the chunk list collecting text keys, tIME, eXIf and
// iCCP.
func readPNGChunks(r io.Reader, md *Metadata) error {
	br := bufio.NewReader(r)

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return err
	}
	if !bytes.Equal(sig, pngSignature) {
		return errors.New("invalid PNG signature")
	}

	for {
		var header [8]byte
		if _, err := io.ReadFull(br, header[:]); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		length := binary.BigEndian.Uint32(header[:4])
		chunkName := string(header[4:])

		switch chunkName {
		case "tEXt", "zTXt", "iTXt":
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return err
			}
			if _, err := io.CopyN(io.Discard, br, 4); err != nil {
				return err
			}
			if idx := bytes.IndexByte(data, 0); idx > 0 {
				md.PNGTextKeys = append(md.PNGTextKeys, string(data[:idx]))
			}
			continue
		case "tIME":
			md.PNGTimestamp = true
		case "iCCP":
			md.ICCProfile = true
		case "eXIf":
			if md.ExifTags == 0 {
				md.ExifTags = 1
			}
		}

		if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
			return err
		}
		if chunkName == "IEND" {
			break
		}
	}

	sort.Strings(md.PNGTextKeys)
	return nil
}
