package processor

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/codebar-ag/docs.clouddocs.ch/pkg/imgutil"
)

// Scan reports what Optimize would see for path without writing anything.
func Scan(path string) ScanReport {
	report := ScanReport{Path: path, Kind: imgutil.KindFromPath(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		report.Err = err
		return report
	}
	report.Size = int64(len(data))
	report.Detected = imgutil.DetectHeader(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		report.Err = fmt.Errorf("decode: %w", err)
		return report
	}
	b := img.Bounds()
	report.Width, report.Height = b.Dx(), b.Dy()
	report.Mode = colorMode(data, img)
	report.Flattened = report.Mode.NeedsFlatten() || hasTransparency(img)
	report.Details = scanDetails(readMetadata(data))
	return report
}

// ScanAll scans every file Discover would hand to the optimizer. Unlike
// Discover it does not create a missing root.
func ScanAll(root string) ([]ScanReport, error) {
	disc, err := List(root)
	if err != nil {
		return nil, err
	}

	reports := make([]ScanReport, 0, len(disc.Images))
	for _, path := range disc.Images {
		reports = append(reports, Scan(path))
	}
	return reports, nil
}

func scanDetails(md Metadata) []ScanDetail {
	var details []ScanDetail
	add := func(category string, values ...string) {
		details = append(details, ScanDetail{Category: category, Values: values})
	}

	if md.HasGPS {
		add("GPS", "coordinates present")
	}
	if md.DeviceModel != "" {
		add("Device Model", md.DeviceModel)
	}
	if md.Timestamp != "" {
		add("Timestamp", md.Timestamp)
	} else if md.PNGTimestamp {
		add("Timestamp", "tIME chunk")
	}
	if md.ExifTags > 0 {
		add("EXIF", fmt.Sprintf("%d tags", md.ExifTags))
	}
	if len(md.PNGTextKeys) > 0 {
		add("PNG Text", strings.Join(md.PNGTextKeys, ", "))
	}
	if md.ICCProfile {
		add("ICC Profile", "embedded")
	}
	return details
}
