package processor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// SupportedExtensions lists the optimizable extensions in discovery order.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Raster formats that are recognized but not optimized. Files with these
// extensions are reported as skipped rather than ignored.
var unsupportedImageExtensions = map[string]bool{
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".avif": true,
	".heic": true,
	".heif": true,
	".ico":  true,
}

// Discovery is the file list for one run.
type Discovery struct {
	Root string
	// Created is set when Discover had to create a missing root.
	Created     bool
	Images      []string
	Unsupported []string
	// Unreadable holds subdirectories whose listing failed.
	Unreadable []string
}

// Discover lists root, creating it first when it does not exist.
func Discover(root string) (Discovery, error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return Discovery{Root: root}, fmt.Errorf("create %s: %w", root, err)
		}
		return Discovery{Root: root, Created: true}, nil
	}
	return List(root)
}

// List walks root recursively and groups matching files by extension in
// SupportedExtensions order, keeping walk order within each group. Only a
// failure to read root itself is an error.
func List(root string) (Discovery, error) {
	disc := Discovery{Root: root}

	info, err := os.Stat(root)
	if err != nil {
		return disc, err
	}
	if !info.IsDir() {
		return disc, fmt.Errorf("%s: not a directory", root)
	}

	var matches []string
	err = fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == "." {
				return walkErr
			}
			disc.Unreadable = append(disc.Unreadable, filepath.Join(root, path))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		fullPath := filepath.Join(root, filepath.FromSlash(path))
		if !d.Type().IsRegular() && !isFileLink(fullPath, d) {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		switch {
		case lo.Contains(SupportedExtensions, ext):
			matches = append(matches, fullPath)
		case unsupportedImageExtensions[ext]:
			disc.Unsupported = append(disc.Unsupported, fullPath)
		}
		return nil
	})
	if err != nil {
		return disc, fmt.Errorf("list %s: %w", root, err)
	}

	byExt := lo.GroupBy(lo.Uniq(matches), func(p string) string {
		return strings.ToLower(filepath.Ext(p))
	})
	for _, ext := range SupportedExtensions {
		disc.Images = append(disc.Images, byExt[ext]...)
	}
	return disc, nil
}

// isFileLink reports whether d is a symlink that resolves to a regular file.
// Links to directories are not followed.
func isFileLink(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
