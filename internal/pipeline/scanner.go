package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Source represents a discovered photo.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory.
	RelPath string
	// Key is the photo key: relpath without extension, or with it when
	// another photo in the same directory shares the stem.
	Key string
	// Format is the source format (png, jpeg, webp, gif, bmp, tiff).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// ErrDuplicateKey is returned when two photos cannot be given distinct
// keys.
var ErrDuplicateKey = errors.New("pipeline: duplicate photo key")

// imageExtensions maps recognized extensions to normalized format names.
var imageExtensions = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".webp": "webp",
	".gif":  "gif",
	".bmp":  "bmp",
	".tiff": "tiff",
	".tif":  "tiff",
}

// ScanImages walks inputDir and returns every photo in it, skipping
// hidden entries and anything under skipDir (the output directory when
// it is nested inside the input).
func ScanImages(inputDir, skipDir string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != inputDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDir != "" && path == skipDir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		format, ok := imageExtensions[ext]
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: filepath.ToSlash(relPath),
			Key:     filepath.ToSlash(strings.TrimSuffix(relPath, filepath.Ext(relPath))),
			Format:  format,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := uniqueKeys(sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// uniqueKeys gives photos sharing a stem (a.jpg, a.png) their full
// relative path as key.
func uniqueKeys(sources []Source) error {
	stems := make(map[string]int, len(sources))
	for _, s := range sources {
		stems[s.Key]++
	}
	seen := make(map[string]string, len(sources))
	for i := range sources {
		s := &sources[i]
		if stems[s.Key] > 1 {
			s.Key = s.RelPath
		}
		if prev, ok := seen[s.Key]; ok {
			return fmt.Errorf("%w: %s and %s", ErrDuplicateKey, prev, s.RelPath)
		}
		seen[s.Key] = s.RelPath
	}
	return nil
}
