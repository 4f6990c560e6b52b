package pipeline

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/AnyUserName/idphoto-cli/internal/compose"
	"github.com/AnyUserName/idphoto-cli/internal/encoder"
	"github.com/AnyUserName/idphoto-cli/internal/hasher"
	"github.com/AnyUserName/idphoto-cli/internal/manifest"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processResult holds the result of processing a single source photo.
type processResult struct {
	key   string
	photo manifest.Photo
	err   error
}

// Decode reads an image, applying the EXIF orientation phone cameras
// record instead of rotating pixels.
func Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r, imaging.AutoOrientation(true))
}

// DecodeFile opens and decodes path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// processPhoto handles one source: decode, render, write, describe.
func processPhoto(ctx context.Context, src Source, cfg Config) processResult {
	result := processResult{key: src.Key}

	img, err := DecodeFile(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("decode %s: %w", src.RelPath, err)
		return result
	}
	bounds := img.Bounds()

	r, err := Render(ctx, img, cfg.Profile, cfg.Extractor)
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}
	art := r.Artifact

	keyDir := filepath.Dir(src.Key)
	if keyDir != "." {
		if err := os.MkdirAll(filepath.Join(cfg.OutputDir, keyDir), 0o755); err != nil {
			result.err = fmt.Errorf("create %s: %w", keyDir, err)
			return result
		}
	}

	contentHash := hasher.ContentHash(art.Data, 16)

	// Build filename: key.w.h.hash.ext
	fileName := fmt.Sprintf("%s.%d.%d.%s.%s",
		filepath.Base(src.Key), cfg.Profile.Width, cfg.Profile.Height, contentHash[:8], r.Encoder.Extension())
	relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, relPath), art.Data, 0o644); err != nil {
		result.err = fmt.Errorf("write %s: %w", relPath, err)
		return result
	}

	result.photo = manifest.Photo{
		Original: manifest.OriginalInfo{
			Width:    bounds.Dx(),
			Height:   bounds.Dy(),
			Format:   src.Format,
			Size:     src.Size,
			HasAlpha: compose.HasAlpha(img),
		},
		Output: manifest.Output{
			Path:         relPath,
			Width:        r.Portrait.Bounds().Dx(),
			Height:       r.Portrait.Bounds().Dy(),
			Size:         int64(art.Size),
			Hash:         contentHash,
			Quality:      art.Quality,
			DPI:          art.DPI,
			Exit:         string(art.Exit),
			Attempts:     len(art.Attempts),
			WithinBudget: art.WithinBudget,
			UnderMin:     art.UnderMin,
		},
	}

	if cfg.KeepCutout && r.Strategy.Composite() {
		cutPath, err := writeCutout(r.Subject, src.Key, cfg)
		if err != nil {
			result.err = err
			return result
		}
		result.photo.Cutout = cutPath
	}

	return result
}

// EncodeCutout encodes the composited subject in CutoutFormat, tagged
// with dpi, and returns the bytes with the file extension to use.
func EncodeCutout(subject image.Image, dpi int) ([]byte, string, error) {
	enc, err := encoder.ForFormat(CutoutFormat)
	if err != nil {
		return nil, "", err
	}
	data, err := enc.Encode(subject, 0, dpi)
	if err != nil {
		return nil, "", err
	}
	return data, enc.Extension(), nil
}

// writeCutout saves the composited subject next to the portrait as
// key.cutout.hash8.ext.
func writeCutout(subject image.Image, key string, cfg Config) (string, error) {
	data, ext, err := EncodeCutout(subject, cfg.Profile.DPI)
	if err != nil {
		return "", fmt.Errorf("encode cut-out %s: %w", key, err)
	}
	name := fmt.Sprintf("%s.cutout.%s.%s", filepath.Base(key), hasher.ContentHash(data, 8), ext)
	rel := filepath.ToSlash(filepath.Join(filepath.Dir(key), name))
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, rel), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	return rel, nil
}
