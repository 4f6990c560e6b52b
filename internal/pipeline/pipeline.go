// Package pipeline turns a directory of uploads into compliant portraits
// and a manifest describing them.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/AnyUserName/idphoto-cli/internal/manifest"
	"github.com/AnyUserName/idphoto-cli/internal/matte"
	"github.com/AnyUserName/idphoto-cli/internal/profile"
	"github.com/charmbracelet/log"
)

// Config holds all parameters for a build pipeline run.
type Config struct {
	InputDir   string
	OutputDir  string
	Profile    profile.Profile
	Extractor  matte.Extractor
	Workers    int
	KeepCutout bool // also write the composited subject as PNG
	Logger     *log.Logger
}

// Pipeline orchestrates photo processing.
type Pipeline struct {
	cfg Config
	log *log.Logger
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	l := cfg.Logger
	if l == nil {
		l = log.New(io.Discard)
	}
	return &Pipeline{cfg: cfg, log: l}
}

// Run executes the full build and returns the manifest. Individual photo
// failures are logged and counted; Run fails only when every photo does.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	if err := p.cfg.Profile.Validate(); err != nil {
		return nil, err
	}

	extractorName := "none"
	if p.cfg.Extractor != nil {
		extractorName = p.cfg.Extractor.Name()
	}
	p.log.Debug("starting build", "profile", p.cfg.Profile.Name, "mode", p.cfg.Profile.Mode,
		"extractor", extractorName, "workers", p.cfg.Workers)

	// Step 1: Scan for photos.
	skip := ""
	if rel, err := filepath.Rel(p.cfg.InputDir, p.cfg.OutputDir); err == nil && rel != "." && filepath.IsLocal(rel) {
		skip = p.cfg.OutputDir
	}
	sources, err := ScanImages(p.cfg.InputDir, skip)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	p.log.Debug("found photos", "count", len(sources))

	// Step 2: Process photos in parallel.
	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			if err := ctx.Err(); err != nil {
				results[idx] = processResult{key: s.Key, err: err}
				return
			}

			p.log.Debug("processing", "photo", s.Key)
			results[idx] = processPhoto(ctx, s, p.cfg)

			if r := results[idx]; r.err == nil {
				p.log.Debug("done", "photo", s.Key, "quality", r.photo.Output.Quality,
					"size", r.photo.Output.Size, "exit", r.photo.Output.Exit)
				if !r.photo.Output.WithinBudget {
					p.log.Warn("over size budget", "photo", s.Key, "size", r.photo.Output.Size,
						"max", p.cfg.Profile.Budget().MaxBytes)
				}
				if r.photo.Output.UnderMin {
					p.log.Warn("below minimum size", "photo", s.Key, "size", r.photo.Output.Size,
						"min", p.cfg.Profile.Budget().MinBytes)
				}
			}
		}(i, src)
	}
	wg.Wait()

	// Step 3: Collect results into manifest.
	b := p.cfg.Profile.Budget()
	m := manifest.New(p.cfg.Profile.Name, manifest.Target{
		Width:    p.cfg.Profile.Width,
		Height:   p.cfg.Profile.Height,
		DPI:      b.DPI,
		MinBytes: b.MinBytes,
		MaxBytes: b.MaxBytes,
		Mode:     p.cfg.Profile.Mode,
	})

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		m.Photos[r.key] = r.photo
	}

	// Report errors but don't fail the entire build for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			p.log.Error("photo failed", "err", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d photos failed to process: %w", len(errs), errs[0])
		}
		p.log.Warn("partial build", "failed", len(errs), "total", len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers:   p.cfg.Workers,
		Extractor: extractorName,
	}
	m.Stats.Failed = len(errs)
	m.ComputeStats()
	return m, nil
}
