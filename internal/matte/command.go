package matte

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// Command extracts the foreground by shelling out to the rembg CLI, which
// keeps the model runtime out of this process. Each call spawns its own
// process, so one Command is safe to share between workers.
// Install: pip install "rembg[cli]"
type Command struct {
	// Path overrides the rembg binary looked up in PATH.
	Path string

	once      sync.Once
	available bool
	bin       string
}

func (c *Command) Name() string { return "rembg" }

// Available reports whether the rembg binary can be found.
func (c *Command) Available() bool {
	c.once.Do(func() {
		name := c.Path
		if name == "" {
			name = "rembg"
		}
		if path, err := exec.LookPath(name); err == nil {
			c.available = true
			c.bin = path
		}
	})
	return c.available
}

func (c *Command) Extract(ctx context.Context, img image.Image, p Params) (image.Image, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: rembg not found in PATH; install with: pip install \"rembg[cli]\"", ErrUnavailable)
	}

	id := tempCounter.Add(1)
	srcFile, err := os.CreateTemp("", fmt.Sprintf("idphoto_src_%d_*.png", id))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", fmt.Sprintf("idphoto_cut_%d_*.png", id))
	if err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	if err := png.Encode(srcFile, img); err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	if err := srcFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.bin, commandArgs(p, srcPath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("rembg: %w: %s", err, bytes.TrimSpace(out))
	}

	data, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, fmt.Errorf("read cut-out: %w", err)
	}
	cut, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cut-out: %w", err)
	}
	return cut, nil
}

// commandArgs builds the `rembg i` invocation for p.
func commandArgs(p Params, src, dst string) []string {
	args := []string{"i"}
	if p.Model != "" {
		args = append(args, "-m", p.Model)
	}
	if p.AlphaMatting {
		args = append(args,
			"-a",
			"-af", strconv.Itoa(p.ForegroundThreshold),
			"-ab", strconv.Itoa(p.BackgroundThreshold),
			"-ae", strconv.Itoa(p.ErodeSize),
		)
	}
	return append(args, src, dst)
}
