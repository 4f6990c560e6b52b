package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadFile reads a TOML profile. Keys left out keep the value of the
// profile named by the top-level `base` key (cet-480 when absent), so a
// file only needs to state what differs:
//
//	base = "cet-960"
//	name = "campus-card"
//	background = [255, 255, 255]
//	max_kb = 200
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	var head struct {
		Base string `toml:"base"`
	}
	if _, err := toml.Decode(string(data), &head); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	baseName := head.Base
	if baseName == "" {
		baseName = DefaultName
	}
	p, ok := Lookup(baseName)
	if !ok {
		return Profile{}, fmt.Errorf("profile %s: unknown base %q", path, baseName)
	}
	p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, k := range undecoded {
			if k.String() != "base" {
				keys = append(keys, k.String())
			}
		}
		if len(keys) > 0 {
			return Profile{}, fmt.Errorf("profile %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}
	return p, p.Validate()
}

// Resolve returns the built-in profile called name, or loads it from a
// file when name ends in .toml.
func Resolve(name string) (Profile, error) {
	if strings.HasSuffix(name, ".toml") {
		return LoadFile(name)
	}
	p := Get(name)
	if _, ok := Lookup(name); !ok {
		return p, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, p.Validate()
}
