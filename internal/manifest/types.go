package manifest

// Manifest is the top-level output of an idphoto build.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	Target      Target           `json:"target"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Photos      map[string]Photo `json:"photos"`
	Stats       Stats            `json:"stats"`
}

// Target records the requirements every output was produced against, so
// validate can check files without the profile that made them.
type Target struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	DPI      int    `json:"dpi"`
	MinBytes int    `json:"min_bytes"`
	MaxBytes int    `json:"max_bytes"`
	Mode     string `json:"mode"`
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers   int    `json:"workers"`
	Extractor string `json:"extractor"`
}

// Photo describes one source image and the portrait made from it.
type Photo struct {
	Original OriginalInfo `json:"original"`
	Output   Output       `json:"output"`
	Cutout   string       `json:"cutout,omitempty"` // relative path of the saved cut-out
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
}

// Output is the encoded portrait.
type Output struct {
	Path         string `json:"path"` // relative to base_path
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int64  `json:"size"`
	Hash         string `json:"hash"` // 16 hex chars of xxhash64
	Quality      int    `json:"quality"`
	DPI          int    `json:"dpi"`
	Exit         string `json:"exit"`     // why the quality search stopped
	Attempts     int    `json:"attempts"` // encodes performed
	WithinBudget bool   `json:"within_budget"`
	UnderMin     bool   `json:"under_min,omitempty"`
}

// Stats aggregates build metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalPhotos      int   `json:"total_photos"`
	OverBudget       int   `json:"over_budget,omitempty"` // best-effort outputs above max_bytes
	UnderMin         int   `json:"under_min,omitempty"`   // outputs below min_bytes
	Failed           int   `json:"failed,omitempty"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest's name inside the output directory.
const FileName = "idphoto.manifest.json"
