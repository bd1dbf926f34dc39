package config

import (
	"fmt"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/adrg/xdg"

	"github.com/nao1215/classifurlr/internal/classifier"
	"github.com/nao1215/classifurlr/internal/content"
	"github.com/nao1215/classifurlr/internal/pipeline"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "classifurlr"

	// DefaultWeight is the weight every built-in classifier starts with.
	DefaultWeight = 1.0

	// DefaultDownBias is how much more a down page counts than an up page
	// in the session rollup.
	DefaultDownBias = pipeline.DefaultDownBias

	// DefaultLookBackDays is the age after which a page no longer counts.
	DefaultLookBackDays = pipeline.DefaultLookBackDays

	// DefaultCacheSize is the number of decoded response bodies kept in memory.
	DefaultCacheSize = content.DefaultCacheSize

	// DefaultBatchSize is the number of sessions classified concurrently
	// when several input files are given.
	DefaultBatchSize = pipeline.DefaultConcurrency

	// DefaultListenAddress is where the serve command listens.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultHistoryLimit is how many stored verdicts the history command lists.
	DefaultHistoryLimit = 20
)

// Filter names accepted in the filters list.
const (
	FilterRelevance    = "relevance"
	FilterInconclusive = "inconclusive"
)

// DefaultFilters returns the default filter chain.
func DefaultFilters() []string {
	return []string{FilterRelevance, FilterInconclusive}
}

// DefaultWeights returns a weight of DefaultWeight for every built-in classifier.
func DefaultWeights() map[string]float64 {
	w := make(map[string]float64, len(classifier.Slugs()))
	for _, slug := range classifier.Slugs() {
		w[slug] = DefaultWeight
	}
	return w
}

// Config holds all configuration options for classifurlr.
// It is populated from defaults, the config file and CLI flags, then
// passed through the application rather than kept in global state.
type Config struct {
	// Weights maps classifier slugs to their relative weight. Only
	// classifiers present here run. Weights are normalized when the
	// pipeline is built.
	Weights map[string]float64

	// Filters is the ordered filter chain, by name.
	Filters []string

	// DownBias multiplies the weight of down pages in the session rollup.
	DownBias float64

	// LookBackDays is the page age, relative to the newest page, at
	// which a page stops counting.
	LookBackDays float64

	// Parallel classifies the pages of one session concurrently.
	Parallel bool

	// Workers bounds the goroutines used when Parallel is set.
	Workers int

	// CacheSize is the capacity of the decoded body cache.
	CacheSize int

	// BatchSize is the number of sessions classified concurrently.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches log output to JSON lines.
	JSONLog bool

	// ConfigFilePath is the path to the configuration file. If empty the
	// file is searched for by FindConfigFile.
	ConfigFilePath string

	// JSONReport writes the verdict as the indented JSON record.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes the verdict as GitHub Flavored Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path. When empty, reports go to stdout.
	ReportFile string

	// DBDir is the directory holding the verdict history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB stores every verdict in the history database.
	SaveToDB bool

	// ListenAddress is the host:port the HTTP endpoint binds to.
	ListenAddress string

	// HistoryLimit is the number of verdicts the history command prints.
	HistoryLimit int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Weights:       DefaultWeights(),
		Filters:       DefaultFilters(),
		DownBias:      DefaultDownBias,
		LookBackDays:  DefaultLookBackDays,
		Workers:       runtime.NumCPU(),
		CacheSize:     DefaultCacheSize,
		BatchSize:     DefaultBatchSize,
		DBDir:         XDGDataDir(),
		ListenAddress: DefaultListenAddress,
		HistoryLimit:  DefaultHistoryLimit,
	}
}

// Apply overlays the values set in a configuration file. Weights are
// merged slug by slug; every other field replaces the default only when
// present in the file.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if len(f.Weights) > 0 {
		if c.Weights == nil {
			c.Weights = make(map[string]float64, len(f.Weights))
		}
		maps.Copy(c.Weights, f.Weights)
	}
	for _, slug := range f.Disabled {
		delete(c.Weights, slug)
	}
	if f.Filters != nil {
		c.Filters = slices.Clone(f.Filters)
	}
	if f.Rollup.DownBias != 0 {
		c.DownBias = f.Rollup.DownBias
	}
	if f.Rollup.LookBackDays != 0 {
		c.LookBackDays = f.Rollup.LookBackDays
	}
	if f.Workers != 0 {
		c.Workers = f.Workers
	}
	if f.Parallel != nil {
		c.Parallel = *f.Parallel
	}
	if f.CacheSize != 0 {
		c.CacheSize = f.CacheSize
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}

// Rollup returns the session rollup parameters.
func (c *Config) Rollup() pipeline.Rollup {
	return pipeline.Rollup{DownBias: c.DownBias, LookBackDays: c.LookBackDays}
}

// XDGDataDir returns the XDG data directory for classifurlr.
// On Linux: ~/.local/share/classifurlr
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for classifurlr.
// On Linux: ~/.config/classifurlr
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Weights) == 0 {
		return ErrNoClassifiers
	}
	for _, slug := range slices.Sorted(maps.Keys(c.Weights)) {
		if !slices.Contains(classifier.Slugs(), slug) {
			return fmt.Errorf("%w: %q", classifier.ErrUnknownClassifier, slug)
		}
		if w := c.Weights[slug]; !(w > 0) {
			return fmt.Errorf("%w: %s has weight %v", ErrInvalidWeight, slug, w)
		}
	}

	seen := make(map[string]bool, len(c.Filters))
	for _, name := range c.Filters {
		key := normalizeName(name)
		if key != FilterRelevance && key != FilterInconclusive {
			return fmt.Errorf("%w: %q", ErrUnknownFilter, name)
		}
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateFilter, name)
		}
		seen[key] = true
	}

	if !(c.DownBias >= 1) {
		return ErrInvalidDownBias
	}
	if !(c.LookBackDays > 0) {
		return ErrInvalidLookBack
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.CacheSize <= 0 {
		return ErrInvalidCacheSize
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.HistoryLimit <= 0 {
		return ErrInvalidHistoryLimit
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
