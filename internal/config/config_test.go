package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nao1215/classifurlr/internal/classifier"
	"github.com/nao1215/classifurlr/internal/har/hartest"
	"github.com/nao1215/classifurlr/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults should be intentional, so each one is pinned here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("every classifier has weight 1", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Weights) != len(classifier.Slugs()) {
			t.Fatalf("expected %d weights, got %d", len(classifier.Slugs()), len(cfg.Weights))
		}
		for _, slug := range classifier.Slugs() {
			if cfg.Weights[slug] != 1.0 {
				t.Errorf("expected weight 1 for %s, got %v", slug, cfg.Weights[slug])
			}
		}
	})

	t.Run("default filters are relevance then inconclusive", func(t *testing.T) {
		t.Parallel()
		if strings.Join(cfg.Filters, ",") != "relevance,inconclusive" {
			t.Errorf("unexpected filters %v", cfg.Filters)
		}
	})

	t.Run("default rollup is 1.5 and 60 days", func(t *testing.T) {
		t.Parallel()
		if cfg.DownBias != 1.5 {
			t.Errorf("expected DownBias 1.5, got %v", cfg.DownBias)
		}
		if cfg.LookBackDays != 60 {
			t.Errorf("expected LookBackDays 60, got %v", cfg.LookBackDays)
		}
	})

	t.Run("default workers is NumCPU and parallel is off", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != runtime.NumCPU() {
			t.Errorf("expected Workers %d, got %d", runtime.NumCPU(), cfg.Workers)
		}
		if cfg.Parallel {
			t.Error("expected Parallel to be false")
		}
	})

	t.Run("default cache size is 256", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheSize != 256 {
			t.Errorf("expected CacheSize 256, got %d", cfg.CacheSize)
		}
	})

	t.Run("default weights are not shared between configs", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.Weights[classifier.SlugThrottle] = 9
		if cfg.Weights[classifier.SlugThrottle] != 1 {
			t.Error("mutating one config changed another")
		}
	})
}

// TestConfigValidate tests the Validate method with one broken rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{
			name:   "no classifiers",
			modify: func(c *Config) { c.Weights = map[string]float64{} },
			want:   ErrNoClassifiers,
		},
		{
			name:   "unknown classifier",
			modify: func(c *Config) { c.Weights["dns_poisoning"] = 1 },
			want:   classifier.ErrUnknownClassifier,
		},
		{
			name:   "zero weight",
			modify: func(c *Config) { c.Weights[classifier.SlugThrottle] = 0 },
			want:   ErrInvalidWeight,
		},
		{
			name:   "negative weight",
			modify: func(c *Config) { c.Weights[classifier.SlugError] = -1 },
			want:   ErrInvalidWeight,
		},
		{
			name:   "unknown filter",
			modify: func(c *Config) { c.Filters = []string{"geo"} },
			want:   ErrUnknownFilter,
		},
		{
			name:   "duplicate filter",
			modify: func(c *Config) { c.Filters = []string{"relevance", "Relevance"} },
			want:   ErrDuplicateFilter,
		},
		{
			name:   "empty filter chain is valid",
			modify: func(c *Config) { c.Filters = nil },
		},
		{
			name:   "down bias below one",
			modify: func(c *Config) { c.DownBias = 0.9 },
			want:   ErrInvalidDownBias,
		},
		{
			name:   "zero look back",
			modify: func(c *Config) { c.LookBackDays = 0 },
			want:   ErrInvalidLookBack,
		},
		{
			name:   "zero workers",
			modify: func(c *Config) { c.Workers = 0 },
			want:   ErrInvalidWorkers,
		},
		{
			name:   "zero cache size",
			modify: func(c *Config) { c.CacheSize = 0 },
			want:   ErrInvalidCacheSize,
		},
		{
			name:   "zero batch size",
			modify: func(c *Config) { c.BatchSize = 0 },
			want:   ErrInvalidBatchSize,
		},
		{
			name:   "zero history limit",
			modify: func(c *Config) { c.HistoryLimit = 0 },
			want:   ErrInvalidHistoryLimit,
		},
		{
			name: "json and markdown both enabled",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			want: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("classification errors match ErrConfiguration", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.DownBias = 0.5
		if err := cfg.Validate(); !errors.Is(err, model.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})
}

func TestConfigApply(t *testing.T) {
	t.Parallel()

	t.Run("nil file keeps defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Apply(nil)
		if cfg.DownBias != DefaultDownBias {
			t.Errorf("expected default down bias, got %v", cfg.DownBias)
		}
	})

	t.Run("weights merge and disabled removes", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Apply(&File{
			Weights:  map[string]float64{classifier.SlugStatusCode: 3},
			Disabled: []string{classifier.SlugCosineSimilarity},
		})
		if cfg.Weights[classifier.SlugStatusCode] != 3 {
			t.Errorf("expected status_code weight 3, got %v", cfg.Weights[classifier.SlugStatusCode])
		}
		if cfg.Weights[classifier.SlugThrottle] != 1 {
			t.Errorf("expected throttle weight to stay 1, got %v", cfg.Weights[classifier.SlugThrottle])
		}
		if _, ok := cfg.Weights[classifier.SlugCosineSimilarity]; ok {
			t.Error("expected cosine_similarity to be disabled")
		}
	})

	t.Run("scalar overrides", func(t *testing.T) {
		t.Parallel()
		parallel := true
		cfg := NewConfig()
		cfg.Apply(&File{
			Filters:   []string{},
			Rollup:    RollupFile{DownBias: 2, LookBackDays: 30},
			Workers:   3,
			Parallel:  &parallel,
			CacheSize: 10,
			DBDir:     "/var/lib/classifurlr",
		})
		if len(cfg.Filters) != 0 {
			t.Errorf("expected empty filter chain, got %v", cfg.Filters)
		}
		if cfg.DownBias != 2 || cfg.LookBackDays != 30 {
			t.Errorf("unexpected rollup %v/%v", cfg.DownBias, cfg.LookBackDays)
		}
		if cfg.Workers != 3 || !cfg.Parallel || cfg.CacheSize != 10 {
			t.Errorf("unexpected worker settings %d/%v/%d", cfg.Workers, cfg.Parallel, cfg.CacheSize)
		}
		if cfg.DBDir != "/var/lib/classifurlr" {
			t.Errorf("unexpected db dir %s", cfg.DBDir)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.classifurlr")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".classifurlr")

		content := `weights:
  status_code: 2
  throttle: 0.5
disabled:
  - cosine_similarity
filters: [inconclusive]
rollup:
  downBias: 2
  lookBackDays: 30
workers: 8
parallel: true
cacheSize: 64
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Weights["status_code"] != 2 || f.Weights["throttle"] != 0.5 {
			t.Errorf("unexpected weights %v", f.Weights)
		}
		if len(f.Disabled) != 1 || f.Disabled[0] != "cosine_similarity" {
			t.Errorf("unexpected disabled list %v", f.Disabled)
		}
		if len(f.Filters) != 1 || f.Filters[0] != "inconclusive" {
			t.Errorf("unexpected filters %v", f.Filters)
		}
		if f.Rollup.DownBias != 2 || f.Rollup.LookBackDays != 30 {
			t.Errorf("unexpected rollup %+v", f.Rollup)
		}
		if f.Workers != 8 || f.Parallel == nil || !*f.Parallel || f.CacheSize != 64 {
			t.Errorf("unexpected worker settings %+v", f)
		}
	})

	t.Run("empty file is valid", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".classifurlr")
		if err := os.WriteFile(configPath, nil, 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Filters != nil {
			t.Errorf("expected absent filters, got %v", f.Filters)
		}
	})

	t.Run("returns error for unknown keys", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".classifurlr")
		if err := os.WriteFile(configPath, []byte("wieghts:\n  throttle: 1\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for unknown key")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".classifurlr")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path that exists", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("workers: 1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("explicit path that does not exist", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile("/nonexistent/custom.yaml"); got != "" {
			t.Errorf("expected empty path, got %s", got)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()
		if _, err := Load("/nonexistent/custom.yaml"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("explicit file is applied over defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("rollup:\n  downBias: 3\n"), 0600); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DownBias != 3 {
			t.Errorf("expected down bias 3, got %v", cfg.DownBias)
		}
		if cfg.LookBackDays != DefaultLookBackDays {
			t.Errorf("expected default look back, got %v", cfg.LookBackDays)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("expected config path %s, got %s", path, cfg.ConfigFilePath)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
	} {
		if filepath.Base(dir) != AppName {
			t.Errorf("expected %s dir to end with %s, got %s", name, AppName, dir)
		}
	}
}

func TestNewPipeline(t *testing.T) {
	t.Parallel()

	t.Run("invalid config is rejected", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Workers = -1
		if _, err := cfg.NewPipeline(nil); !errors.Is(err, ErrInvalidWorkers) {
			t.Errorf("expected ErrInvalidWorkers, got %v", err)
		}
	})

	t.Run("only weighted classifiers run in battery order", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Weights = map[string]float64{
			classifier.SlugThrottle:   1,
			classifier.SlugStatusCode: 3,
		}
		p, err := cfg.NewPipeline(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		slugs := p.ClassifierSlugs()
		if strings.Join(slugs, ",") != "status_code,throttle" {
			t.Errorf("unexpected classifiers %v", slugs)
		}
		w := p.Weights()
		if w[classifier.SlugStatusCode] != 0.75 || w[classifier.SlugThrottle] != 0.25 {
			t.Errorf("unexpected normalized weights %v", w)
		}
	})

	t.Run("default pipeline classifies a censored session", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Parallel = true
		cfg.Workers = 2
		p, err := cfg.NewPipeline(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc := hartest.New().
			Page("page_1", "2018-01-01T00:00:00.000Z").
			Entry("page_1", hartest.Get("http://example.com/").Status(403)).
			JSON()
		got := p.Classify(context.Background(), model.SessionData{URL: "http://example.com/", HAR: doc})
		if !got.IsDown() {
			t.Errorf("expected down, got %s", got.Direction())
		}
	})

	t.Run("batch processor uses the batch size", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.BatchSize = 2
		bp, err := cfg.NewBatchProcessor(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out, err := bp.ProcessBatch(context.Background(), nil)
		if err != nil || len(out) != 0 {
			t.Errorf("expected empty result, got %v, %v", out, err)
		}
	})
}
