package config

// File represents the structure of the .classifurlr configuration file.
//
//	weights:
//	  status_code: 2
//	  throttle: 0.5
//	disabled: [cosine_similarity]
//	filters: [relevance, inconclusive]
//	rollup:
//	  downBias: 1.5
//	  lookBackDays: 60
//	workers: 8
//	parallel: true
//	cacheSize: 256
type File struct {
	// Weights overrides the weight of individual classifiers by slug.
	Weights map[string]float64 `yaml:"weights,omitempty"`

	// Disabled lists classifier slugs that must not run.
	Disabled []string `yaml:"disabled,omitempty"`

	// Filters replaces the filter chain when present. An empty list
	// disables filtering.
	Filters []string `yaml:"filters"`

	// Rollup holds the session rollup parameters.
	Rollup RollupFile `yaml:"rollup,omitempty"`

	// Workers bounds concurrent page classification.
	Workers int `yaml:"workers,omitempty"`

	// Parallel enables concurrent page classification.
	Parallel *bool `yaml:"parallel,omitempty"`

	// CacheSize is the decoded body cache capacity.
	CacheSize int `yaml:"cacheSize,omitempty"`

	// DBDir overrides the verdict history directory.
	DBDir string `yaml:"dbDir,omitempty"`
}

// RollupFile is the rollup section of the configuration file.
type RollupFile struct {
	DownBias     float64 `yaml:"downBias,omitempty"`
	LookBackDays float64 `yaml:"lookBackDays,omitempty"`
}
