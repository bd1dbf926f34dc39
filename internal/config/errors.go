package config

import (
	"errors"
	"fmt"

	"github.com/nao1215/classifurlr/internal/model"
)

// Configuration validation errors returned by Config.Validate.
// The ones describing an invalid classification setup match
// model.ErrConfiguration.
var (
	// ErrInvalidWorkers is returned when the page worker count is not positive.
	ErrInvalidWorkers = fmt.Errorf("%w: workers must be positive", model.ErrConfiguration)

	// ErrInvalidCacheSize is returned when the body cache size is not positive.
	ErrInvalidCacheSize = fmt.Errorf("%w: cache size must be positive", model.ErrConfiguration)

	// ErrInvalidWeight is returned when a classifier weight is zero or negative.
	ErrInvalidWeight = fmt.Errorf("%w: classifier weights must be positive", model.ErrConfiguration)

	// ErrUnknownFilter is returned when the filter list names a filter that does not exist.
	ErrUnknownFilter = fmt.Errorf("%w: unknown filter", model.ErrConfiguration)

	// ErrDuplicateFilter is returned when a filter is listed twice.
	ErrDuplicateFilter = fmt.Errorf("%w: duplicate filter", model.ErrConfiguration)

	// ErrNoClassifiers is returned when no classifier has a weight.
	ErrNoClassifiers = fmt.Errorf("%w: at least one classifier needs a weight", model.ErrConfiguration)

	// ErrInvalidDownBias is returned when rollup.downBias is below 1.
	ErrInvalidDownBias = fmt.Errorf("%w: down bias must be at least 1", model.ErrConfiguration)

	// ErrInvalidLookBack is returned when rollup.lookBackDays is not positive.
	ErrInvalidLookBack = fmt.Errorf("%w: look back days must be positive", model.ErrConfiguration)

	// ErrInvalidBatchSize is returned when the number of sessions classified
	// concurrently is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidHistoryLimit is returned when the history listing limit is not positive.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be positive")
)
