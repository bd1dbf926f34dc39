package pipeline

import (
	"errors"
	"fmt"

	"github.com/nao1215/classifurlr/internal/classifier"
	"github.com/nao1215/classifurlr/internal/model"
)

// Construction errors. All of them match model.ErrConfiguration.
var (
	ErrNoClassifiers       = fmt.Errorf("%w: no classifiers", model.ErrConfiguration)
	ErrNonPositiveWeight   = fmt.Errorf("%w: weights must be positive", model.ErrConfiguration)
	ErrDuplicateClassifier = fmt.Errorf("%w: duplicate classifier", model.ErrConfiguration)
	ErrInvalidRollup       = fmt.Errorf("%w: invalid rollup parameters", model.ErrConfiguration)
	ErrInvalidWorkers      = fmt.Errorf("%w: workers must be positive", model.ErrConfiguration)
	errEmptyDomain         = errors.New("interpolation domain must be wider than a single value")
)

// WeightedClassifier pairs a classifier with its relative weight.
type WeightedClassifier struct {
	Classifier classifier.Classifier
	Weight     float64
}

// Normalize scales weights so they sum to one. Every weight must be
// strictly positive.
func Normalize(weights []float64) ([]float64, error) {
	if len(weights) == 0 {
		return nil, ErrNoClassifiers
	}
	var total float64
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("%w: weight %d is %v", ErrNonPositiveWeight, i, w)
		}
		total += w
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / total
	}
	return out, nil
}

// normalizeClassifiers returns the normalized weight of each classifier
// keyed by slug.
func normalizeClassifiers(classifiers []WeightedClassifier) (map[string]float64, error) {
	raw := make([]float64, len(classifiers))
	for i, wc := range classifiers {
		raw[i] = wc.Weight
	}
	normed, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	weights := make(map[string]float64, len(classifiers))
	for i, wc := range classifiers {
		slug := wc.Classifier.Descriptor().Slug()
		if _, dup := weights[slug]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateClassifier, slug)
		}
		weights[slug] = normed[i]
	}
	return weights, nil
}
