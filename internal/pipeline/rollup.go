package pipeline

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
)

// Rollup defaults.
const (
	DefaultDownBias     = 1.5
	DefaultLookBackDays = 60
)

// Rollup holds the session rollup parameters.
type Rollup struct {
	// DownBias multiplies the weight of down pages. It is at least 1,
	// so one down page counts more than one up page.
	DownBias float64

	// LookBackDays is the age, relative to the newest page, at which a
	// page stops counting.
	LookBackDays float64
}

// DefaultRollup returns the default rollup parameters.
func DefaultRollup() Rollup {
	return Rollup{DownBias: DefaultDownBias, LookBackDays: DefaultLookBackDays}
}

// Validate checks the parameters.
func (r Rollup) Validate() error {
	if r.DownBias < 1 || math.IsNaN(r.DownBias) || math.IsInf(r.DownBias, 0) {
		return ErrInvalidRollup
	}
	if r.LookBackDays <= 0 || math.IsNaN(r.LookBackDays) || math.IsInf(r.LookBackDays, 0) {
		return ErrInvalidRollup
	}
	return nil
}

// Tally folds confidences into one, highest confidence first:
//
//	c = c + (1-c) * confidence * weight/maxWeight
//
// weights maps classifier slugs to normalized weights. maxWeight is the
// largest weight among the classifiers present, so the strongest signal
// counts in full. An empty input tallies to zero.
func Tally(cs []*model.Classification, weights map[string]float64) float64 {
	if len(cs) == 0 {
		return 0
	}
	sorted := slices.Clone(cs)
	slices.SortStableFunc(sorted, func(a, b *model.Classification) int {
		return cmp.Compare(b.ConfidenceOrZero(), a.ConfidenceOrZero())
	})

	var maxWeight float64
	for _, c := range sorted {
		maxWeight = max(maxWeight, weights[c.Classifier().Slug()])
	}
	if maxWeight == 0 {
		return 0
	}

	var confidence float64
	for _, c := range sorted {
		w := weights[c.Classifier().Slug()] / maxWeight
		confidence += (1 - confidence) * c.ConfidenceOrZero() * w
	}
	return confidence
}

// RollupPage combines one page's classifier verdicts. Inconclusive verdicts
// are ignored. Any down confidence makes the page down; otherwise the page
// is up with the least certain up confidence.
func RollupPage(page *har.Page, constituents []*model.Classification, weights map[string]float64) *model.Classification {
	b := model.NewBuilder(page, Descriptor()).Constituents(constituents)

	var ups, downs []*model.Classification
	for _, c := range constituents {
		switch c.Direction() {
		case model.DirectionUp:
			ups = append(ups, c)
		case model.DirectionDown:
			downs = append(downs, c)
		}
	}
	if len(ups) == 0 && len(downs) == 0 {
		b.MarkInconclusive(model.NotEnoughData("No conclusive tests"))
		return b.Build()
	}

	if down := Tally(downs, weights); down > 0 {
		b.MarkDown(down)
		return b.Build()
	}
	up := math.Inf(1)
	for _, c := range ups {
		up = math.Min(up, c.ConfidenceOrZero())
	}
	if math.IsInf(up, 1) {
		// Only zero-confidence down verdicts remained.
		up = 0
	}
	b.MarkUp(up)
	return b.Build()
}

// RollupSession averages page verdicts into a session verdict.
//
// Each conclusive page is weighted by its direction (DownBias for down
// pages, 1 for up) and by its age relative to the newest conclusive page,
// decaying linearly to zero over LookBackDays. Inconclusive pages take no
// part in either. Down confidences count negatively;
// a negative weighted sum makes the session down.
func RollupSession(session *model.Session, pages []*model.Classification, r Rollup) *model.Classification {
	b := model.NewBuilder(session, Descriptor()).Constituents(pages)

	var counted []*model.Classification
	var newest time.Time
	for _, c := range pages {
		if c.IsInconclusive() {
			continue
		}
		counted = append(counted, c)
		if t := startedAt(c); t.After(newest) {
			newest = t
		}
	}

	var totalConf, totalWeight float64
	for _, c := range counted {
		w := r.pageWeight(c, newest)
		conf := c.ConfidenceOrZero() * w
		if c.IsDown() {
			conf = -conf
		}
		totalConf += conf
		totalWeight += w
	}

	switch {
	case totalWeight == 0:
		b.MarkInconclusiveWithConfidence(1.0, model.NotEnoughData("No conclusive pages"))
	case totalConf < 0:
		b.MarkDown(-totalConf / totalWeight)
	default:
		b.MarkUp(totalConf / totalWeight)
	}
	return b.Build()
}

func (r Rollup) pageWeight(c *model.Classification, newest time.Time) float64 {
	statusWeight := 1.0
	if !c.IsUp() {
		statusWeight = r.DownBias
	}
	secondsOld := newest.Sub(startedAt(c)).Seconds()
	lookBack := r.LookBackDays * 24 * 60 * 60
	ageWeight, err := Interpolate([2]float64{-lookBack, 0}, [2]float64{0, 1}, -secondsOld)
	if err != nil {
		ageWeight = 1
	}
	return statusWeight * ageWeight
}

func startedAt(c *model.Classification) time.Time {
	if p, ok := c.Subject().(*har.Page); ok {
		return p.StartedAt()
	}
	return time.Time{}
}

// Interpolate maps x linearly from domain onto rng, clamped to rng.
func Interpolate(domain, rng [2]float64, x float64) (float64, error) {
	if domain[1]-domain[0] == 0 {
		return 0, errEmptyDomain
	}
	slope := (rng[1] - rng[0]) / (domain[1] - domain[0])
	intercept := rng[0] - slope*domain[0]
	return math.Min(math.Max(rng[0], x*slope+intercept), rng[1]), nil
}
