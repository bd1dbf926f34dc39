package classifier

import (
	"context"
	"log/slog"
	"math"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
)

// Throttle defaults.
const (
	// DefaultThrottleTime is five minutes in milliseconds.
	DefaultThrottleTime = 5 * 60 * 1000
	// DefaultThrottleBandwidth is in kilobits per second.
	DefaultThrottleBandwidth = 50
	// DefaultThrottleFullConfidenceSize is in bytes.
	DefaultThrottleFullConfidenceSize = 600
)

// Throttle detects pages that loaded so slowly the connection was probably
// being throttled.
type Throttle struct {
	TimeThreshold      int64
	BandwidthThreshold float64
	FullConfidenceSize float64

	logger *slog.Logger
}

// NewThrottle returns a throttle classifier.
func NewThrottle(opts ...Option) *Throttle {
	return &Throttle{
		TimeThreshold:      DefaultThrottleTime,
		BandwidthThreshold: DefaultThrottleBandwidth,
		FullConfidenceSize: DefaultThrottleFullConfidenceSize,
		logger:             newOptions(opts).logger,
	}
}

// Descriptor implements Classifier.
func (c *Throttle) Descriptor() model.Descriptor {
	return descriptor("Throttle", "Detects excessively long load times that might indicate throttling")
}

// PageDownConfidence implements Classifier. Confidence grows linearly with
// the bytes received, reaching 1 at FullConfidenceSize.
func (c *Throttle) PageDownConfidence(_ context.Context, _ *model.Session, page *har.Page) (float64, error) {
	size := page.TotalSize()
	ms := page.LoadTime()
	if ms <= 0 {
		return 0.0, nil
	}
	kbps := (float64(size) * 8 / 1000) / (float64(ms) / 1000)
	c.logger.Debug("throttle", "page", page.ID, "bytes", size, "ms", ms, "kbps", math.Round(kbps*1000)/1000)

	if ms >= c.TimeThreshold && kbps <= c.BandwidthThreshold {
		return math.Min(1.0, float64(size)/c.FullConfidenceSize), nil
	}
	return 0.0, nil
}
