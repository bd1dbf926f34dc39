package model

import (
	"strings"
)

// Subject is the thing a Classification is about: a page or a session.
type Subject interface {
	SubjectID() string
}

// Descriptor identifies the classifier that produced a verdict.
type Descriptor struct {
	// Name is the human-readable name, e.g. "Status code".
	Name string

	// Description says what the classifier looks for.
	Description string

	// Version is reported with every verdict the classifier produces.
	Version string
}

// DefaultVersion is the version reported by built-in components.
const DefaultVersion = "0.1"

// Slug returns the lower-cased, underscore-joined name, e.g. "status_code".
func (d Descriptor) Slug() string {
	return strings.ReplaceAll(strings.ToLower(d.Name), " ", "_")
}

// Classification is one node of a verdict tree.
//
// A Classification is immutable. Leaves come from individual classifiers,
// page nodes hold one constituent per classifier, and the session node holds
// one constituent per classified page. Use Builder to create one.
type Classification struct {
	subject       Subject
	classifier    Descriptor
	direction     Direction
	confidence    float64
	hasConfidence bool
	blocked       Blocked
	err           error
	constituents  []*Classification
}

// Subject returns the page or session this verdict is about.
func (c *Classification) Subject() Subject {
	return c.subject
}

// SubjectID returns the subject's identifier, or "" when there is none.
func (c *Classification) SubjectID() string {
	if c.subject == nil {
		return ""
	}
	return c.subject.SubjectID()
}

// Classifier returns the descriptor of the producing classifier.
func (c *Classification) Classifier() Descriptor {
	return c.classifier
}

// Direction returns up, down or inconclusive.
func (c *Classification) Direction() Direction {
	return c.direction
}

// Confidence returns the confidence and whether one was set.
func (c *Classification) Confidence() (float64, bool) {
	return c.confidence, c.hasConfidence
}

// ConfidenceOrZero returns the confidence, or 0 when none was set.
func (c *Classification) ConfidenceOrZero() float64 {
	return c.confidence
}

// Blocked returns the blocked state.
func (c *Classification) Blocked() Blocked {
	return c.blocked
}

// Err returns the diagnostic recorded for an inconclusive verdict.
func (c *Classification) Err() error {
	return c.err
}

// Constituents returns the child verdicts, or nil for a leaf.
// The returned slice must not be modified.
func (c *Classification) Constituents() []*Classification {
	return c.constituents
}

// IsUp reports whether the direction is up.
func (c *Classification) IsUp() bool { return c.direction == DirectionUp }

// IsDown reports whether the direction is down.
func (c *Classification) IsDown() bool { return c.direction == DirectionDown }

// IsInconclusive reports whether the direction is inconclusive.
func (c *Classification) IsInconclusive() bool { return c.direction == DirectionInconclusive }

// IsBlocked reports whether the verdict is definitely blocked.
func (c *Classification) IsBlocked() bool { return c.blocked == BlockedYes }

// ConstituentFrom returns the first constituent produced by the classifier
// with the given slug, or nil.
func (c *Classification) ConstituentFrom(slug string) *Classification {
	for _, child := range c.constituents {
		if child.classifier.Slug() == slug {
			return child
		}
	}
	return nil
}

// WithBlocked returns a copy marked blocked. Blocked verdicts are down; when
// force is set, or no confidence was recorded, the copy's confidence is 1.0.
func (c *Classification) WithBlocked(force bool) *Classification {
	out := *c
	out.blocked = BlockedYes
	out.direction = DirectionDown
	out.err = nil
	if force || !out.hasConfidence {
		out.confidence = 1.0
		out.hasConfidence = true
	}
	return &out
}

// WithConstituents returns a copy holding the given constituents.
func (c *Classification) WithConstituents(constituents []*Classification) *Classification {
	out := *c
	out.constituents = constituents
	return &out
}
