package model

import "errors"

// errUnresolved is recorded when Build is called before any Mark call.
var errUnresolved = errors.New("classification was never resolved")

// Builder accumulates the parts of a Classification.
//
// The direction is written exactly once: the first MarkUp, MarkDown or
// MarkInconclusive call wins and later calls are ignored, reporting false.
// MarkBlocked is the only transition allowed after resolution, and it is
// refused for up verdicts because an accessible page is never blocked.
type Builder struct {
	c        Classification
	resolved bool
}

// NewBuilder starts a verdict about subject produced by classifier.
func NewBuilder(subject Subject, classifier Descriptor) *Builder {
	return &Builder{c: Classification{subject: subject, classifier: classifier}}
}

// Constituents attaches child verdicts.
func (b *Builder) Constituents(constituents []*Classification) *Builder {
	b.c.constituents = constituents
	return b
}

// Resolved reports whether a direction has been written.
func (b *Builder) Resolved() bool {
	return b.resolved
}

// Direction returns the direction written so far.
func (b *Builder) Direction() Direction {
	return b.c.direction
}

// MarkUp resolves the verdict as up. Up verdicts are never blocked.
func (b *Builder) MarkUp(confidence float64) bool {
	if b.resolved {
		return false
	}
	b.resolve(DirectionUp)
	b.c.confidence, b.c.hasConfidence = confidence, true
	b.c.blocked = BlockedNo
	return true
}

// MarkDown resolves the verdict as down.
func (b *Builder) MarkDown(confidence float64) bool {
	if b.resolved {
		return false
	}
	b.resolve(DirectionDown)
	b.c.confidence, b.c.hasConfidence = confidence, true
	return true
}

// MarkInconclusive resolves the verdict as inconclusive without a confidence.
func (b *Builder) MarkInconclusive(err error) bool {
	if b.resolved {
		return false
	}
	b.resolve(DirectionInconclusive)
	b.c.err = err
	return true
}

// MarkInconclusiveWithConfidence resolves the verdict as inconclusive and
// records how sure we are that nothing can be concluded.
func (b *Builder) MarkInconclusiveWithConfidence(confidence float64, err error) bool {
	if !b.MarkInconclusive(err) {
		return false
	}
	b.c.confidence, b.c.hasConfidence = confidence, true
	return true
}

// MarkBlocked marks the verdict blocked, turning it down. A confidence
// already written is kept; otherwise it becomes 1.0. It returns false and
// changes nothing when the verdict is up.
func (b *Builder) MarkBlocked() bool {
	if b.c.direction == DirectionUp {
		return false
	}
	b.resolved = true
	b.c.direction = DirectionDown
	b.c.blocked = BlockedYes
	b.c.err = nil
	if !b.c.hasConfidence {
		b.c.confidence, b.c.hasConfidence = 1.0, true
	}
	return true
}

// Build returns the finished Classification. An unresolved builder yields an
// inconclusive verdict.
func (b *Builder) Build() *Classification {
	if !b.resolved {
		b.MarkInconclusive(errUnresolved)
	}
	out := b.c
	return &out
}

func (b *Builder) resolve(d Direction) {
	b.resolved = true
	b.c.direction = d
}
