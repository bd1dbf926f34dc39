package model

import (
	"encoding/json"
	"math"
)

// Record is the serialized form of a Classification.
type Record struct {
	Subject      string    `json:"subject"`
	Status       Direction `json:"status"`
	Blocked      Blocked   `json:"blocked"`
	Confidence   *float64  `json:"confidence"`
	Classifier   string    `json:"classifier"`
	Error        *string   `json:"error"`
	Version      string    `json:"version"`
	Constituents []Record  `json:"constituents,omitempty"`
}

// confidencePrecision is the number of decimals kept in a record.
const confidencePrecision = 1e6

// AsRecord converts the verdict tree into its serializable form.
// A zero confidence is written as null, the same as a missing one.
func (c *Classification) AsRecord() Record {
	r := Record{
		Subject:    c.SubjectID(),
		Status:     c.direction,
		Blocked:    c.blocked,
		Classifier: c.classifier.Slug(),
		Version:    c.classifier.Version,
	}
	if c.hasConfidence && c.confidence != 0 {
		rounded := math.Round(c.confidence*confidencePrecision) / confidencePrecision
		r.Confidence = &rounded
	}
	if c.err != nil {
		msg := c.err.Error()
		r.Error = &msg
	}
	if c.constituents != nil {
		r.Constituents = make([]Record, 0, len(c.constituents))
		for _, child := range c.constituents {
			r.Constituents = append(r.Constituents, child.AsRecord())
		}
	}
	return r
}

// AsJSON returns the record as indented JSON.
func (c *Classification) AsJSON() ([]byte, error) {
	return json.MarshalIndent(c.AsRecord(), "", "  ")
}

// ConfidenceOrZero returns the record's confidence, or 0 when it is null.
func (r Record) ConfidenceOrZero() float64 {
	if r.Confidence == nil {
		return 0
	}
	return *r.Confidence
}

// IsBlocked reports whether the record is definitely blocked.
func (r Record) IsBlocked() bool {
	return r.Blocked == BlockedYes
}
