package model

import (
	"encoding/json"
	"fmt"
)

// Direction is the polarity of a verdict.
type Direction string

// Verdict directions.
const (
	// DirectionUnset is the zero value held by an unresolved builder.
	DirectionUnset Direction = ""
	// DirectionUp means the subject appeared accessible.
	DirectionUp Direction = "up"
	// DirectionDown means the subject appeared inaccessible.
	DirectionDown Direction = "down"
	// DirectionInconclusive means no conclusion could be drawn.
	DirectionInconclusive Direction = "inconclusive"
)

// String returns the wire form of the direction.
func (d Direction) String() string {
	return string(d)
}

// Blocked is a three-valued answer to "was this actively blocked?".
type Blocked int

// Blocked states.
const (
	// BlockedUnknown defers to other signals. It serializes as null.
	BlockedUnknown Blocked = iota
	// BlockedNo means the subject was not blocked.
	BlockedNo
	// BlockedYes means an active block signal was attributed to the subject.
	BlockedYes
)

// BlockedFromBool converts a definite answer.
func BlockedFromBool(b bool) Blocked {
	if b {
		return BlockedYes
	}
	return BlockedNo
}

// String returns "true", "false" or "unknown".
func (b Blocked) String() string {
	switch b {
	case BlockedYes:
		return "true"
	case BlockedNo:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state as true, false or null.
func (b Blocked) MarshalJSON() ([]byte, error) {
	switch b {
	case BlockedYes:
		return []byte("true"), nil
	case BlockedNo:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes true, false or null.
func (b *Blocked) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("blocked: %w", err)
	}
	switch {
	case v == nil:
		*b = BlockedUnknown
	case *v:
		*b = BlockedYes
	default:
		*b = BlockedNo
	}
	return nil
}
