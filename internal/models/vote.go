package models

import "fmt"

// Stance is the local voter's current position on a post.
type Stance int

const (
	StanceNone Stance = iota
	StanceUp
	StanceDown
)

func (s Stance) String() string {
	switch s {
	case StanceUp:
		return "up"
	case StanceDown:
		return "down"
	default:
		return "none"
	}
}

// Encode returns the persisted value: "1" for up, "-1" for down.
// StanceNone has no stored form and encodes to "".
func (s Stance) Encode() string {
	switch s {
	case StanceUp:
		return "1"
	case StanceDown:
		return "-1"
	default:
		return ""
	}
}

// ParseStance decodes a persisted stance value.
func ParseStance(v string) (Stance, error) {
	switch v {
	case "1":
		return StanceUp, nil
	case "-1":
		return StanceDown, nil
	case "", "0":
		return StanceNone, nil
	}
	return StanceNone, fmt.Errorf("models: invalid stance %q", v)
}
