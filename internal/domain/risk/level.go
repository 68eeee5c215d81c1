// Package risk contains the dropout-risk domain: the feature vector,
// the ordinal risk level, the rule-based classifier, the recommendation
// generator, and the assessment aggregate.
package risk

import (
	"encoding/json"
	"fmt"
)

// Level is an ordinal risk classification. The order is total:
// Green < Yellow < Red, and category levels aggregate with MaxLevel
// ("worst of N" semantics).
type Level int

const (
	// LevelGreen - no concern.
	LevelGreen Level = iota + 1
	// LevelYellow - warning, monitor the student.
	LevelYellow
	// LevelRed - critical, intervention needed.
	LevelRed
)

// String returns the lowercase name used on the wire and in storage.
func (l Level) String() string {
	switch l {
	case LevelGreen:
		return "green"
	case LevelYellow:
		return "yellow"
	case LevelRed:
		return "red"
	default:
		return "unknown"
	}
}

// IsValid checks that the level is one of the three defined values.
func (l Level) IsValid() bool {
	return l == LevelGreen || l == LevelYellow || l == LevelRed
}

// AtRisk returns true for Yellow and Red.
func (l Level) AtRisk() bool {
	return l >= LevelYellow
}

// ParseLevel parses a stored level name.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "green":
		return LevelGreen, nil
	case "yellow":
		return LevelYellow, nil
	case "red":
		return LevelRed, nil
	default:
		return 0, fmt.Errorf("unknown risk level %q", s)
	}
}

// MaxLevel returns the worst of the given levels.
// With no arguments it returns LevelGreen.
func MaxLevel(levels ...Level) Level {
	max := LevelGreen
	for _, l := range levels {
		if l > max {
			max = l
		}
	}
	return max
}

// MarshalJSON serializes the level as its string name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON parses the level from its string name.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
