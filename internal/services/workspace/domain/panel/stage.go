package panel

import (
	"fmt"
	"strings"
)

// Stage is a campaign lifecycle phase.
type Stage string

const (
	StagePrep  Stage = "prep"
	StageLive  Stage = "live"
	StageRecap Stage = "recap"
)

var stages = []Stage{StagePrep, StageLive, StageRecap}

// Stages returns every stage in lifecycle order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// ParseStage parses a stage name, ignoring case and surrounding space.
func ParseStage(value string) (Stage, error) {
	trimmed := Stage(strings.ToLower(strings.TrimSpace(value)))
	for _, stage := range stages {
		if stage == trimmed {
			return stage, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", value)
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	parsed, err := ParseStage(string(s))
	return err == nil && parsed == s
}

func (s Stage) String() string {
	return string(s)
}
