package stage

import (
	"errors"
	"fmt"
	"strings"
)

// Stage is one of the four ordered application-pipeline states.
type Stage string

const (
	Exploring    Stage = "exploring"
	Shortlisting Stage = "shortlisting"
	Applying     Stage = "applying"
	Submitted    Stage = "submitted"
)

// All lists the stages in pipeline order.
var All = []Stage{Exploring, Shortlisting, Applying, Submitted}

// ErrInvalidStage is matched by every InvalidStageError.
var ErrInvalidStage = errors.New("invalid stage")

type InvalidStageError struct {
	Value string
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("invalid stage %q", e.Value)
}

func (e *InvalidStageError) Is(target error) bool { return target == ErrInvalidStage }

// Parse returns the Stage named by s, ignoring case and surrounding whitespace.
func Parse(s string) (Stage, error) {
	st := Stage(strings.ToLower(strings.TrimSpace(s)))
	if _, err := st.Index(); err != nil {
		return "", &InvalidStageError{Value: s}
	}
	return st, nil
}

// Index returns the stage ordinal, 0 for exploring up to 3 for submitted.
func (s Stage) Index() (int, error) {
	for i, st := range All {
		if st == s {
			return i, nil
		}
	}
	return -1, &InvalidStageError{Value: string(s)}
}

func (s Stage) Valid() bool {
	_, err := s.Index()
	return err == nil
}

// Label is the display name, e.g. "Exploring".
func (s Stage) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func (s Stage) String() string { return string(s) }

func (s *Stage) UnmarshalText(text []byte) error {
	st, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ProgressFraction is (index+1)/4; submitted is 1.
func ProgressFraction(s Stage) (float64, error) {
	idx, err := s.Index()
	if err != nil {
		return 0, err
	}
	return float64(idx+1) / float64(len(All)), nil
}

// Direction of a stage transition.
type Direction int

const (
	Unchanged Direction = iota
	Forward
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unchanged"
	}
}

// Transition reports which way the pipeline moves between from and to.
func Transition(from, to Stage) (Direction, error) {
	fi, err := from.Index()
	if err != nil {
		return Unchanged, err
	}
	ti, err := to.Index()
	if err != nil {
		return Unchanged, err
	}
	switch {
	case ti > fi:
		return Forward, nil
	case ti < fi:
		return Backward, nil
	default:
		return Unchanged, nil
	}
}
