package stage

import "math"

// Indicator states for a progress bar step.
const (
	StepCompleted = "completed"
	StepCurrent   = "current"
	StepUpcoming  = "upcoming"
)

type Step struct {
	Stage Stage  `json:"stage"`
	Label string `json:"label"`
	State string `json:"state"`
}

type ProgressView struct {
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percent"`
	Steps   []Step `json:"steps"`
}

// Progress returns one Step per stage: the ones before s are completed, s is current, the rest upcoming.
func Progress(s Stage) (ProgressView, error) {
	idx, err := s.Index()
	if err != nil {
		return ProgressView{}, err
	}
	frac, _ := ProgressFraction(s)

	steps := make([]Step, 0, len(All))
	for i, st := range All {
		state := StepUpcoming
		switch {
		case i < idx:
			state = StepCompleted
		case i == idx:
			state = StepCurrent
		}
		steps = append(steps, Step{Stage: st, Label: st.Label(), State: state})
	}
	return ProgressView{
		Stage:   s,
		Percent: int(math.Round(frac * 100)),
		Steps:   steps,
	}, nil
}
