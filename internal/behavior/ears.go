package behavior

import (
	"math"

	"github.com/banshee-data/canine.report/internal/geometry"
)

// EarPosition classifies the mean base->tip angle of both ears.
type EarPosition int

const (
	EarsUnknown EarPosition = iota
	EarsForward
	EarsBack
	EarsNeutral
)

// Ear thresholds in degrees.
const (
	EarsForwardBelow  = -20.0 // mean angle < this: forward
	EarsBackAbove     = 40.0  // mean angle > this: back
	EarAsymmetryAbove = 25.0  // |left-right| > this: asymmetric
)

var earLabels = map[EarPosition]string{
	EarsUnknown: LabelUnknown,
	EarsForward: "Ears Forward (Alert/Curious)",
	EarsBack:    "Ears Back (Fear/Submissive)",
	EarsNeutral: "Neutral Ears",
}

const earsAsymmetricPhrase = "Asymmetric (Confused)"

func (p EarPosition) String() string {
	return earLabels[p]
}

// EarState is the ear analysis of one frame.
type EarState struct {
	LeftAngle  *float64
	RightAngle *float64
	Position   EarPosition
	Asymmetric bool
}

// Label renders the state, e.g. "Neutral Ears + Asymmetric (Confused)".
func (s EarState) Label() string {
	if s.Position == EarsUnknown {
		return LabelUnknown
	}
	if s.Asymmetric {
		return s.Position.String() + labelSeparator + earsAsymmetricPhrase
	}
	return s.Position.String()
}

// EarAnalyzer classifies ear carriage. It holds no state.
type EarAnalyzer struct{}

// NewEarAnalyzer returns an EarAnalyzer.
func NewEarAnalyzer() *EarAnalyzer {
	return &EarAnalyzer{}
}

// Classify analyzes one frame. Each side's angle is computed only when both
// of its landmarks are present; classification needs both sides.
func (EarAnalyzer) Classify(leftBase, leftTip, rightBase, rightTip *geometry.Point) EarState {
	var state EarState
	if leftBase != nil && leftTip != nil {
		state.LeftAngle = floatPtr(geometry.Angle(*leftBase, *leftTip))
	}
	if rightBase != nil && rightTip != nil {
		state.RightAngle = floatPtr(geometry.Angle(*rightBase, *rightTip))
	}
	if state.LeftAngle == nil || state.RightAngle == nil {
		return state
	}

	left, right := *state.LeftAngle, *state.RightAngle
	avg := (left + right) / 2
	switch {
	case avg < EarsForwardBelow:
		state.Position = EarsForward
	case avg > EarsBackAbove:
		state.Position = EarsBack
	default:
		state.Position = EarsNeutral
	}
	state.Asymmetric = math.Abs(left-right) > EarAsymmetryAbove
	return state
}
