package behavior

import (
	"math"

	"github.com/banshee-data/canine.report/internal/geometry"
)

// TailMotion classifies the change in tail angle between consecutive frames.
type TailMotion int

const (
	// TailUnclassified means the tail landmarks were missing.
	TailUnclassified TailMotion = iota
	// TailFirstFrame is the first measurement after a reset.
	TailFirstFrame
	TailStill
	TailMovingSlightly
	TailWagging
)

// Tail intensity thresholds in degrees of change per frame (strict >).
const (
	WagIntensityMin = 20.0
	SlightMotionMin = 5.0
)

var tailLabels = map[TailMotion]string{
	TailUnclassified:   "",
	TailFirstFrame:     "First frame",
	TailStill:          "Still",
	TailMovingSlightly: "Moving slightly",
	TailWagging:        "Wagging",
}

// String returns the display label for the motion.
func (m TailMotion) String() string {
	return tailLabels[m]
}

// TailState is the tail analysis of one frame.
type TailState struct {
	Angle     *float64
	Intensity *float64
	Motion    TailMotion
}

// Label renders the state. An unclassified tail renders as the empty string.
func (s TailState) Label() string {
	return s.Motion.String()
}

// TailAnalyzer classifies wag intensity from the tail start->end angle,
// remembering the angle seen on the previous classified frame.
type TailAnalyzer struct {
	previousAngle *float64
}

// NewTailAnalyzer returns an analyzer with no carried state.
func NewTailAnalyzer() *TailAnalyzer {
	return &TailAnalyzer{}
}

// Classify analyzes one frame. Missing landmarks leave the carried angle
// untouched.
func (a *TailAnalyzer) Classify(start, end *geometry.Point) TailState {
	if start == nil || end == nil {
		return TailState{Motion: TailUnclassified}
	}

	return a.classifyAngle(geometry.Angle(*start, *end))
}

func (a *TailAnalyzer) classifyAngle(angle float64) TailState {
	state := TailState{Angle: floatPtr(angle)}

	if a.previousAngle == nil {
		state.Motion = TailFirstFrame
	} else {
		intensity := math.Abs(angle - *a.previousAngle)
		state.Intensity = floatPtr(intensity)
		switch {
		case intensity > WagIntensityMin:
			state.Motion = TailWagging
		case intensity > SlightMotionMin:
			state.Motion = TailMovingSlightly
		default:
			state.Motion = TailStill
		}
	}

	a.previousAngle = floatPtr(angle)
	return state
}

// Reset forgets the previous angle so the next classified frame is treated
// as the first one.
func (a *TailAnalyzer) Reset() {
	a.previousAngle = nil
}
