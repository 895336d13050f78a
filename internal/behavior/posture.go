package behavior

import (
	"math"

	"github.com/banshee-data/canine.report/internal/geometry"
)

// PostureHeight classifies the frame-to-frame change in withers height.
type PostureHeight int

const (
	HeightSteady PostureHeight = iota
	HeightCrouching
	HeightStandingTall
)

// PostureTone classifies the withers->rear knee spine angle.
type PostureTone int

const (
	ToneNone PostureTone = iota
	ToneStiff
	ToneRelaxed
)

// Posture thresholds. Withers deltas are in pixels (positive is downwards),
// spine angles in degrees.
const (
	CrouchDeltaMin  = 8.0  // delta > this: crouching
	StiffSpineMin   = 50.0 // |spine| > this: stiff
	RelaxedSpineMax = 20.0 // |spine| < this: relaxed
)

var heightLabels = map[PostureHeight]string{
	HeightCrouching:    "Crouching (Fear/Submissive)",
	HeightStandingTall: "Standing Tall (Confident)",
}

var toneLabels = map[PostureTone]string{
	ToneStiff:   "Stiff Posture (Aggressive/Alert)",
	ToneRelaxed: "Relaxed Posture (Calm)",
}

// PostureState is the posture analysis of one frame.
type PostureState struct {
	SpineAngle   *float64
	WithersDelta *float64
	Height       PostureHeight
	Tone         PostureTone
}

// Label joins the height and tone phrases that apply.
func (s PostureState) Label() string {
	var parts []string
	if s.Height != HeightSteady {
		parts = append(parts, heightLabels[s.Height])
	}
	if s.Tone != ToneNone {
		parts = append(parts, toneLabels[s.Tone])
	}
	return joinPhrases(parts)
}

// PostureAnalyzer classifies spine posture and remembers the withers height
// of the previous classified frame.
type PostureAnalyzer struct {
	previousWithersY *float64
}

// NewPostureAnalyzer returns an analyzer with no carried state.
func NewPostureAnalyzer() *PostureAnalyzer {
	return &PostureAnalyzer{}
}

// Classify analyzes one frame. Both landmarks are required; otherwise the
// state is empty and the carried height is left untouched.
func (a *PostureAnalyzer) Classify(withers, rearKnee *geometry.Point) PostureState {
	var state PostureState
	if withers == nil || rearKnee == nil {
		return state
	}

	spine := geometry.Angle(*withers, *rearKnee)
	state.SpineAngle = floatPtr(spine)

	if a.previousWithersY != nil {
		delta := withers.Y - *a.previousWithersY
		state.WithersDelta = floatPtr(delta)
		switch {
		case delta > CrouchDeltaMin:
			state.Height = HeightCrouching
		case delta < -CrouchDeltaMin:
			state.Height = HeightStandingTall
		}
	}
	a.previousWithersY = floatPtr(withers.Y)

	switch abs := math.Abs(spine); {
	case abs > StiffSpineMin:
		state.Tone = ToneStiff
	case abs < RelaxedSpineMax:
		state.Tone = ToneRelaxed
	}

	return state
}

// Reset forgets the previous withers height.
func (a *PostureAnalyzer) Reset() {
	a.previousWithersY = nil
}
