package behavior

import (
	"math"

	"github.com/banshee-data/canine.report/internal/geometry"
)

// HeadPitch classifies the chin->nose direction relative to vertical.
type HeadPitch int

const (
	PitchUnknown HeadPitch = iota
	PitchDown
	PitchUp
	PitchNeutral
)

// HeadGaze classifies the throat->nose direction.
type HeadGaze int

const (
	GazeNone HeadGaze = iota
	GazeRight
	GazeLeft
)

// Head thresholds in degrees.
const (
	HeadPitchLimit = 15.0 // |up_down| beyond this: head up or down
	HeadGazeLimit  = 20.0 // |left_right| beyond this: looking to a side
	HeadTiltLimit  = 15.0 // |tilt| beyond this: tilted
)

const headTiltedPhrase = "Head Tilted (Curious)"

var pitchLabels = map[HeadPitch]string{
	PitchDown:    "Head Down (Submissive/Sad)",
	PitchUp:      "Head Up (Confident/Alert)",
	PitchNeutral: "Head Neutral",
}

var gazeLabels = map[HeadGaze]string{
	GazeRight: "Looking Right",
	GazeLeft:  "Looking Left",
}

// HeadInput carries the landmarks available to the head analyzer. Withers
// is accepted alongside the head landmarks but no current rule reads it.
type HeadInput struct {
	Nose     *geometry.Point
	Chin     *geometry.Point
	LeftEye  *geometry.Point
	RightEye *geometry.Point
	Throat   *geometry.Point
	Withers  *geometry.Point
}

// HeadState is the head analysis of one frame. Each angle is nil when its
// landmark pair was incomplete.
type HeadState struct {
	UpDown    *float64
	LeftRight *float64
	Tilt      *float64
	Pitch     HeadPitch
	Gaze      HeadGaze
	Tilted    bool
}

// Label joins the applicable phrases in pitch, gaze, tilt order.
func (s HeadState) Label() string {
	var parts []string
	if s.Pitch != PitchUnknown {
		parts = append(parts, pitchLabels[s.Pitch])
	}
	if s.Gaze != GazeNone {
		parts = append(parts, gazeLabels[s.Gaze])
	}
	if s.Tilted {
		parts = append(parts, headTiltedPhrase)
	}
	return joinPhrases(parts)
}

// HeadAnalyzer classifies head orientation and tilt. It holds no state.
type HeadAnalyzer struct{}

// NewHeadAnalyzer returns a HeadAnalyzer.
func NewHeadAnalyzer() *HeadAnalyzer {
	return &HeadAnalyzer{}
}

// Classify analyzes one frame. The three angles are computed independently.
func (HeadAnalyzer) Classify(in HeadInput) HeadState {
	var state HeadState

	if in.Chin != nil && in.Nose != nil {
		// Angle from vertical: 0 is straight up in image space.
		v := geometry.Vector(*in.Chin, *in.Nose)
		upDown := geometry.Degrees(math.Atan2(v.X, -v.Y))
		state.UpDown = floatPtr(upDown)
		switch {
		case upDown < -HeadPitchLimit:
			state.Pitch = PitchDown
		case upDown > HeadPitchLimit:
			state.Pitch = PitchUp
		default:
			state.Pitch = PitchNeutral
		}
	}

	if in.Throat != nil && in.Nose != nil {
		leftRight := geometry.Angle(*in.Throat, *in.Nose)
		state.LeftRight = floatPtr(leftRight)
		switch {
		case leftRight > HeadGazeLimit:
			state.Gaze = GazeRight
		case leftRight < -HeadGazeLimit:
			state.Gaze = GazeLeft
		}
	}

	if in.LeftEye != nil && in.RightEye != nil {
		tilt := geometry.Angle(*in.LeftEye, *in.RightEye)
		state.Tilt = floatPtr(tilt)
		state.Tilted = math.Abs(tilt) > HeadTiltLimit
	}

	return state
}
