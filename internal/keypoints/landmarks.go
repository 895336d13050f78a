// Package keypoints maps the named landmarks produced by the external pose
// model onto the fixed slots the region analyzers read.
package keypoints

import (
	"fmt"
	"strings"
)

// Landmark is a named anatomical point tracked by the pose model.
type Landmark string

const (
	FrontLeftPaw    Landmark = "front_left_paw"
	FrontLeftKnee   Landmark = "front_left_knee"
	FrontLeftElbow  Landmark = "front_left_elbow"
	RearLeftPaw     Landmark = "rear_left_paw"
	RearLeftKnee    Landmark = "rear_left_knee"
	RearLeftElbow   Landmark = "rear_left_elbow"
	FrontRightPaw   Landmark = "front_right_paw"
	FrontRightKnee  Landmark = "front_right_knee"
	FrontRightElbow Landmark = "front_right_elbow"
	RearRightPaw    Landmark = "rear_right_paw"
	RearRightKnee   Landmark = "rear_right_knee"
	RearRightElbow  Landmark = "rear_right_elbow"
	TailStart       Landmark = "tail_start"
	TailEnd         Landmark = "tail_end"
	LeftEarBase     Landmark = "left_ear_base"
	RightEarBase    Landmark = "right_ear_base"
	Nose            Landmark = "nose"
	Chin            Landmark = "chin"
	LeftEarTip      Landmark = "left_ear_tip"
	RightEarTip     Landmark = "right_ear_tip"
	LeftEye         Landmark = "left_eye"
	RightEye        Landmark = "right_eye"
	Withers         Landmark = "withers"
	Throat          Landmark = "throat"
)

// DefaultLandmarks is the keypoint order emitted by the dog pose model.
// Index i of a model output row is the landmark DefaultLandmarks[i].
var DefaultLandmarks = []Landmark{
	FrontLeftPaw,
	FrontLeftKnee,
	FrontLeftElbow,
	RearLeftPaw,
	RearLeftKnee,
	RearLeftElbow,
	FrontRightPaw,
	FrontRightKnee,
	FrontRightElbow,
	RearRightPaw,
	RearRightKnee,
	RearRightElbow,
	TailStart,
	TailEnd,
	LeftEarBase,
	RightEarBase,
	Nose,
	Chin,
	LeftEarTip,
	RightEarTip,
	LeftEye,
	RightEye,
	Withers,
	Throat,
}

// Known reports whether name belongs to the landmark vocabulary.
func Known(name Landmark) bool {
	for _, l := range DefaultLandmarks {
		if l == name {
			return true
		}
	}
	return false
}

// ParseList parses a comma-separated landmark order, as accepted for pose
// exports that do not follow DefaultLandmarks. An empty string yields nil.
func ParseList(s string) ([]Landmark, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []Landmark
	for _, name := range strings.Split(s, ",") {
		l := Landmark(strings.TrimSpace(name))
		if !Known(l) {
			return nil, fmt.Errorf("unknown landmark %q", l)
		}
		out = append(out, l)
	}
	return out, nil
}
