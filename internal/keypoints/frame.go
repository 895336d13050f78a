package keypoints

import (
	"fmt"
	"math"

	"github.com/banshee-data/canine.report/internal/geometry"
)

// Named is one detected landmark.
type Named struct {
	Name  Landmark
	Point geometry.Point
}

// Frame is the set of landmarks detected in one video frame, in model
// output order. An empty frame means nothing was detected.
type Frame []Named

// Empty reports whether the frame carries no keypoints.
func (f Frame) Empty() bool {
	return len(f) == 0
}

// FromArray builds a frame from a positional model output row, pairing
// xy[i] with names[i]. Coordinates are truncated to whole pixels.
func FromArray(names []Landmark, xy [][2]float64) (Frame, error) {
	if len(xy) > len(names) {
		return nil, fmt.Errorf("frame has %d keypoints but only %d landmark names", len(xy), len(names))
	}
	frame := make(Frame, 0, len(xy))
	for i, p := range xy {
		frame = append(frame, Named{
			Name:  names[i],
			Point: geometry.Pt(math.Trunc(p[0]), math.Trunc(p[1])),
		})
	}
	return frame, nil
}

// Skeleton holds one optional point per landmark slot read by the
// analyzers.
type Skeleton struct {
	TailStart    *geometry.Point
	TailEnd      *geometry.Point
	LeftEarBase  *geometry.Point
	LeftEarTip   *geometry.Point
	RightEarBase *geometry.Point
	RightEarTip  *geometry.Point
	Nose         *geometry.Point
	Chin         *geometry.Point
	LeftEye      *geometry.Point
	RightEye     *geometry.Point
	Throat       *geometry.Point
	Withers      *geometry.Point
	// RearKnee is whichever rear knee appears last in the frame.
	RearKnee *geometry.Point
}

// Map fills a Skeleton from the frame in a single pass. Landmarks no
// analyzer reads are ignored; a repeated name keeps its last position.
func Map(frame Frame) Skeleton {
	var s Skeleton
	for _, kp := range frame {
		p := kp.Point
		switch kp.Name {
		case TailStart:
			s.TailStart = &p
		case TailEnd:
			s.TailEnd = &p
		case LeftEarBase:
			s.LeftEarBase = &p
		case LeftEarTip:
			s.LeftEarTip = &p
		case RightEarBase:
			s.RightEarBase = &p
		case RightEarTip:
			s.RightEarTip = &p
		case Nose:
			s.Nose = &p
		case Chin:
			s.Chin = &p
		case LeftEye:
			s.LeftEye = &p
		case RightEye:
			s.RightEye = &p
		case Throat:
			s.Throat = &p
		case Withers:
			s.Withers = &p
		case RearLeftKnee, RearRightKnee:
			s.RearKnee = &p
		}
	}
	return s
}
