// Package pose reads per-frame keypoints produced by the external pose
// estimation model. The model itself runs out of process; this package only
// consumes what it exports.
package pose

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/banshee-data/canine.report/internal/keypoints"
)

// ErrBadFrame is returned for a record that cannot be decoded into a frame.
var ErrBadFrame = errors.New("malformed pose frame")

// Source yields keypoint frames in video order. Next returns io.EOF after
// the last frame.
type Source interface {
	Next(ctx context.Context) (keypoints.Frame, error)
}

// SliceSource serves frames from memory.
type SliceSource struct {
	frames []keypoints.Frame
	pos    int
}

// NewSliceSource returns a Source over frames.
func NewSliceSource(frames []keypoints.Frame) *SliceSource {
	return &SliceSource{frames: frames}
}

// Next implements Source.
func (s *SliceSource) Next(ctx context.Context) (keypoints.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// record is one line of the pose model export.
type record struct {
	Frame     int          `json:"frame"`
	Keypoints [][2]float64 `json:"keypoints"`
}

// JSONLSource decodes the pose model export: one JSON object per line,
// {"frame": n, "keypoints": [[x, y], ...]}, with keypoints positional
// against the landmark list. A frame with no detection carries an empty or
// missing keypoints array.
type JSONLSource struct {
	scanner   *bufio.Scanner
	landmarks []keypoints.Landmark
	line      int
}

// NewJSONLSource reads frames from r. A nil landmarks slice selects
// keypoints.DefaultLandmarks.
func NewJSONLSource(r io.Reader, landmarks []keypoints.Landmark) *JSONLSource {
	if landmarks == nil {
		landmarks = keypoints.DefaultLandmarks
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &JSONLSource{scanner: sc, landmarks: landmarks}
}

// Next implements Source. Blank lines are skipped.
func (s *JSONLSource) Next(ctx context.Context) (keypoints.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("read pose export: %w", err)
			}
			return nil, io.EOF
		}
		s.line++
		data := s.scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadFrame, s.line, err)
		}
		frame, err := keypoints.FromArray(s.landmarks, rec.Keypoints)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadFrame, s.line, err)
		}
		return frame, nil
	}
}
