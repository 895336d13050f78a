// Package pipeline drives keypoint frames through the four region analyzers
// and collects the per-frame records of one session.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/banshee-data/canine.report/internal/behavior"
	"github.com/banshee-data/canine.report/internal/keypoints"
	"github.com/banshee-data/canine.report/internal/monitoring"
	"github.com/banshee-data/canine.report/internal/pose"
)

// LabelSkipped is recorded for every region of a frame without keypoints.
const LabelSkipped = "unknown"

// FrameRecord is the analysis of one frame.
type FrameRecord struct {
	Index   int
	Skipped bool
	Tail    behavior.TailState
	Ears    behavior.EarState
	Head    behavior.HeadState
	Posture behavior.PostureState
}

// Labels is the presentation form of a FrameRecord.
type Labels struct {
	Frame   int    `json:"frame"`
	Tail    string `json:"tail"`
	Ears    string `json:"ears"`
	Head    string `json:"head"`
	Posture string `json:"posture"`
}

// Labels renders the record's region labels.
func (r FrameRecord) Labels() Labels {
	if r.Skipped {
		return Labels{Frame: r.Index, Tail: LabelSkipped, Ears: LabelSkipped, Head: LabelSkipped, Posture: LabelSkipped}
	}
	return Labels{
		Frame:   r.Index,
		Tail:    r.Tail.Label(),
		Ears:    r.Ears.Label(),
		Head:    r.Head.Label(),
		Posture: r.Posture.Label(),
	}
}

// Processor owns the analyzers of one session. It is not safe for
// concurrent use; give each video its own Processor.
type Processor struct {
	tail    *behavior.TailAnalyzer
	ears    *behavior.EarAnalyzer
	head    *behavior.HeadAnalyzer
	posture *behavior.PostureAnalyzer

	maxFrames int
	records   []FrameRecord
}

// New returns a Processor with fresh analyzers that stops after maxFrames
// frames. maxFrames <= 0 disables the cutoff.
func New(maxFrames int) *Processor {
	return &Processor{
		tail:      behavior.NewTailAnalyzer(),
		ears:      behavior.NewEarAnalyzer(),
		head:      behavior.NewHeadAnalyzer(),
		posture:   behavior.NewPostureAnalyzer(),
		maxFrames: maxFrames,
	}
}

// Done reports whether the frame cutoff has been reached.
func (p *Processor) Done() bool {
	return p.maxFrames > 0 && len(p.records) >= p.maxFrames
}

// Process analyzes the next frame and appends its record. It returns false,
// without touching any analyzer, once the cutoff has been reached.
func (p *Processor) Process(frame keypoints.Frame) (FrameRecord, bool) {
	if p.Done() {
		return FrameRecord{}, false
	}

	rec := FrameRecord{Index: len(p.records)}
	if frame.Empty() {
		p.tail.Reset()
		p.posture.Reset()
		rec.Skipped = true
		monitoring.FramesProcessed.WithLabelValues(monitoring.FrameSkipped).Inc()
	} else {
		s := keypoints.Map(frame)
		rec.Tail = p.tail.Classify(s.TailStart, s.TailEnd)
		rec.Ears = p.ears.Classify(s.LeftEarBase, s.LeftEarTip, s.RightEarBase, s.RightEarTip)
		rec.Head = p.head.Classify(behavior.HeadInput{
			Nose:     s.Nose,
			Chin:     s.Chin,
			LeftEye:  s.LeftEye,
			RightEye: s.RightEye,
			Throat:   s.Throat,
			Withers:  s.Withers,
		})
		rec.Posture = p.posture.Classify(s.Withers, s.RearKnee)
		monitoring.FramesProcessed.WithLabelValues(monitoring.FrameAnalyzed).Inc()
	}

	p.records = append(p.records, rec)
	return rec, true
}

// Run drains src until it is exhausted or the cutoff is reached. Reaching
// the cutoff is not an error. Frames past the cutoff are never read.
func (p *Processor) Run(ctx context.Context, src pose.Source) error {
	for !p.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", len(p.records), err)
		}
		p.Process(frame)
	}
	monitoring.Logf("stopped at frame %d (analysis limit)", len(p.records))
	return nil
}

// History returns the frames processed so far, in order.
func (p *Processor) History() []FrameRecord {
	return p.records
}
