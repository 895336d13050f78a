package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/canine.report/internal/geometry"
	"github.com/banshee-data/canine.report/internal/keypoints"
	"github.com/banshee-data/canine.report/internal/monitoring"
	"github.com/banshee-data/canine.report/internal/pose"
)

func init() {
	monitoring.SetLogger(nil)
}

// tailFrame returns a frame whose tail points right (0) or down (90).
func tailFrame(down bool) keypoints.Frame {
	end := geometry.Pt(10, 0)
	if down {
		end = geometry.Pt(0, 10)
	}
	return keypoints.Frame{
		{Name: keypoints.TailStart, Point: geometry.Pt(0, 0)},
		{Name: keypoints.TailEnd, Point: end},
	}
}

func fullFrame() keypoints.Frame {
	return keypoints.Frame{
		{Name: keypoints.TailStart, Point: geometry.Pt(0, 0)},
		{Name: keypoints.TailEnd, Point: geometry.Pt(10, 0)},
		{Name: keypoints.LeftEarBase, Point: geometry.Pt(0, 0)},
		{Name: keypoints.LeftEarTip, Point: geometry.Pt(0, -10)},
		{Name: keypoints.RightEarBase, Point: geometry.Pt(0, 0)},
		{Name: keypoints.RightEarTip, Point: geometry.Pt(0, -10)},
		{Name: keypoints.Nose, Point: geometry.Pt(120, 80)},
		{Name: keypoints.Chin, Point: geometry.Pt(100, 100)},
		{Name: keypoints.Withers, Point: geometry.Pt(0, 100)},
		{Name: keypoints.RearLeftKnee, Point: geometry.Pt(100, 110)},
	}
}

func TestProcess_AllRegions(t *testing.T) {
	p := New(10)
	rec, ok := p.Process(fullFrame())
	require.True(t, ok)

	assert.Equal(t, Labels{
		Frame:   0,
		Tail:    "First frame",
		Ears:    "Ears Forward (Alert/Curious)",
		Head:    "Head Up (Confident/Alert)",
		Posture: "Relaxed Posture (Calm)",
	}, rec.Labels())
}

func TestProcess_EmptyFrameResetsStatefulAnalyzers(t *testing.T) {
	p := New(0)
	p.Process(tailFrame(false))

	rec, ok := p.Process(nil)
	require.True(t, ok)
	assert.True(t, rec.Skipped)
	assert.Equal(t, Labels{Frame: 1, Tail: "unknown", Ears: "unknown", Head: "unknown", Posture: "unknown"}, rec.Labels())

	// Without the reset this would compare 90 against 0 and report Wagging.
	rec, _ = p.Process(tailFrame(true))
	assert.Equal(t, "First frame", rec.Labels().Tail)
	assert.Equal(t, 2, rec.Index)
}

func TestProcess_Cutoff(t *testing.T) {
	p := New(2)
	_, ok := p.Process(tailFrame(false))
	assert.True(t, ok)
	_, ok = p.Process(tailFrame(true))
	assert.True(t, ok)
	assert.True(t, p.Done())

	_, ok = p.Process(tailFrame(false))
	assert.False(t, ok)
	assert.Len(t, p.History(), 2)
}

type countingSource struct {
	src  pose.Source
	read int
}

func (c *countingSource) Next(ctx context.Context) (keypoints.Frame, error) {
	c.read++
	return c.src.Next(ctx)
}

func TestRun_StopsAtCutoffWithoutReadingFurther(t *testing.T) {
	frames := make([]keypoints.Frame, 10)
	for i := range frames {
		frames[i] = tailFrame(i%2 == 1)
	}
	src := &countingSource{src: pose.NewSliceSource(frames)}

	p := New(4)
	require.NoError(t, p.Run(context.Background(), src))
	assert.Len(t, p.History(), 4)
	assert.Equal(t, 4, src.read)

	labels := make([]string, 0, 4)
	for _, r := range p.History() {
		labels = append(labels, r.Labels().Tail)
	}
	assert.Equal(t, []string{"First frame", "Wagging", "Wagging", "Wagging"}, labels)
}

func TestRun_ExhaustsShortSource(t *testing.T) {
	p := New(100)
	err := p.Run(context.Background(), pose.NewSliceSource([]keypoints.Frame{tailFrame(false), nil}))
	require.NoError(t, err)
	assert.Len(t, p.History(), 2)
	assert.False(t, p.Done())
}

type failingSource struct{}

func (failingSource) Next(context.Context) (keypoints.Frame, error) {
	return nil, pose.ErrBadFrame
}

func TestRun_PropagatesSourceErrors(t *testing.T) {
	err := New(5).Run(context.Background(), failingSource{})
	assert.ErrorIs(t, err, pose.ErrBadFrame)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestRun_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(5).Run(ctx, pose.NewSliceSource([]keypoints.Frame{tailFrame(false)}))
	assert.ErrorIs(t, err, context.Canceled)
}
