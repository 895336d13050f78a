package keypoints

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/canine.report/internal/geometry"
)

func TestFromArray(t *testing.T) {
	frame, err := FromArray([]Landmark{Nose, Chin, Withers}, [][2]float64{{10.9, 20.2}, {-3.7, 4}})
	require.NoError(t, err)

	want := Frame{
		{Name: Nose, Point: geometry.Pt(10, 20)},
		{Name: Chin, Point: geometry.Pt(-3, 4)},
	}
	if diff := cmp.Diff(want, frame); diff != "" {
		t.Errorf("FromArray mismatch (-want +got):\n%s", diff)
	}
}

func TestFromArray_TooManyPoints(t *testing.T) {
	_, err := FromArray([]Landmark{Nose}, [][2]float64{{1, 1}, {2, 2}})
	assert.Error(t, err)
}

func TestMap(t *testing.T) {
	xy := make([][2]float64, len(DefaultLandmarks))
	for i := range xy {
		xy[i] = [2]float64{float64(i), float64(i * 10)}
	}
	frame, err := FromArray(DefaultLandmarks, xy)
	require.NoError(t, err)

	s := Map(frame)
	require.NotNil(t, s.TailStart)
	assert.Equal(t, geometry.Pt(12, 120), *s.TailStart)
	require.NotNil(t, s.Throat)
	assert.Equal(t, geometry.Pt(23, 230), *s.Throat)
	require.NotNil(t, s.LeftEarTip)
	assert.Equal(t, geometry.Pt(18, 180), *s.LeftEarTip)

	// rear_right_knee (index 10) comes after rear_left_knee (index 4).
	require.NotNil(t, s.RearKnee)
	assert.Equal(t, geometry.Pt(10, 100), *s.RearKnee)
}

func TestMap_RearKneeLastWriteWins(t *testing.T) {
	s := Map(Frame{
		{Name: RearRightKnee, Point: geometry.Pt(1, 1)},
		{Name: RearLeftKnee, Point: geometry.Pt(2, 2)},
	})
	require.NotNil(t, s.RearKnee)
	assert.Equal(t, geometry.Pt(2, 2), *s.RearKnee)
}

func TestMap_IgnoresUnknownAndUnusedNames(t *testing.T) {
	s := Map(Frame{
		{Name: "antenna", Point: geometry.Pt(1, 1)},
		{Name: FrontLeftPaw, Point: geometry.Pt(2, 2)},
	})
	assert.Equal(t, Skeleton{}, s)
}

func TestMap_SlotsDoNotAlias(t *testing.T) {
	s := Map(Frame{
		{Name: Nose, Point: geometry.Pt(1, 1)},
		{Name: Chin, Point: geometry.Pt(2, 2)},
	})
	require.NotNil(t, s.Nose)
	require.NotNil(t, s.Chin)
	assert.NotEqual(t, *s.Nose, *s.Chin)
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(Withers))
	assert.False(t, Known("antenna"))
	assert.Len(t, DefaultLandmarks, 24)
}

func TestParseList(t *testing.T) {
	got, err := ParseList(" tail_start, tail_end ,withers")
	require.NoError(t, err)
	assert.Equal(t, []Landmark{TailStart, TailEnd, Withers}, got)

	got, err = ParseList("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseList("tail_start,wing")
	assert.ErrorContains(t, err, `"wing"`)
}

func TestFrameEmpty(t *testing.T) {
	assert.True(t, Frame(nil).Empty())
	assert.False(t, Frame{{Name: Nose}}.Empty())
}
