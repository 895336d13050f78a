package pose

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/canine.report/internal/geometry"
	"github.com/banshee-data/canine.report/internal/keypoints"
)

func TestJSONLSource(t *testing.T) {
	input := `{"frame": 0, "keypoints": [[1.5, 2.5], [3, 4]]}

{"frame": 1, "keypoints": []}
{"frame": 2}
`
	src := NewJSONLSource(strings.NewReader(input), []keypoints.Landmark{keypoints.Nose, keypoints.Chin})
	ctx := context.Background()

	f, err := src.Next(ctx)
	require.NoError(t, err)
	require.Len(t, f, 2)
	assert.Equal(t, keypoints.Nose, f[0].Name)
	assert.Equal(t, geometry.Pt(1, 2), f[0].Point)

	f, err = src.Next(ctx)
	require.NoError(t, err)
	assert.True(t, f.Empty())

	f, err = src.Next(ctx)
	require.NoError(t, err)
	assert.True(t, f.Empty())

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONLSource_BlankLines(t *testing.T) {
	input := "  \n{\"keypoints\": [[5, 6]]}\n\t \n \n"
	src := NewJSONLSource(strings.NewReader(input), []keypoints.Landmark{keypoints.Nose})
	ctx := context.Background()

	f, err := src.Next(ctx)
	require.NoError(t, err)
	require.Len(t, f, 1)
	assert.Equal(t, geometry.Pt(5, 6), f[0].Point)

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONLSource_BadLine(t *testing.T) {
	src := NewJSONLSource(strings.NewReader("{not json}\n"), nil)
	_, err := src.Next(context.Background())
	assert.True(t, errors.Is(err, ErrBadFrame))
}

func TestJSONLSource_TooManyKeypoints(t *testing.T) {
	src := NewJSONLSource(strings.NewReader(`{"keypoints": [[1,1],[2,2]]}`), []keypoints.Landmark{keypoints.Nose})
	_, err := src.Next(context.Background())
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]keypoints.Frame{nil, {{Name: keypoints.Nose}}})
	ctx := context.Background()

	f, err := src.Next(ctx)
	require.NoError(t, err)
	assert.True(t, f.Empty())

	f, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Len(t, f, 1)

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSliceSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSliceSource([]keypoints.Frame{nil}).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
