package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/canine.report/internal/behavior"
	"github.com/banshee-data/canine.report/internal/session"
)

func TestEncodeStates(t *testing.T) {
	codes, states := EncodeStates([]string{"Still", "Wagging", "Still", "unknown", "Wagging"})
	assert.Equal(t, []int{0, 1, 0, 2, 1}, codes)
	assert.Equal(t, []string{"Still", "Wagging", "unknown"}, states)
}

func TestEncodeStates_Empty(t *testing.T) {
	codes, states := EncodeStates(nil)
	assert.Empty(t, codes)
	assert.Empty(t, states)
}

func TestEncodeStates_Stable(t *testing.T) {
	labels := []string{"b", "a", "c", "a"}
	c1, s1 := EncodeStates(labels)
	c2, s2 := EncodeStates(labels)
	assert.Equal(t, c1, c2)
	assert.Equal(t, s1, s2)
}

func TestTimelinePNG(t *testing.T) {
	dir := t.TempDir()
	path, err := TimelinePNG([]string{"Still", "Wagging", "Still"}, session.RegionTail, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tail_timeline.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "expected PNG signature")
}

func TestTimelinePNG_Empty(t *testing.T) {
	path, err := TimelinePNG(nil, session.RegionEars, t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestTimelinePNG_MissingDir(t *testing.T) {
	_, err := TimelinePNG([]string{"x"}, session.RegionHead, filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestTimelineHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TimelineHTML(&buf, []string{"Neutral Ears", "Ears Back (Fear/Submissive)"}, session.RegionEars))

	out := buf.String()
	assert.Contains(t, out, "Ears State Over Time")
	assert.Contains(t, out, "Neutral Ears")
	assert.Contains(t, out, "echarts")
}

func TestTimelines(t *testing.T) {
	dir := t.TempDir()
	h := session.History{
		{Tail: behavior.TailState{Motion: behavior.TailFirstFrame}},
		{Skipped: true},
	}
	paths, err := Timelines(h, dir)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	for _, region := range session.Regions {
		assert.Equal(t, filepath.Join(dir, TimelineFile(region)), paths[region])
		assert.FileExists(t, paths[region])
	}
}
