// Package testutil provides shared test fixtures: keypoint frames, pose
// model exports, throwaway databases and HTTP helpers.
package testutil

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/canine.report/internal/db"
	"github.com/banshee-data/canine.report/internal/geometry"
	"github.com/banshee-data/canine.report/internal/keypoints"
	"github.com/banshee-data/canine.report/internal/monitoring"
)

// TailBase is where fixture tails start.
var TailBase = geometry.Pt(100, 100)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// NewTestRequest creates a test HTTP request with no body.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// MuteLogs silences the monitoring logger for the duration of the test.
func MuteLogs(t *testing.T) {
	t.Helper()
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })
}

// NewTestDB creates a migrated database in a temporary directory.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.NewDB(filepath.Join(t.TempDir(), "canine.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// TailFrame returns a frame holding only the two tail landmarks, with the
// tail running from TailBase to (TailBase + (dx, dy)).
func TailFrame(dx, dy float64) keypoints.Frame {
	return keypoints.Frame{
		{Name: keypoints.TailStart, Point: TailBase},
		{Name: keypoints.TailEnd, Point: geometry.Pt(TailBase.X+dx, TailBase.Y+dy)},
	}
}

// WaggingTail returns n tail frames swinging through 90 degrees on every
// frame: the first classifies as "First frame" and the rest as "Wagging".
func WaggingTail(n int) []keypoints.Frame {
	frames := make([]keypoints.Frame, n)
	for i := range frames {
		if i%2 == 0 {
			frames[i] = TailFrame(40, 0)
		} else {
			frames[i] = TailFrame(0, 40)
		}
	}
	return frames
}

// TailRow returns a full model output row, positional against
// keypoints.DefaultLandmarks, in which only the tail is placed away from
// the origin.
func TailRow(dx, dy float64) [][2]float64 {
	row := make([][2]float64, len(keypoints.DefaultLandmarks))
	for i, name := range keypoints.DefaultLandmarks {
		switch name {
		case keypoints.TailStart:
			row[i] = [2]float64{TailBase.X, TailBase.Y}
		case keypoints.TailEnd:
			row[i] = [2]float64{TailBase.X + dx, TailBase.Y + dy}
		}
	}
	return row
}

// PoseExport renders rows as the pose model's JSONL export. A nil row is a
// frame without a detection.
func PoseExport(rows ...[][2]float64) string {
	var b strings.Builder
	for i, row := range rows {
		line, err := json.Marshal(struct {
			Frame     int          `json:"frame"`
			Keypoints [][2]float64 `json:"keypoints"`
		}{i, row})
		if err != nil {
			panic(err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}
