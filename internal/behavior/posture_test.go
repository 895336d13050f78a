package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/canine.report/internal/geometry"
)

func TestPostureAnalyzer_MissingLandmarks(t *testing.T) {
	a := NewPostureAnalyzer()
	state := a.Classify(geometry.Ptr(0, 0), nil)
	assert.Nil(t, state.SpineAngle)
	assert.Equal(t, LabelUnknown, state.Label())
	assert.Nil(t, a.previousWithersY)
}

func TestPostureAnalyzer_SpineTone(t *testing.T) {
	withers := geometry.Ptr(0, 0)
	tests := []struct {
		name string
		knee *geometry.Point
		want string
	}{
		{"relaxed", geometry.Ptr(100, 10), "Relaxed Posture (Calm)"},
		{"stiff", geometry.Ptr(10, 100), "Stiff Posture (Aggressive/Alert)"},
		{"stiff backwards", geometry.Ptr(-10, 100), "Stiff Posture (Aggressive/Alert)"},
		// 45 degrees sits between the thresholds.
		{"in between", geometry.Ptr(50, 50), LabelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPostureAnalyzer().Classify(withers, tt.knee)
			require.NotNil(t, got.SpineAngle)
			assert.Nil(t, got.WithersDelta)
			assert.Equal(t, tt.want, got.Label())
		})
	}
}

func TestPostureAnalyzer_WithersDelta(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
		want  PostureHeight
	}{
		{"exactly threshold", 8.0, HeightSteady},
		{"just over threshold", 8.01, HeightCrouching},
		{"rising exactly threshold", -8.0, HeightSteady},
		{"rising", -12, HeightStandingTall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewPostureAnalyzer()
			a.Classify(geometry.Ptr(0, 100), geometry.Ptr(100, 110))
			got := a.Classify(geometry.Ptr(0, 100+tt.delta), geometry.Ptr(100, 110))
			require.NotNil(t, got.WithersDelta)
			assert.InDelta(t, tt.delta, *got.WithersDelta, 1e-9)
			assert.Equal(t, tt.want, got.Height)
		})
	}
}

func TestPostureAnalyzer_CompositeLabel(t *testing.T) {
	a := NewPostureAnalyzer()
	a.Classify(geometry.Ptr(0, 100), geometry.Ptr(100, 110))
	got := a.Classify(geometry.Ptr(0, 120), geometry.Ptr(100, 130))
	assert.Equal(t, "Crouching (Fear/Submissive) + Relaxed Posture (Calm)", got.Label())
}

func TestPostureAnalyzer_Reset(t *testing.T) {
	a := NewPostureAnalyzer()
	a.Classify(geometry.Ptr(0, 100), geometry.Ptr(100, 110))
	a.Reset()
	got := a.Classify(geometry.Ptr(0, 150), geometry.Ptr(100, 160))
	assert.Nil(t, got.WithersDelta)
	assert.Equal(t, HeightSteady, got.Height)
}
