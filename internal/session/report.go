package session

import (
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/banshee-data/canine.report/internal/behavior"
	"github.com/banshee-data/canine.report/internal/config"
	"github.com/banshee-data/canine.report/internal/pipeline"
)

// Worry messages.
const (
	WorryMessage   = "Yes, your dog may be stressed or uncomfortable"
	NoWorryMessage = "No immediate concern"
)

// Report is the emotional report of a session. Percentages are of the
// analyzed frames; skipped frames are not counted.
type Report struct {
	HappyPercent       float64 `json:"happy_percent"`
	SadPercent         float64 `json:"sad_percent"`
	NeutralPercent     float64 `json:"neutral_percent"`
	ActivityPercent    float64 `json:"activity_percent"`
	EnvironmentPercent float64 `json:"environment_impact_percent"`
	MentalHealth       float64 `json:"mental_health_percent"`
	ShouldWorry        bool    `json:"should_worry"`
	WorryMessage       string  `json:"worry_message,omitempty"`
	Frames             int     `json:"frames"` // analyzed frames
}

// Empty reports whether the report was built from an empty history.
func (r Report) Empty() bool {
	return r.Frames == 0
}

// Emotion names one co-occurrence rule.
type Emotion int

const (
	EmotionHappy Emotion = iota
	EmotionSad
	EmotionNeutral
	EmotionActive
	EmotionStress
	numEmotions
)

// Emotions returns the rules a frame satisfies. The rules are heuristics
// over the region tags and are not exclusive; a skipped frame satisfies none.
func Emotions(rec pipeline.FrameRecord) []Emotion {
	if rec.Skipped {
		return nil
	}
	tail := rec.Tail.Motion
	earsBack := rec.Ears.Position == behavior.EarsBack
	headDown := rec.Head.Pitch == behavior.PitchDown
	crouching := rec.Posture.Height == behavior.HeightCrouching

	var out []Emotion
	if tail == behavior.TailWagging && rec.Ears.Position == behavior.EarsForward && rec.Head.Pitch == behavior.PitchUp {
		out = append(out, EmotionHappy)
	}
	if tail == behavior.TailStill && (earsBack || headDown) {
		out = append(out, EmotionSad)
	}
	if tail == behavior.TailStill && rec.Ears.Position == behavior.EarsNeutral && rec.Head.Pitch == behavior.PitchNeutral {
		out = append(out, EmotionNeutral)
	}
	if tail == behavior.TailWagging || tail == behavior.TailMovingSlightly || rec.Posture.Height != behavior.HeightSteady {
		out = append(out, EmotionActive)
	}
	if earsBack || headDown || crouching {
		out = append(out, EmotionStress)
	}
	return out
}

// Analyze computes the emotional report of a history with the given
// scoring weights. Skipped frames are left out; a history with no analyzed
// frames yields the zero Report.
func Analyze(h History, sc config.ScoringConfig) Report {
	analyzed := h.Analyzed()
	total := len(analyzed)
	if total == 0 {
		return Report{}
	}

	var counts [numEmotions]int
	for _, rec := range analyzed {
		for _, e := range Emotions(rec) {
			counts[e]++
		}
	}

	pct := func(e Emotion) float64 {
		return scalar.Round(100*float64(counts[e])/float64(total), 2)
	}
	r := Report{
		HappyPercent:       pct(EmotionHappy),
		SadPercent:         pct(EmotionSad),
		NeutralPercent:     pct(EmotionNeutral),
		ActivityPercent:    pct(EmotionActive),
		EnvironmentPercent: pct(EmotionStress),
		Frames:             total,
	}

	score := r.HappyPercent*sc.HappyWeight +
		r.NeutralPercent*sc.NeutralWeight -
		r.SadPercent*sc.SadWeight -
		r.EnvironmentPercent*sc.StressWeight
	r.MentalHealth = clamp(scalar.Round(score, 2), 0, 100)

	r.ShouldWorry = r.SadPercent > sc.SadWorry || r.EnvironmentPercent > sc.StressWorry
	if r.ShouldWorry {
		r.WorryMessage = WorryMessage
	} else {
		r.WorryMessage = NoWorryMessage
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
