// Package session aggregates the per-frame records of one video into a
// behavior profile and an emotional report. Both are pure functions of the
// history.
package session

import (
	"fmt"

	"github.com/banshee-data/canine.report/internal/pipeline"
)

// Region names one of the four analyzed body areas.
type Region string

const (
	RegionTail    Region = "tail"
	RegionEars    Region = "ears"
	RegionHead    Region = "head"
	RegionPosture Region = "posture"
)

// Regions lists the regions in presentation order.
var Regions = []Region{RegionTail, RegionEars, RegionHead, RegionPosture}

// History is the ordered record of a session's frames.
type History []pipeline.FrameRecord

// Analyzed returns the records of the frames that were analyzed, dropping
// skipped ones.
func (h History) Analyzed() History {
	out := make(History, 0, len(h))
	for _, rec := range h {
		if !rec.Skipped {
			out = append(out, rec)
		}
	}
	return out
}

// Labels returns the display label of region for every frame, in order.
func (h History) Labels(region Region) []string {
	out := make([]string, 0, len(h))
	for _, rec := range h {
		l := rec.Labels()
		switch region {
		case RegionTail:
			out = append(out, l.Tail)
		case RegionEars:
			out = append(out, l.Ears)
		case RegionHead:
			out = append(out, l.Head)
		case RegionPosture:
			out = append(out, l.Posture)
		}
	}
	return out
}

// Mode returns the most frequent label. Among tied labels the one that
// first appears earliest wins. An empty slice yields pipeline.LabelSkipped.
func Mode(labels []string) string {
	if len(labels) == 0 {
		return pipeline.LabelSkipped
	}
	counts := make(map[string]int, len(labels))
	for _, l := range labels {
		counts[l]++
	}
	best, bestCount := "", 0
	for _, l := range labels {
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	return best
}

// Profile is the most frequent label per region.
type Profile struct {
	Tail    string `json:"tail"`
	Ears    string `json:"ears"`
	Head    string `json:"head"`
	Posture string `json:"posture"`
}

// BuildProfile computes the behavior profile of the analyzed frames of a
// history. With no analyzed frames every region is pipeline.LabelSkipped.
func BuildProfile(h History) Profile {
	h = h.Analyzed()
	return Profile{
		Tail:    Mode(h.Labels(RegionTail)),
		Ears:    Mode(h.Labels(RegionEars)),
		Head:    Mode(h.Labels(RegionHead)),
		Posture: Mode(h.Labels(RegionPosture)),
	}
}

// Get returns the profile label of region.
func (p Profile) Get(region Region) string {
	switch region {
	case RegionTail:
		return p.Tail
	case RegionEars:
		return p.Ears
	case RegionHead:
		return p.Head
	case RegionPosture:
		return p.Posture
	}
	return ""
}

// Text renders the profile as the multi-line prompt text handed to the
// summary generator.
func (p Profile) Text() string {
	return fmt.Sprintf("Tail: %s\nEars: %s\nHead: %s\nPosture: %s", p.Tail, p.Ears, p.Head, p.Posture)
}
