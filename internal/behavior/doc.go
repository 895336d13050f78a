// Package behavior contains the per-frame region analyzers: tail, ears,
// head and posture.
//
// Each analyzer turns a handful of optional landmarks into a small tag
// record (angles plus enumerated classifications). The display label is
// rendered from the tags by Label() and is only meant for presentation,
// persistence and the behavior profile.
//
// TailAnalyzer and PostureAnalyzer carry memory from the previous frame and
// must be Reset whenever a frame has no keypoints. Analyzer instances belong
// to a single session; construct fresh ones for every video.
package behavior

import "strings"

// LabelUnknown is the label of a region whose geometry was insufficient.
const LabelUnknown = "Unknown"

// labelSeparator joins the phrases of composite labels.
const labelSeparator = " + "

func joinPhrases(parts []string) string {
	if len(parts) == 0 {
		return LabelUnknown
	}
	return strings.Join(parts, labelSeparator)
}

func floatPtr(v float64) *float64 {
	return &v
}
