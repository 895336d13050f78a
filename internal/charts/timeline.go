// Package charts renders per-region state timelines: PNG images with
// gonum/plot for the results directory and interactive HTML with go-echarts
// for the web UI.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/canine.report/internal/session"
)

// TimelineFile returns the PNG file name of a region's timeline.
func TimelineFile(region session.Region) string {
	return string(region) + "_timeline.png"
}

// EncodeStates maps each distinct label to an integer in order of first
// appearance. It returns the code of every label and the distinct labels,
// indexed by code.
func EncodeStates(labels []string) ([]int, []string) {
	index := make(map[string]int)
	var states []string
	codes := make([]int, len(labels))
	for i, l := range labels {
		c, ok := index[l]
		if !ok {
			c = len(states)
			index[l] = c
			states = append(states, l)
		}
		codes[i] = c
	}
	return codes, states
}

func title(region session.Region) string {
	r := string(region)
	if r == "" {
		return "State Over Time"
	}
	return strings.ToUpper(r[:1]) + r[1:] + " State Over Time"
}

// TimelinePNG plots the encoded state of every frame and saves it as
// <region>_timeline.png in dir. It returns the written path.
func TimelinePNG(labels []string, region session.Region, dir string) (string, error) {
	codes, _ := EncodeStates(labels)

	p := plot.New()
	p.Title.Text = title(region)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "State Index"

	if len(codes) > 0 {
		pts := make(plotter.XYs, len(codes))
		for i, c := range codes {
			pts[i] = plotter.XY{X: float64(i), Y: float64(c)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", fmt.Errorf("failed to create %s line: %w", region, err)
		}
		line.Width = vg.Points(1)
		line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		p.Add(line)
	}

	path := filepath.Join(dir, TimelineFile(region))
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("failed to save %s timeline: %w", region, err)
	}
	return path, nil
}

// TimelineHTML renders the timeline as an interactive line chart with the
// distinct labels on a categorical y axis.
func TimelineHTML(w io.Writer, labels []string, region session.Region) error {
	codes, states := EncodeStates(labels)

	frames := make([]int, len(codes))
	data := make([]opts.LineData, len(codes))
	for i, c := range codes {
		frames[i] = i
		data[i] = opts.LineData{Value: c, Name: labels[i]}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title(region), Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title(region), Subtitle: fmt.Sprintf("frames=%d states=%d", len(codes), len(states))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "State", Type: "category", Data: states}),
	)
	line.SetXAxis(frames).
		AddSeries(string(region), data, charts.WithLineChartOpts(opts.LineChart{Step: "middle"}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", region, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Timelines writes the PNG timeline of every region into dir and returns
// the written path per region.
func Timelines(h session.History, dir string) (map[session.Region]string, error) {
	paths := make(map[session.Region]string, len(session.Regions))
	for _, region := range session.Regions {
		path, err := TimelinePNG(h.Labels(region), region, dir)
		if err != nil {
			return nil, err
		}
		paths[region] = path
	}
	return paths, nil
}
