// Package analysis runs one dog video (as a stream of pose keypoint frames)
// through the behavior pipeline and its collaborators: doctor summary,
// voice, timeline charts and persistence.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/canine.report/internal/charts"
	"github.com/banshee-data/canine.report/internal/config"
	"github.com/banshee-data/canine.report/internal/db"
	"github.com/banshee-data/canine.report/internal/monitoring"
	"github.com/banshee-data/canine.report/internal/pipeline"
	"github.com/banshee-data/canine.report/internal/pose"
	"github.com/banshee-data/canine.report/internal/search"
	"github.com/banshee-data/canine.report/internal/session"
	"github.com/banshee-data/canine.report/internal/timeutil"
)

// Output file names written into a session's output directory.
const (
	FrameDataFile = "per_frame_behavior.json"
	AudioFile     = "ai_doctor_summary.mp3"
)

// Canned texts used when a collaborator cannot produce an answer.
const (
	FallbackSummary   = "As an AI vet, I could not review your dog's behavior right now. Please try again later."
	NoResultsAnswer   = "No relevant internet results found."
	SearchErrorAnswer = "No results found due to error."
)

// Collaborator names used in logs and the failure metric.
const (
	collabLLM    = "llm"
	collabTTS    = "tts"
	collabSearch = "search"
	collabCharts = "charts"
)

// ErrNoSource is returned for a job without a pose source.
var ErrNoSource = errors.New("analysis job has no pose source")

// Summarizer writes the one-line doctor summary of a behavior profile.
type Summarizer interface {
	DoctorSummary(ctx context.Context, profileText string) (string, error)
}

// Answerer answers an owner's question from research text.
type Answerer interface {
	Answer(ctx context.Context, question, research string) (string, error)
}

// Synthesizer speaks text into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, path string) error
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Store persists analysed sessions.
type Store interface {
	SaveSession(s *db.Session) (string, error)
}

// Collaborators are the external services an Analyzer calls. Any of them
// may be nil: a missing summarizer yields FallbackSummary, a missing
// synthesizer skips the audio, a missing searcher or answerer makes Ask
// answer SearchErrorAnswer and a missing store skips persistence.
type Collaborators struct {
	Summarizer  Summarizer
	Answerer    Answerer
	Synthesizer Synthesizer
	Searcher    Searcher
	Store       Store
}

// Job is one video to analyse.
type Job struct {
	VideoFilename  string
	SavedVideoPath string
	Source         pose.Source
	// OutputDir defaults to <output_dir>/<session id>.
	OutputDir string
}

// Result is everything produced for one video.
type Result struct {
	SessionID     string                    `json:"session_id"`
	VideoFilename string                    `json:"video_filename"`
	OutputDir     string                    `json:"output_dir"`
	FrameDataPath string                    `json:"per_frame_json"`
	Profile       session.Profile           `json:"profile"`
	ProfileText   string                    `json:"behavior_profile"`
	DoctorSummary string                    `json:"doctor_summary"`
	Report        session.Report            `json:"emotional_report"`
	AudioPath     string                    `json:"audio_path,omitempty"`
	Graphs        map[session.Region]string `json:"graphs,omitempty"`
	Frames        []pipeline.Labels         `json:"-"`
}

// Analyzer orchestrates analysis sessions. It holds no per-video state and
// is safe for concurrent use; every video gets its own pipeline.
type Analyzer struct {
	cfg    *config.AnalysisConfig
	collab Collaborators
	clock  timeutil.Clock
}

// New returns an Analyzer. A nil cfg uses the built-in defaults.
func New(cfg *config.AnalysisConfig, collab Collaborators) *Analyzer {
	if cfg == nil {
		cfg = config.EmptyAnalysisConfig()
	}
	return &Analyzer{cfg: cfg, collab: collab, clock: timeutil.RealClock{}}
}

// WithClock replaces the clock used for upload dates and durations.
func (a *Analyzer) WithClock(c timeutil.Clock) *Analyzer {
	a.clock = c
	return a
}

// Config returns the analysis configuration in effect.
func (a *Analyzer) Config() *config.AnalysisConfig {
	return a.cfg
}

// AnalyzeVideo runs one job end to end. Collaborator failures degrade the
// result and are logged; pose source, output file and persistence errors
// are returned.
func (a *Analyzer) AnalyzeVideo(ctx context.Context, job Job) (*Result, error) {
	if job.Source == nil {
		return nil, ErrNoSource
	}
	start := a.clock.Now()
	id := uuid.NewString()

	dir := job.OutputDir
	if dir == "" {
		dir = filepath.Join(a.cfg.GetOutputDir(), id)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	monitoring.Sessionf(id, "starting analysis of %q", job.VideoFilename)

	proc := pipeline.New(a.cfg.GetMaxFrames())
	if err := proc.Run(ctx, job.Source); err != nil {
		return nil, fmt.Errorf("failed to read pose frames: %w", err)
	}
	history := session.History(proc.History())

	res := &Result{
		SessionID:     id,
		VideoFilename: job.VideoFilename,
		OutputDir:     dir,
		Frames:        make([]pipeline.Labels, len(history)),
	}
	for i, rec := range history {
		res.Frames[i] = rec.Labels()
	}

	res.FrameDataPath = filepath.Join(dir, FrameDataFile)
	if err := writeFrameData(res.FrameDataPath, res.Frames); err != nil {
		return nil, err
	}
	monitoring.Sessionf(id, "per-frame data saved at %s (%d frames)", res.FrameDataPath, len(res.Frames))

	res.Profile = session.BuildProfile(history)
	res.ProfileText = res.Profile.Text()
	res.Report = session.Analyze(history, a.cfg.GetScoring())
	monitoring.Sessionf(id, "mental health %.2f%%, worry: %s", res.Report.MentalHealth, res.Report.WorryMessage)

	summary, ok := a.doctorSummary(ctx, id, res.ProfileText)
	res.DoctorSummary = summary
	if ok {
		res.AudioPath = a.doctorVoice(ctx, id, res.DoctorSummary, filepath.Join(dir, AudioFile))
	}

	graphs, err := charts.Timelines(history, dir)
	if err != nil {
		monitoring.CollaboratorFailures.WithLabelValues(collabCharts).Inc()
		monitoring.Sessionf(id, "timeline charts failed: %v", err)
	}
	res.Graphs = graphs

	if a.collab.Store != nil {
		if _, err := a.collab.Store.SaveSession(a.sessionRow(id, job, res, start)); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}

	elapsed := a.clock.Since(start)
	monitoring.SessionsAnalyzed.Inc()
	monitoring.AnalysisDuration.Observe(elapsed.Seconds())
	monitoring.Sessionf(id, "analysis finished in %s", elapsed)
	return res, nil
}

// AnalyzeBatch analyses independent jobs concurrently, at most
// batch_concurrency at a time. Results are in job order. The first error
// cancels the jobs still running and is returned.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.GetBatchConcurrency())
	for i, job := range jobs {
		g.Go(func() error {
			res, err := a.AnalyzeVideo(ctx, job)
			if err != nil {
				return fmt.Errorf("%s: %w", job.VideoFilename, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Ask answers an owner's question from a web search. It always returns
// displayable text.
func (a *Analyzer) Ask(ctx context.Context, question string) string {
	if a.collab.Searcher == nil || a.collab.Answerer == nil {
		monitoring.Logf("ask: search or answer collaborator not configured")
		return SearchErrorAnswer
	}

	results, err := a.collab.Searcher.Search(ctx, question)
	if err != nil {
		monitoring.CollaboratorFailures.WithLabelValues(collabSearch).Inc()
		monitoring.Logf("ask: %v", err)
		return SearchErrorAnswer
	}
	if len(results) == 0 {
		return NoResultsAnswer
	}

	answer, err := a.collab.Answerer.Answer(ctx, question, search.ResearchText(results))
	if err != nil {
		monitoring.CollaboratorFailures.WithLabelValues(collabLLM).Inc()
		monitoring.Logf("ask: %v", err)
		return SearchErrorAnswer
	}
	return answer
}

// doctorSummary returns the summary line and whether it came from the
// summarizer.
func (a *Analyzer) doctorSummary(ctx context.Context, id, profileText string) (string, bool) {
	if a.collab.Summarizer == nil {
		return FallbackSummary, false
	}
	line, err := a.collab.Summarizer.DoctorSummary(ctx, profileText)
	if err != nil || line == "" {
		monitoring.CollaboratorFailures.WithLabelValues(collabLLM).Inc()
		monitoring.Sessionf(id, "doctor summary failed, using fallback: %v", err)
		return FallbackSummary, false
	}
	monitoring.Sessionf(id, "AI doctor says: %s", line)
	return line, true
}

// doctorVoice returns the audio path, or "" when no audio was written.
func (a *Analyzer) doctorVoice(ctx context.Context, id, text, path string) string {
	if a.collab.Synthesizer == nil {
		return ""
	}
	if err := a.collab.Synthesizer.Synthesize(ctx, text, path); err != nil {
		monitoring.CollaboratorFailures.WithLabelValues(collabTTS).Inc()
		monitoring.Sessionf(id, "voice summary skipped: %v", err)
		return ""
	}
	monitoring.Sessionf(id, "voice summary saved at %s", path)
	return path
}

func (a *Analyzer) sessionRow(id string, job Job, res *Result, start time.Time) *db.Session {
	row := &db.Session{
		ID:                  id,
		VideoFilename:       job.VideoFilename,
		SavedVideoPath:      job.SavedVideoPath,
		UploadDate:          start,
		TailSummary:         res.Profile.Tail,
		EarSummary:          res.Profile.Ears,
		HeadSummary:         res.Profile.Head,
		PostureSummary:      res.Profile.Posture,
		HappyPercent:        res.Report.HappyPercent,
		SadPercent:          res.Report.SadPercent,
		NeutralPercent:      res.Report.NeutralPercent,
		ActivityPercent:     res.Report.ActivityPercent,
		EnvironmentPercent:  res.Report.EnvironmentPercent,
		MentalHealthPercent: res.Report.MentalHealth,
		ShouldWorry:         res.Report.ShouldWorry,
		WorryMessage:        res.Report.WorryMessage,
		DoctorSummary:       res.DoctorSummary,
		AudioPath:           res.AudioPath,
		FrameCount:          len(res.Frames),
		Frames:              make([]db.Frame, len(res.Frames)),
	}
	if len(res.Graphs) > 0 {
		row.Graphs = make(map[string]string, len(res.Graphs))
		for region, path := range res.Graphs {
			row.Graphs[string(region)] = path
		}
	}
	for i, f := range res.Frames {
		row.Frames[i] = db.Frame{Number: f.Frame, Tail: f.Tail, Ears: f.Ears, Head: f.Head, Posture: f.Posture}
	}
	return row
}

func writeFrameData(path string, frames []pipeline.Labels) error {
	data, err := json.MarshalIndent(frames, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode per-frame data: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write per-frame data: %w", err)
	}
	return nil
}
