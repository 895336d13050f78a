package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/canine.report/internal/analysis"
	"github.com/banshee-data/canine.report/internal/config"
	"github.com/banshee-data/canine.report/internal/httputil"
	"github.com/banshee-data/canine.report/internal/keypoints"
	"github.com/banshee-data/canine.report/internal/pose"
	"github.com/banshee-data/canine.report/internal/security"
	"github.com/banshee-data/canine.report/internal/session"
	"github.com/banshee-data/canine.report/internal/version"
)

// Accepted upload extensions.
var (
	VideoExtensions    = []string{"mp4", "avi", "mov"}
	KeypointExtensions = []string{"jsonl", "json"}
)

type uploadResponse struct {
	*analysis.Result
	FrameDataURL string                    `json:"per_frame_url,omitempty"`
	AudioURL     string                    `json:"audio_url,omitempty"`
	GraphURLs    map[session.Region]string `json:"graph_urls,omitempty"`
	VideoURL     string                    `json:"video_url,omitempty"`
}

// handleUpload handles POST /api/upload. The multipart form carries the
// pose model export in "keypoints" and, optionally, the source video in
// "video" and a comma-separated landmark order in "landmarks". The video is
// analysed synchronously.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.BadRequest(w, "Invalid multipart upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	kpFile, kpHeader, err := r.FormFile("keypoints")
	if err != nil {
		httputil.BadRequest(w, "Missing keypoints file")
		return
	}
	defer kpFile.Close()
	if !security.HasAllowedExtension(kpHeader.Filename, KeypointExtensions...) {
		httputil.BadRequest(w, "Keypoints must be a .jsonl or .json pose export")
		return
	}

	landmarks, err := keypoints.ParseList(r.FormValue("landmarks"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	job := analysis.Job{Source: pose.NewJSONLSource(kpFile, landmarks)}
	job.VideoFilename, _ = security.SanitizeFilename(kpHeader.Filename)

	var videoURL string
	videoFile, videoHeader, err := r.FormFile("video")
	switch {
	case err == nil:
		defer videoFile.Close()
		name, path, err := s.saveVideo(videoFile, videoHeader)
		if err != nil {
			if errors.Is(err, errBadVideo) {
				httputil.BadRequest(w, err.Error())
			} else {
				httputil.InternalServerError(w, "Failed to store video", err)
			}
			return
		}
		job.VideoFilename = name
		job.SavedVideoPath = path
		videoURL = "/uploads/" + name
	case !errors.Is(err, http.ErrMissingFile):
		httputil.BadRequest(w, "Invalid video upload")
		return
	}

	res, err := s.analyzer.AnalyzeVideo(r.Context(), job)
	if errors.Is(err, pose.ErrBadFrame) {
		httputil.BadRequest(w, fmt.Sprintf("Invalid keypoints file: %v", err))
		return
	}
	if err != nil {
		httputil.InternalServerError(w, "Failed to analyze upload", err)
		return
	}

	resp := uploadResponse{
		Result:       res,
		FrameDataURL: s.resultURL(res.FrameDataPath),
		AudioURL:     s.resultURL(res.AudioPath),
		VideoURL:     videoURL,
	}
	if len(res.Graphs) > 0 {
		resp.GraphURLs = make(map[session.Region]string, len(res.Graphs))
		for region, path := range res.Graphs {
			resp.GraphURLs[region] = s.resultURL(path)
		}
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

var errBadVideo = errors.New("video must be an .mp4, .avi or .mov file")

// saveVideo stores an uploaded video under its sanitised name, replacing
// any earlier upload of the same name.
func (s *Server) saveVideo(f multipart.File, h *multipart.FileHeader) (string, string, error) {
	name, err := security.SanitizeFilename(h.Filename)
	if err != nil || !security.HasAllowedExtension(name, VideoExtensions...) {
		return "", "", errBadVideo
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", "", err
	}

	path := filepath.Join(s.uploadDir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(out, f); err != nil {
		out.Close()
		os.Remove(path)
		return "", "", err
	}
	return name, path, out.Close()
}

// resultURL maps a file under the results directory to its /results URL.
func (s *Server) resultURL(path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(s.resultsDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return "/results/" + filepath.ToSlash(rel)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// handleAsk handles POST /api/ask.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req askRequest
	if err := httputil.DecodeJSONBody(w, r, maxAskBytes, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		httputil.BadRequest(w, "Missing question")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, askResponse{Answer: s.analyzer.Ask(r.Context(), req.Question)})
}

type configResponse struct {
	MaxFrames        int                  `json:"max_frames"`
	VoiceID          string               `json:"voice_id"`
	LLMModel         string               `json:"llm_model"`
	OutputDir        string               `json:"output_dir"`
	BatchConcurrency int                  `json:"batch_concurrency"`
	Scoring          config.ScoringConfig `json:"scoring"`
	Build            version.Info         `json:"build"`
}

// showConfig handles GET /api/config with every default resolved.
func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	cfg := s.analyzer.Config()
	httputil.WriteJSON(w, http.StatusOK, configResponse{
		MaxFrames:        cfg.GetMaxFrames(),
		VoiceID:          cfg.GetVoiceID(),
		LLMModel:         cfg.GetLLMModel(),
		OutputDir:        cfg.GetOutputDir(),
		BatchConcurrency: cfg.GetBatchConcurrency(),
		Scoring:          cfg.GetScoring(),
		Build:            version.Current(),
	})
}

// serveResult handles GET /results/<session>/<file>.
func (s *Server) serveResult(w http.ResponseWriter, r *http.Request) {
	s.serveFrom(w, r, s.resultsDir, "/results/")
}

// serveUpload handles GET /uploads/<file>.
func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	s.serveFrom(w, r, s.uploadDir, "/uploads/")
}

func (s *Server) serveFrom(w http.ResponseWriter, r *http.Request, dir, prefix string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w)
		return
	}

	path, err := security.ResolveWithin(dir, strings.TrimPrefix(r.URL.Path, prefix))
	if errors.Is(err, security.ErrPathTraversal) {
		httputil.BadRequest(w, "Invalid path")
		return
	}
	if err != nil {
		httputil.NotFound(w, "File not found")
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		httputil.NotFound(w, "File not found")
		return
	}
	http.ServeFile(w, r, path)
}
