// Package api is the web surface: upload and analysis, stored sessions,
// timeline charts, owner questions and generated artefacts.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/canine.report/internal/analysis"
	"github.com/banshee-data/canine.report/internal/db"
	"github.com/banshee-data/canine.report/internal/httputil"
	"github.com/banshee-data/canine.report/internal/monitoring"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Request size limits.
const (
	DefaultMaxUploadBytes = 512 << 20
	maxAskBytes           = 16 << 10
	multipartMemory       = 32 << 20
)

type Server struct {
	analyzer   *analysis.Analyzer
	db         *db.DB
	uploadDir  string
	resultsDir string
	maxUpload  int64
}

// NewServer returns a Server that stores uploaded videos under uploadDir
// and serves generated artefacts from the analyzer's output directory.
func NewServer(a *analysis.Analyzer, store *db.DB, uploadDir string) *Server {
	return &Server{
		analyzer:   a,
		db:         store,
		uploadDir:  uploadDir,
		resultsDir: a.Config().GetOutputDir(),
		maxUpload:  DefaultMaxUploadBytes,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/sessions", s.listSessions)
	mux.HandleFunc("/api/sessions/", s.handleSessionByID)
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/results/", s.serveResult)
	mux.HandleFunc("/uploads/", s.serveUpload)
	mux.Handle("/metrics", monitoring.MetricsHandler())
	if s.db != nil {
		s.db.AttachAdminRoutes(mux)
	}
	return mux
}

func methodNotAllowed(w http.ResponseWriter) {
	httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
