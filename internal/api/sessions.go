package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/banshee-data/canine.report/internal/charts"
	"github.com/banshee-data/canine.report/internal/db"
	"github.com/banshee-data/canine.report/internal/httputil"
	"github.com/banshee-data/canine.report/internal/session"
)

func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "Session storage is not configured")
		return false
	}
	return true
}

// listSessions handles GET /api/sessions, newest first.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !s.requireDB(w) {
		return
	}

	sessions, err := s.db.ListSessions()
	if err != nil {
		httputil.InternalServerError(w, "Failed to retrieve sessions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessions)
}

// handleSessionByID handles GET/DELETE /api/sessions/:id and
// GET /api/sessions/:id/charts/:region
func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/"), "/")
	if parts[0] == "" {
		httputil.BadRequest(w, "Missing session ID")
		return
	}
	if !s.requireDB(w) {
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.getSession(w, id)
		case http.MethodDelete:
			s.deleteSession(w, id)
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 3 && parts[1] == "charts":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.sessionChart(w, id, parts[2])
	default:
		httputil.NotFound(w, "Not found")
	}
}

func (s *Server) getSession(w http.ResponseWriter, id string) {
	sess, err := s.db.GetSession(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "Session not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, "Failed to retrieve session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, id string) {
	err := s.db.DeleteSession(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "Session not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionChart renders the interactive timeline of one region.
func (s *Server) sessionChart(w http.ResponseWriter, id, name string) {
	region, ok := parseRegion(name)
	if !ok {
		httputil.BadRequest(w, "Unknown region: "+name)
		return
	}

	sess, err := s.db.GetSession(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "Session not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, "Failed to retrieve session", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.TimelineHTML(w, frameLabels(sess.Frames, region), region); err != nil {
		httputil.InternalServerError(w, "Failed to render chart", err)
	}
}

func parseRegion(name string) (session.Region, bool) {
	for _, r := range session.Regions {
		if string(r) == name {
			return r, true
		}
	}
	return "", false
}

// frameLabels is the stored label sequence of one region.
func frameLabels(frames []db.Frame, region session.Region) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		switch region {
		case session.RegionTail:
			out[i] = f.Tail
		case session.RegionEars:
			out[i] = f.Ears
		case session.RegionHead:
			out[i] = f.Head
		case session.RegionPosture:
			out[i] = f.Posture
		}
	}
	return out
}
