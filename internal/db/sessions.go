package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeFormat sorts lexically in chronological order for UTC values.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// Session is the persisted summary of one analysed video.
type Session struct {
	ID             string    `json:"session_id"`
	VideoFilename  string    `json:"video_filename"`
	SavedVideoPath string    `json:"saved_video_path,omitempty"`
	UploadDate     time.Time `json:"upload_date"`

	TailSummary    string `json:"tail_summary"`
	EarSummary     string `json:"ear_summary"`
	HeadSummary    string `json:"head_summary"`
	PostureSummary string `json:"posture_summary"`

	HappyPercent        float64 `json:"happy_percent"`
	SadPercent          float64 `json:"sad_percent"`
	NeutralPercent      float64 `json:"neutral_percent"`
	ActivityPercent     float64 `json:"activity_percent"`
	EnvironmentPercent  float64 `json:"environment_impact_percent"`
	MentalHealthPercent float64 `json:"mental_health_percent"`
	ShouldWorry         bool    `json:"should_worry"`
	WorryMessage        string  `json:"worry_message"`

	DoctorSummary string            `json:"doctor_summary"`
	AudioPath     string            `json:"audio_path,omitempty"`
	Graphs        map[string]string `json:"graphs,omitempty"`
	FrameCount    int               `json:"frames"`

	// Frames is only populated by GetSession.
	Frames []Frame `json:"frame_data,omitempty"`
}

// Frame is the persisted label set of one frame.
type Frame struct {
	Number  int    `json:"frame_number"`
	Tail    string `json:"tail_state"`
	Ears    string `json:"ear_state"`
	Head    string `json:"head_state"`
	Posture string `json:"posture_state"`
}

// SaveSession stores s and its frames in one transaction. An empty ID is
// replaced by a new UUID and a zero UploadDate by the current time; the
// stored ID is returned.
func (db *DB) SaveSession(s *Session) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.UploadDate.IsZero() {
		s.UploadDate = time.Now()
	}
	s.UploadDate = s.UploadDate.UTC()

	graphs, err := json.Marshal(s.Graphs)
	if err != nil {
		return "", fmt.Errorf("failed to encode graphs: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sessions (
			session_id, video_filename, saved_video_path, upload_date,
			tail_summary, ear_summary, head_summary, posture_summary,
			happy_percent, sad_percent, neutral_percent, activity_percent,
			environment_percent, mental_health_percent, should_worry, worry_message,
			doctor_summary, audio_path, graphs_path, frames
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.VideoFilename, s.SavedVideoPath, s.UploadDate.Format(timeFormat),
		s.TailSummary, s.EarSummary, s.HeadSummary, s.PostureSummary,
		s.HappyPercent, s.SadPercent, s.NeutralPercent, s.ActivityPercent,
		s.EnvironmentPercent, s.MentalHealthPercent, s.ShouldWorry, s.WorryMessage,
		s.DoctorSummary, s.AudioPath, string(graphs), s.FrameCount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO frame_analysis (session_id, frame_number, tail_state, ear_state, head_state, posture_state)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range s.Frames {
		if _, err := stmt.Exec(s.ID, f.Number, f.Tail, f.Ears, f.Head, f.Posture); err != nil {
			return "", fmt.Errorf("failed to insert frame %d: %w", f.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit session: %w", err)
	}
	return s.ID, nil
}

const sessionColumns = `
	session_id, video_filename, saved_video_path, upload_date,
	tail_summary, ear_summary, head_summary, posture_summary,
	happy_percent, sad_percent, neutral_percent, activity_percent,
	environment_percent, mental_health_percent, should_worry, worry_message,
	doctor_summary, audio_path, graphs_path, frames`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var (
		s                                 Session
		savedPath, worry, doctor, audio   sql.NullString
		tail, ears, head, posture, graphs sql.NullString
		uploadDate                        string
	)
	err := row.Scan(
		&s.ID, &s.VideoFilename, &savedPath, &uploadDate,
		&tail, &ears, &head, &posture,
		&s.HappyPercent, &s.SadPercent, &s.NeutralPercent, &s.ActivityPercent,
		&s.EnvironmentPercent, &s.MentalHealthPercent, &s.ShouldWorry, &worry,
		&doctor, &audio, &graphs, &s.FrameCount,
	)
	if err != nil {
		return Session{}, err
	}

	s.SavedVideoPath = savedPath.String
	s.TailSummary, s.EarSummary, s.HeadSummary, s.PostureSummary = tail.String, ears.String, head.String, posture.String
	s.WorryMessage = worry.String
	s.DoctorSummary = doctor.String
	s.AudioPath = audio.String

	if s.UploadDate, err = time.Parse(timeFormat, uploadDate); err != nil {
		return Session{}, fmt.Errorf("failed to parse upload_date %q: %w", uploadDate, err)
	}
	if graphs.String != "" && graphs.String != "null" {
		if err := json.Unmarshal([]byte(graphs.String), &s.Graphs); err != nil {
			return Session{}, fmt.Errorf("failed to decode graphs_path: %w", err)
		}
	}
	return s, nil
}

// ListSessions returns every session without frames, newest first.
func (db *DB) ListSessions() ([]Session, error) {
	rows, err := db.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY upload_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession returns the session with its frames ordered by frame number.
func (db *DB) GetSession(id string) (*Session, error) {
	s, err := scanSession(db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT frame_number, tail_state, ear_state, head_state, posture_state
		FROM frame_analysis
		WHERE session_id = ?
		ORDER BY frame_number`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f Frame
		if err := rows.Scan(&f.Number, &f.Tail, &f.Ears, &f.Head, &f.Posture); err != nil {
			return nil, err
		}
		s.Frames = append(s.Frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session and, by cascade, its frames.
func (db *DB) DeleteSession(id string) error {
	res, err := db.Exec(`DELETE FROM sessions WHERE session_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}
