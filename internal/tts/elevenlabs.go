// Package tts synthesizes the vet summary to speech with ElevenLabs.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/banshee-data/canine.report/internal/httputil"
)

const (
	DefaultBaseURL      = "https://api.elevenlabs.io/v1"
	ModelMultilingualV2 = "eleven_multilingual_v2"
	OutputMP3           = "mp3_44100_128"
)

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("empty text")

// VoiceSettings tune the generated voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	SpeakerBoost    bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings is a warm, moderately expressive voice.
var DefaultVoiceSettings = VoiceSettings{
	Stability:       0.4,
	SimilarityBoost: 0.6,
	Style:           0.6,
	SpeakerBoost:    true,
}

type payload struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// ElevenLabs converts text to MP3 audio.
type ElevenLabs struct {
	http     httputil.HTTPClient
	baseURL  string
	apiKey   string
	voiceID  string
	modelID  string
	settings VoiceSettings
}

// NewElevenLabs returns a client speaking with voiceID. A nil httpClient
// uses a standard client with a 60s timeout.
func NewElevenLabs(httpClient httputil.HTTPClient, apiKey, voiceID string) *ElevenLabs {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(&http.Client{Timeout: 60 * time.Second})
	}
	return &ElevenLabs{
		http:     httpClient,
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		voiceID:  voiceID,
		modelID:  ModelMultilingualV2,
		settings: DefaultVoiceSettings,
	}
}

// WithBaseURL points the client at another endpoint.
func (e *ElevenLabs) WithBaseURL(u string) *ElevenLabs {
	e.baseURL = strings.TrimSuffix(u, "/")
	return e
}

// Synthesize writes the speech for text to path. A partially written file
// is removed on failure.
func (e *ElevenLabs) Synthesize(ctx context.Context, text, path string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", e.baseURL, e.voiceID, OutputMP3)
	req, err := httputil.NewJSONRequest(ctx, http.MethodPost, url, payload{
		Text:          text,
		ModelID:       e.modelID,
		VoiceSettings: e.settings,
	})
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("text to speech: %w", err)
	}
	if err := httputil.CheckResponse(resp); err != nil {
		return fmt.Errorf("text to speech: %w", err)
	}
	defer resp.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return f.Close()
}
