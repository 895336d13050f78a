package analysis

import (
	"net/http"
	"time"

	"github.com/banshee-data/canine.report/internal/config"
	"github.com/banshee-data/canine.report/internal/httputil"
	"github.com/banshee-data/canine.report/internal/llm"
	"github.com/banshee-data/canine.report/internal/monitoring"
	"github.com/banshee-data/canine.report/internal/search"
	"github.com/banshee-data/canine.report/internal/tts"
)

// Outbound request pacing shared by all collaborators.
const (
	RequestsPerSecond = 2.0
	RequestBurst      = 4
)

// NewCollaborators builds the HTTP collaborators whose API key is present
// in secrets. All of them share one rate-limited client wrapping client; a
// nil client uses a standard client with a 60s timeout.
func NewCollaborators(cfg *config.AnalysisConfig, secrets config.Secrets, client httputil.HTTPClient, store Store) Collaborators {
	if cfg == nil {
		cfg = config.EmptyAnalysisConfig()
	}
	if client == nil {
		client = httputil.NewStandardClient(&http.Client{Timeout: 60 * time.Second})
	}
	paced := httputil.NewRateLimitedClient(client, RequestsPerSecond, RequestBurst)
	c := Collaborators{Store: store}

	if secrets.LLMKey != "" {
		model := llm.NewClient(paced, cfg.GetLLMBaseURL(), secrets.LLMKey, cfg.GetLLMModel())
		c.Summarizer = model
		c.Answerer = model
	} else {
		monitoring.Logf("%s not set: doctor summaries and answers disabled", config.EnvLLMKey)
	}
	if secrets.TTSKey != "" {
		c.Synthesizer = tts.NewElevenLabs(paced, secrets.TTSKey, cfg.GetVoiceID())
	} else {
		monitoring.Logf("%s not set: voice summaries disabled", config.EnvTTSKey)
	}
	if secrets.SearchKey != "" {
		c.Searcher = search.NewTavily(paced, secrets.SearchKey)
	} else {
		monitoring.Logf("%s not set: web research disabled", config.EnvSearchKey)
	}
	return c
}
