package analysis

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/canine.report/internal/config"
	"github.com/banshee-data/canine.report/internal/httputil"
	"github.com/banshee-data/canine.report/internal/pose"
	"github.com/banshee-data/canine.report/internal/testutil"
)

func TestNewCollaborators_MissingKeys(t *testing.T) {
	testutil.MuteLogs(t)
	c := NewCollaborators(nil, config.Secrets{}, httputil.NewMockHTTPClient(), nil)
	assert.Nil(t, c.Summarizer)
	assert.Nil(t, c.Answerer)
	assert.Nil(t, c.Synthesizer)
	assert.Nil(t, c.Searcher)
	assert.Nil(t, c.Store)
}

func TestNewCollaborators_AnalyzeOverHTTP(t *testing.T) {
	testutil.MuteLogs(t)
	mock := httputil.NewMockHTTPClient().
		AddResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"As an AI vet, your dog is lively."}}]}`).
		AddResponse(http.StatusOK, "ID3-audio")

	cfg := testConfig(t)
	secrets := config.Secrets{LLMKey: "llm-key", TTSKey: "tts-key", SearchKey: "search-key"}
	c := NewCollaborators(cfg, secrets, mock, nil)
	require.NotNil(t, c.Summarizer)
	require.NotNil(t, c.Answerer)
	require.NotNil(t, c.Synthesizer)
	require.NotNil(t, c.Searcher)

	res, err := New(cfg, c).AnalyzeVideo(context.Background(), Job{
		Source: pose.NewJSONLSource(strings.NewReader(testutil.PoseExport(testutil.TailRow(40, 0), testutil.TailRow(0, 40), testutil.TailRow(40, 0))), nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "As an AI vet, your dog is lively.", res.DoctorSummary)

	require.Equal(t, 2, mock.RequestCount())
	chat := mock.GetRequest(0)
	assert.Equal(t, cfg.GetLLMBaseURL()+"/chat/completions", chat.URL.String())
	assert.Equal(t, "Bearer llm-key", chat.Header.Get("Authorization"))
	assert.Contains(t, mock.GetBody(0), "Tail: Wagging")

	speech := mock.GetRequest(1)
	assert.Contains(t, speech.URL.Path, "/text-to-speech/"+cfg.GetVoiceID())
	assert.Equal(t, "tts-key", speech.Header.Get("xi-api-key"))

	audio, err := os.ReadFile(res.AudioPath)
	require.NoError(t, err)
	assert.Equal(t, "ID3-audio", string(audio))
}

func TestNewCollaborators_Ask(t *testing.T) {
	testutil.MuteLogs(t)
	mock := httputil.NewMockHTTPClient().
		AddResponse(http.StatusOK, `{"results":[{"title":"Dog yawning","url":"https://example.org","content":"Yawning can signal stress."}]}`).
		AddResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Yawning is often a calming signal."}}]}`)

	c := NewCollaborators(nil, config.Secrets{LLMKey: "k", SearchKey: "s"}, mock, nil)
	answer := New(nil, c).Ask(context.Background(), "Why does my dog yawn?")
	assert.Equal(t, "Yawning is often a calming signal.", answer)
	assert.Contains(t, mock.GetBody(1), "Title: Dog yawning")
}
