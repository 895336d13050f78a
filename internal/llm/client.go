// Package llm is a small client for OpenAI-compatible chat completion
// APIs, used to phrase the vet summary and answer owner questions.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/banshee-data/canine.report/internal/httputil"
)

const (
	DefaultTemperature = 0.4
	SummaryMaxTokens   = 60
	AnswerMaxTokens    = 200

	systemPrompt = "You are an experienced veterinary doctor."
)

// ErrNoChoices is returned when the API answers without any completion.
var ErrNoChoices = errors.New("no choices returned")

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client calls POST {baseURL}/chat/completions.
type Client struct {
	http        httputil.HTTPClient
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

// NewClient returns a Client for the given endpoint and model. A nil
// httpClient uses a standard client with a 60s timeout.
func NewClient(httpClient httputil.HTTPClient, baseURL, apiKey, model string) *Client {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(&http.Client{Timeout: 60 * time.Second})
	}
	return &Client{
		http:        httpClient,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: DefaultTemperature,
	}
}

// Complete sends the messages and returns the trimmed first choice.
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	req, err := httputil.NewJSONRequest(ctx, http.MethodPost, c.baseURL+"/chat/completions", chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var resp chatResponse
	if err := httputil.DoJSON(c.http, req, &resp); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// DoctorSummary asks for a one-line summary of a behavior profile.
func (c *Client) DoctorSummary(ctx context.Context, profileText string) (string, error) {
	prompt := fmt.Sprintf(`You are a professional veterinary AI doctor.

Dog behavior analysis:
%s

Task:
Give ONE single-line summary in this format:
"As an AI vet, your dog is ..."

Rules:
- One line only
- No bullet points
- Friendly, caring tone
- Include health, activity, and recommendation
`, profileText)

	return c.Complete(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, SummaryMaxTokens)
}

// Answer responds to an owner's question grounded on web research text.
func (c *Client) Answer(ctx context.Context, question, research string) (string, error) {
	prompt := fmt.Sprintf(`You are an experienced veterinary doctor and canine behavior expert.

User question:
%s

Based on the following internet research, answer the user's question in a clear, calm, and helpful way.

Internet research:
%s

Task:
Summarize the key points, explain what this could mean for the dog, give safe practical advice, and mention when a veterinarian should be consulted.

Rules:
- Give some friendly recommendation too
- One short paragraph
- Friendly, reassuring tone
- No medical diagnosis claims
- No bullet points
`, question, research)

	return c.Complete(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, AnswerMaxTokens)
}
