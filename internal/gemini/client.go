package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Fatal, non-retryable client failures.
var (
	// ErrMissingCredential means GEMINI_API_KEY was not configured. It is a
	// configuration error and must never be retried.
	ErrMissingCredential = errors.New("GEMINI_API_KEY environment variable not set")
	// ErrInvalidResponseShape means the expected candidates[0].content.parts[0]
	// text payload was absent from the response.
	ErrInvalidResponseShape = errors.New("unexpected response shape from model")
)

const (
	// requestTimeout bounds every single completion call.
	requestTimeout = 60 * time.Second
	// maxOutputTokensCeiling caps the per-call output budget.
	maxOutputTokensCeiling = 8192
	// tokensPerQuestion scales the output budget with the requested count.
	tokensPerQuestion = 800
)

// Client wraps the Gemini client for quiz-generation completions.
// A Client constructed without an API key is still usable; every Complete
// call then fails with ErrMissingCredential so the orchestrator can report
// the misconfiguration per lecture.
type Client struct {
	client    *genai.Client
	modelName string
}

// NewClient creates a Gemini client. A missing API key is logged but not
// fatal here; the failure surfaces on the first completion instead.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	if apiKey == "" {
		log.Println("WARN: GEMINI_API_KEY not set, quiz generation will fail until configured")
		return &Client{modelName: modelName}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, modelName: modelName}, nil
}

// Close closes the underlying Gemini client.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Complete issues exactly one completion request for the given prompt and
// returns the raw text response. Retries are the rate limiter's job, not
// this method's.
func (c *Client) Complete(ctx context.Context, prompt string, questionsCount int) (string, error) {
	if c.client == nil {
		return "", ErrMissingCredential
	}

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetCandidateCount(1)

	maxTokens := tokensPerQuestion * questionsCount
	if maxTokens > maxOutputTokensCeiling {
		maxTokens = maxOutputTokensCeiling
	}
	model.SetMaxOutputTokens(int32(maxTokens))

	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrInvalidResponseShape
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrInvalidResponseShape
	}
	return sb.String(), nil
}
