package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient is a client for the Google Gemini API.
type GeminiClient struct {
	client    *genai.Client
	textModel *genai.GenerativeModel
	jsonModel *genai.GenerativeModel
	modelName string
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	textModel := client.GenerativeModel(modelName)
	// Separate model handle for JSON-only requests so concurrent calls
	// don't race on GenerationConfig.
	jsonModel := client.GenerativeModel(modelName)
	jsonModel.ResponseMIMEType = "application/json"

	return &GeminiClient{
		client:    client,
		textModel: textModel,
		jsonModel: jsonModel,
		modelName: modelName,
	}, nil
}

// GenerateContent sends a prompt to the Gemini model and returns the
// generated text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, jsonOnly bool) (ContentResponse, error) {
	model := c.textModel
	if jsonOnly {
		model = c.jsonModel
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ContentResponse{}, mapGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ContentResponse{}, &TransportError{Message: "no content generated"}
	}

	candidate := resp.Candidates[0]
	text, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return ContentResponse{}, &TransportError{Message: "generated content is not text"}
	}

	out := ContentResponse{
		Content:   string(text),
		Truncated: candidate.FinishReason == genai.FinishReasonMaxTokens,
		Usage:     TokenUsage{Model: c.modelName},
	}
	if resp.UsageMetadata != nil {
		out.Usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.Usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		out.Usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

func mapGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthenticationError{Status: apiErr.Code, Message: apiErr.Message}
		case http.StatusTooManyRequests:
			return &RateLimitError{Status: apiErr.Code, Message: apiErr.Message}
		default:
			return &TransportError{Status: apiErr.Code, Message: apiErr.Message, Err: err}
		}
	}
	return &TransportError{Message: "gemini request failed", Err: err}
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
