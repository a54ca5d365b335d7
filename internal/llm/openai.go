package llm

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"

	// The model is asked for compact output; longer responses risk
	// truncation, which the normalizer has to repair.
	maxCompletionTokens = 800
)

const systemPrompt = "You are a professional chef who plans menus and writes recipes. " +
	"Respond in JSON following the format given in the request."

// OpenAIClient is a client for OpenAI-compatible chat-completion APIs.
type OpenAIClient struct {
	http  *resty.Client
	model string

	mu     sync.RWMutex
	apiKey string
}

// NewOpenAIClient creates a new client. baseURL may be empty to use the
// official OpenAI endpoint; any OpenAI-compatible server works.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(90 * time.Second),
		model:  model,
		apiKey: apiKey,
	}
}

// SetAPIKey replaces the credential used for subsequent requests.
func (c *OpenAIClient) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

func (c *OpenAIClient) key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateContent sends a prompt to the chat-completions endpoint and
// returns the generated text.
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string, jsonOnly bool) (ContentResponse, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
		"max_tokens":  maxCompletionTokens,
	}
	if jsonOnly {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	var out chatCompletionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.key()).
		SetBody(body).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return ContentResponse{}, &TransportError{Message: "chat completion request failed", Err: err}
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ContentResponse{}, &AuthenticationError{Status: status, Message: resp.String()}
	case status == http.StatusTooManyRequests:
		return ContentResponse{}, &RateLimitError{Status: status, Message: resp.String()}
	case !resp.IsSuccess():
		return ContentResponse{}, &TransportError{Status: status, Message: resp.String()}
	}

	if len(out.Choices) == 0 {
		return ContentResponse{}, &TransportError{Status: resp.StatusCode(), Message: "no content generated"}
	}

	choice := out.Choices[0]
	return ContentResponse{
		Content:   choice.Message.Content,
		Truncated: choice.FinishReason == "length",
		Usage: TokenUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
			Model:            c.model,
		},
	}, nil
}
