package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, status int, body string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

const okCompletion = `{
	"choices": [{"message": {"content": "{\"ok\": true}"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46}
}`

func TestOpenAIGenerateContent(t *testing.T) {
	var captured map[string]any
	srv := chatServer(t, http.StatusOK, okCompletion, &captured)
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "gpt-4o-mini")
	resp, err := c.GenerateContent(context.Background(), "plan a menu", true)
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if resp.Content != `{"ok": true}` {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Truncated {
		t.Error("finish_reason stop must not mark truncation")
	}
	if resp.Usage.TotalTokens != 46 || resp.Usage.Model != "gpt-4o-mini" {
		t.Errorf("usage = %+v", resp.Usage)
	}

	if captured["model"] != "gpt-4o-mini" {
		t.Errorf("request model = %v", captured["model"])
	}
	if _, ok := captured["response_format"]; !ok {
		t.Error("jsonOnly request must set response_format")
	}
}

func TestOpenAIPlainTextRequest(t *testing.T) {
	var captured map[string]any
	srv := chatServer(t, http.StatusOK, okCompletion, &captured)
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "gpt-4o-mini")
	if _, err := c.GenerateContent(context.Background(), "hello", false); err != nil {
		t.Fatal(err)
	}
	if _, ok := captured["response_format"]; ok {
		t.Error("plain request must not set response_format")
	}
}

func TestOpenAITruncationFlag(t *testing.T) {
	body := `{
		"choices": [{"message": {"content": "{\"partial"}, "finish_reason": "length"}],
		"usage": {"prompt_tokens": 1, "completion_tokens": 800, "total_tokens": 801}
	}`
	srv := chatServer(t, http.StatusOK, body, nil)
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "gpt-4o-mini")
	resp, err := c.GenerateContent(context.Background(), "plan", true)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Truncated {
		t.Error("finish_reason length must mark truncation")
	}
}

func TestOpenAIStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, func(err error) bool {
			var e *AuthenticationError
			return errors.As(err, &e)
		}},
		{"forbidden", http.StatusForbidden, func(err error) bool {
			var e *AuthenticationError
			return errors.As(err, &e)
		}},
		{"rate limited", http.StatusTooManyRequests, func(err error) bool {
			var e *RateLimitError
			return errors.As(err, &e)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var e *TransportError
			return errors.As(err, &e)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := chatServer(t, tc.status, `{"error": "nope"}`, nil)
			defer srv.Close()

			c := NewOpenAIClient(srv.URL, "sk-test", "gpt-4o-mini")
			_, err := c.GenerateContent(context.Background(), "plan", true)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tc.check(err) {
				t.Errorf("wrong error type: %T: %v", err, err)
			}
		})
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"choices": []}`, nil)
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "gpt-4o-mini")
	_, err := c.GenerateContent(context.Background(), "plan", true)
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
}

func TestOpenAISetAPIKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(okCompletion))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-old", "gpt-4o-mini")
	c.SetAPIKey("sk-new")
	if _, err := c.GenerateContent(context.Background(), "plan", false); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer sk-new" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}
