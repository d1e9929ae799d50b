package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GeminiClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestGenerateTextRoundTrip(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-1.5-flash:generateContent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if r.URL.Query().Get("key") != "" {
			t.Errorf("api key leaked into query string")
		}
		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "be brief" {
			t.Errorf("system instruction = %+v", req.SystemInstruction)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "say hi" {
			t.Errorf("contents = %+v", req.Contents)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello"},{"text":" there"}]}}]}`))
	})

	reply, err := client.GenerateText(context.Background(), "gemini-1.5-flash", "be brief", "say hi")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if reply != "hello there" {
		t.Fatalf("reply = %q, want joined candidate parts", reply)
	}
}

func TestEmbedTextRoundTrip(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/embedding-001:embedContent" {
			t.Errorf("path = %q, model prefix not normalized", r.URL.Path)
		}
		var req embedContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.TaskType != "retrieval_document" {
			t.Errorf("taskType = %q", req.TaskType)
		}
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.25,0.5]}}`))
	})

	vec, err := client.EmbedText(context.Background(), "models/embedding-001", "resume text", "retrieval_document")
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.25 || vec[1] != 0.5 {
		t.Fatalf("vec = %v", vec)
	}
}

func TestFailureClassification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusBadRequest, `{"error":{"message":"invalid argument"}}`, ErrRejected},
		{http.StatusNotFound, ``, ErrRejected},
		{http.StatusTooManyRequests, ``, ErrUnavailable},
		{http.StatusInternalServerError, ``, ErrUnavailable},
		{http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`, ErrUnavailable},
	}
	for _, tc := range cases {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		})
		_, err := client.GenerateText(context.Background(), "gemini-1.5-flash", "", "hi")
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: err = %v, want class %v", tc.status, err, tc.want)
		}
	}
}

func TestFailureCarriesAPIMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	})
	_, err := client.GenerateText(context.Background(), "gemini-1.5-flash", "", "hi")
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("err = %v, want the API message", err)
	}
}

func TestNoCandidatesIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	if _, err := client.GenerateText(context.Background(), "gemini-1.5-flash", "", "hi"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {})
	srv.Close()
	if _, err := client.EmbedText(context.Background(), "embedding-001", "text", ""); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient("   "); err == nil {
		t.Fatalf("expected error for blank api key")
	}
}
