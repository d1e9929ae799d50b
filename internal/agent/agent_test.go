package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// scriptedGenerator replays a fixed sequence of replies and records prompts.
type scriptedGenerator struct {
	replies []string
	prompts []string
}

func (g *scriptedGenerator) GenerateText(_ context.Context, _, user string) (string, error) {
	g.prompts = append(g.prompts, user)
	if len(g.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return reply, nil
}

type fakeSearcher struct {
	results []SearchResult
	err     error
	queries []string
}

func (s *fakeSearcher) Search(_ context.Context, query string) ([]SearchResult, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func TestAnswerDirectFinal(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{`{"action": "final", "answer": "Learn Go."}`}}
	a := New(gen, &fakeSearcher{}, 3)
	reply, err := a.Answer(context.Background(), "What should I learn?", nil, "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if reply != "Learn Go." {
		t.Fatalf("reply = %q", reply)
	}
}

func TestAnswerSearchThenFinal(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		`{"action": "search", "query": "golang job market 2026"}`,
		`{"action": "final", "answer": "Demand is strong."}`,
	}}
	searcher := &fakeSearcher{results: []SearchResult{{Title: "Go hiring report", Snippet: "growth continues"}}}
	a := New(gen, searcher, 3)
	reply, err := a.Answer(context.Background(), "Is Go worth learning?", nil, "a technical architect")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if reply != "Demand is strong." {
		t.Fatalf("reply = %q", reply)
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "golang job market 2026" {
		t.Fatalf("search queries = %v", searcher.queries)
	}
	// The observation must reach the next model call.
	if !strings.Contains(gen.prompts[1], "Go hiring report") {
		t.Fatalf("observation missing from second prompt: %q", gen.prompts[1])
	}
}

func TestAnswerPlainReplyIsFinal(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Just practice algorithms daily."}}
	a := New(gen, &fakeSearcher{}, 3)
	reply, err := a.Answer(context.Background(), "Interview tips?", nil, "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if reply != "Just practice algorithms daily." {
		t.Fatalf("reply = %q", reply)
	}
}

func TestAnswerStepBudgetExhausted(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		`{"action": "search", "query": "a"}`,
		`{"action": "search", "query": "b"}`,
		"Final thoughts in plain text.",
	}}
	a := New(gen, &fakeSearcher{}, 2)
	reply, err := a.Answer(context.Background(), "q", nil, "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if reply != "Final thoughts in plain text." {
		t.Fatalf("reply = %q", reply)
	}
	if !strings.Contains(gen.prompts[2], "no search budget left") {
		t.Fatalf("final prompt missing budget notice: %q", gen.prompts[2])
	}
}

func TestAnswerSearchFailureIsObserved(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{
		`{"action": "search", "query": "x"}`,
		`{"action": "final", "answer": "done"}`,
	}}
	a := New(gen, &fakeSearcher{err: errors.New("network down")}, 3)
	reply, err := a.Answer(context.Background(), "q", nil, "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if reply != "done" {
		t.Fatalf("reply = %q", reply)
	}
	if !strings.Contains(gen.prompts[1], "web_search failed") {
		t.Fatalf("failure observation missing: %q", gen.prompts[1])
	}
}

func TestAnswerHistoryAndPersonaInPrompt(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{`{"action": "final", "answer": "ok"}`}}
	a := New(gen, &fakeSearcher{}, 3)
	history := []Turn{{Sender: "user", Text: "hello"}, {Sender: "bot", Text: "hi there"}}
	if _, err := a.Answer(context.Background(), "next question", history, "a business strategist"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "user: hello") || !strings.Contains(prompt, "bot: hi there") {
		t.Fatalf("history missing from prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "user: next question") {
		t.Fatalf("query missing from prompt: %q", prompt)
	}
}

const searchPage = `<html><body>
<div class="result">
  <a class="result__a" href="https://example.com/one">First Result Title</a>
  <a class="result__snippet">First snippet text.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/two">Second Result</a>
  <a class="result__snippet">Second snippet.</a>
</div>
</body></html>`

func TestDuckDuckGoSearcherParsesResults(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(searchPage))
	}))
	defer srv.Close()

	s := NewDuckDuckGoSearcher(srv.URL + "/html/")
	results, err := s.Search(context.Background(), "golang jobs")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "golang jobs" {
		t.Fatalf("query param = %q", gotQuery)
	}
	if len(results) != 2 {
		t.Fatalf("result count = %d, want 2", len(results))
	}
	if results[0].Title != "First Result Title" || results[0].Snippet != "First snippet text." {
		t.Fatalf("first result = %+v", results[0])
	}
	if results[1].URL != "https://example.com/two" {
		t.Fatalf("second result url = %q", results[1].URL)
	}
}

func TestDuckDuckGoSearcherNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewDuckDuckGoSearcher(srv.URL + "/html/")
	if _, err := s.Search(context.Background(), "x"); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}
