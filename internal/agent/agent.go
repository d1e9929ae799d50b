package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"kareerbot/pkg/ai"
)

const defaultMaxSteps = 4

// Turn is one prior message of an agent conversation, as supplied by the
// client.
type Turn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type action struct {
	Action string `json:"action"`
	Query  string `json:"query,omitempty"`
	Answer string `json:"answer,omitempty"`
}

// Agent runs a bounded tool-calling loop over the text generator with one
// tool, web search. Each step the model either requests a search or emits a
// final answer; replies without a parseable action are taken as the final
// answer verbatim.
type Agent struct {
	generator ai.TextGenerator
	searcher  Searcher
	maxSteps  int
}

func New(generator ai.TextGenerator, searcher Searcher, maxSteps int) *Agent {
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Agent{generator: generator, searcher: searcher, maxSteps: maxSteps}
}

// Answer resolves query for the given persona, consulting web search when
// the model asks for it.
func (a *Agent) Answer(ctx context.Context, query string, history []Turn, persona string) (string, error) {
	if persona == "" {
		persona = "a professional career coach"
	}
	system := a.systemPrompt(persona)

	var transcript strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&transcript, "%s: %s\n", turn.Sender, turn.Text)
	}
	fmt.Fprintf(&transcript, "user: %s\n", query)

	for step := 0; step < a.maxSteps; step++ {
		reply, err := a.generator.GenerateText(ctx, system, transcript.String())
		if err != nil {
			return "", fmt.Errorf("agent step %d: %w", step+1, err)
		}

		var act action
		if !ai.DecodeObject(reply, &act) || act.Action == "" {
			return strings.TrimSpace(reply), nil
		}
		switch act.Action {
		case "final":
			return act.Answer, nil
		case "search":
			transcript.WriteString(a.runSearch(ctx, act.Query))
		default:
			slog.Warn("agent produced unknown action, treating reply as final", "action", act.Action)
			return strings.TrimSpace(reply), nil
		}
	}

	// Step budget exhausted: ask once more for a plain final answer.
	transcript.WriteString("system: You have no search budget left. Answer now in plain text.\n")
	reply, err := a.generator.GenerateText(ctx, system, transcript.String())
	if err != nil {
		return "", fmt.Errorf("agent final step: %w", err)
	}
	var act action
	if ai.DecodeObject(reply, &act) && act.Action == "final" {
		return act.Answer, nil
	}
	return strings.TrimSpace(reply), nil
}

func (a *Agent) runSearch(ctx context.Context, query string) string {
	if a.searcher == nil {
		return "observation: the web_search tool is not available\n"
	}
	results, err := a.searcher.Search(ctx, query)
	if err != nil {
		slog.Warn("web search failed", "query", query, "err", err)
		return fmt.Sprintf("observation: web_search failed: %v\n", err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("observation: web_search for %q returned no results\n", query)
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "observation: web_search results for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&buf, "%d. %s", i+1, r.Title)
		if r.Snippet != "" {
			fmt.Fprintf(&buf, " (%s)", r.Snippet)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

func (a *Agent) systemPrompt(persona string) string {
	return "You are " + persona + " helping a user with career questions.\n" +
		"You may use one tool, web_search, when you need current information.\n" +
		"Each turn respond with exactly one JSON object:\n" +
		`  {"action": "search", "query": "<search terms>"} to look something up, or` + "\n" +
		`  {"action": "final", "answer": "<your answer>"} when you are done.` + "\n" +
		"Search observations are appended to the conversation as you go."
}
