package domain

import "time"

// Ledger entry sources. Uploaded files keep their original filename; the
// sentinels below mark inline text and chat-derived entries.
const (
	SourceFreeText  = "free-text"
	SourceChatSkill = "chat-skill"
)

// DefaultUserID is the fallback identity for unauthenticated requests.
const DefaultUserID = "default"

// User is an account row in the relational store. Exactly one of Email/Phone
// is the login contact, whichever was supplied at registration.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IngestedDocument is one append-only ledger record: the raw text of a
// single ingestion, pre-chunking. Never mutated, never deleted.
type IngestedDocument struct {
	Source      string    `json:"source"`
	Text        string    `json:"text"`
	ContentHash string    `json:"contentHash"`
	Timestamp   time.Time `json:"timestamp"`
}

// EmbeddedChunk is one entry of a user's vector collection.
type EmbeddedChunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScoredChunk is a retrieval hit ranked by cosine similarity.
type ScoredChunk struct {
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// Feedback is the structured resume review returned by the model.
type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Plan is the structured output of the planning flow. The wire shape keeps
// the step list under the "plan" key, which existing clients render.
type Plan struct {
	Goal  string     `json:"goal"`
	Steps []PlanStep `json:"plan"`
}

type PlanStep struct {
	Step        string `json:"step"`
	Description string `json:"description"`
}

// Prediction is the structured goal-success estimate.
type Prediction struct {
	Likelihood string   `json:"likelihood"`
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
}
