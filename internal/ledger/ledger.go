package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kareerbot/internal/util"
	"kareerbot/pkg/domain"
)

// Ledger is the append-only per-user record of every ingested document.
// Each user has one JSON file under <root>/ledgers. Reads are lenient: an
// unreadable or corrupt file degrades to an empty history so new uploads and
// chats are never blocked by lost read access. Writes are lenient by default
// to match the original behavior; set StrictWrites to surface append errors.
type Ledger struct {
	root         string
	strictWrites bool
}

// Options configures ledger durability behavior.
type Options struct {
	// StrictWrites makes Append return persistence errors instead of
	// logging and continuing.
	StrictWrites bool
}

// New creates the ledger root directory if absent.
func New(root string, opts Options) (*Ledger, error) {
	dir := filepath.Join(root, "ledgers")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &Ledger{root: dir, strictWrites: opts.StrictWrites}, nil
}

// Load returns the ordered document history for userID. A missing or
// unreadable ledger is an empty history, never an error.
func (l *Ledger) Load(userID string) []domain.IngestedDocument {
	path := l.path(userID)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("ledger unreadable, treating as empty", "user_id", userID, "err", err)
		}
		return nil
	}
	var docs []domain.IngestedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		slog.Warn("ledger corrupt, treating as empty", "user_id", userID, "err", err)
		return nil
	}
	return docs
}

// Append adds one record and persists the full ledger with
// write-to-temp-then-rename semantics. A crash mid-write leaves the prior
// ledger intact.
func (l *Ledger) Append(userID string, doc domain.IngestedDocument) error {
	docs := l.Load(userID)
	docs = append(docs, doc)
	if err := l.persist(userID, docs); err != nil {
		if l.strictWrites {
			return err
		}
		slog.Warn("ledger append not persisted", "user_id", userID, "err", err)
	}
	return nil
}

// ContainsHash reports whether a document with this content hash was already
// ingested for userID.
func (l *Ledger) ContainsHash(userID, hash string) bool {
	for _, doc := range l.Load(userID) {
		if doc.ContentHash == hash {
			return true
		}
	}
	return false
}

// ContainsText reports whether an entry with exactly this text exists.
// Skill-capture entries are short derived strings and are deduplicated by
// text match rather than by hash.
func (l *Ledger) ContainsText(userID, text string) bool {
	for _, doc := range l.Load(userID) {
		if doc.Text == text {
			return true
		}
	}
	return false
}

func (l *Ledger) persist(userID string, docs []domain.IngestedDocument) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	path := l.path(userID)
	tmp, err := os.CreateTemp(l.root, ".ledger-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func (l *Ledger) path(userID string) string {
	return filepath.Join(l.root, util.SanitizePathSegment(userID)+".json")
}
