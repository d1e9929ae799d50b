package vecstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"kareerbot/internal/util"
	"kareerbot/pkg/ai"
	"kareerbot/pkg/domain"
)

var (
	// ErrNotFound means no persisted, non-empty collection exists for the user.
	ErrNotFound = errors.New("vector collection not found")
	// ErrUnavailable means retrieval was requested before any ingestion.
	ErrUnavailable = errors.New("vector collection unavailable")
)

const collectionFile = "collection.json"

// RetrieveFunc queries one user's collection and returns chunks ranked by
// similarity to the query text.
type RetrieveFunc func(ctx context.Context, query string) ([]domain.ScoredChunk, error)

// Options tunes the manager.
type Options struct {
	TopK        int
	Concurrency int // parallel embedding calls per ingest
}

// Manager owns the per-user embedded-chunk collections, persisted one
// directory per user under <root>/vectors. Collections are tracked in an
// explicit registry keyed by user ID rather than any process-wide current
// collection.
//
// The manager assumes at most one ingestion in flight per user. Two
// concurrent ingests for the same user can race on append-vs-recreate and
// the slower recreate may discard the faster append's chunks; callers that
// need stronger guarantees must serialize per user.
type Manager struct {
	root        string
	embedder    ai.Embedder
	topK        int
	concurrency int

	mu     sync.Mutex
	loaded map[string]*Collection
}

// NewManager creates the vector root directory if absent.
func NewManager(root string, embedder ai.Embedder, opts Options) (*Manager, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	dir := filepath.Join(root, "vectors")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create vector root: %w", err)
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = 4
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Manager{
		root:        dir,
		embedder:    embedder,
		topK:        topK,
		concurrency: concurrency,
		loaded:      make(map[string]*Collection),
	}, nil
}

// Open returns the user's collection, loading it from disk on first use.
// Returns ErrNotFound when no persisted, non-empty collection exists.
func (m *Manager) Open(userID string) (*Collection, error) {
	m.mu.Lock()
	if col, ok := m.loaded[userID]; ok {
		m.mu.Unlock()
		return col, nil
	}
	m.mu.Unlock()

	data, err := os.ReadFile(m.path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read collection: %w", err)
	}
	var col Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if len(col.Chunks) == 0 {
		return nil, ErrNotFound
	}
	col.UserID = userID
	m.remember(&col)
	return &col, nil
}

// Ingest embeds texts and adds them to the user's collection, creating it on
// first ingestion. When appending to an existing collection fails, the
// existing collection is discarded and rebuilt from only the newly supplied
// chunks: availability is chosen over completeness, and the data loss is
// logged rather than silent.
func (m *Manager) Ingest(ctx context.Context, userID string, texts []string, source string) (*Collection, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no chunks to ingest")
	}

	existing, openErr := m.Open(userID)
	if openErr != nil && !errors.Is(openErr, ErrNotFound) {
		// Unreadable state is handled like a failed append below.
		slog.Warn("existing collection unreadable", "user_id", userID, "err", openErr)
	}

	chunks, embedErr := m.embedAll(ctx, texts, source)

	if openErr != nil {
		// Initial-creation path (or unreadable prior state with nothing to
		// append to).
		if embedErr != nil {
			return nil, fmt.Errorf("embed chunks: %w", embedErr)
		}
		col := &Collection{UserID: userID, Chunks: chunks}
		if err := m.persist(col); err != nil {
			return nil, err
		}
		m.remember(col)
		return col, nil
	}

	if embedErr == nil {
		appended := &Collection{
			UserID: userID,
			Chunks: append(append([]domain.EmbeddedChunk{}, existing.Chunks...), chunks...),
		}
		if err := m.persist(appended); err == nil {
			m.remember(appended)
			return appended, nil
		} else {
			slog.Warn("append to collection failed, rebuilding from new chunks only; previously stored chunks are lost",
				"user_id", userID, "prior_chunks", len(existing.Chunks), "err", err)
		}
	} else {
		slog.Warn("embedding for append failed, retrying against a fresh collection; previously stored chunks are lost",
			"user_id", userID, "prior_chunks", len(existing.Chunks), "err", embedErr)
		chunks, embedErr = m.embedAll(ctx, texts, source)
		if embedErr != nil {
			return nil, fmt.Errorf("embed chunks: %w", embedErr)
		}
	}

	// Fallback-recreate path.
	col := &Collection{UserID: userID, Chunks: chunks}
	if err := m.persist(col); err != nil {
		return nil, err
	}
	m.remember(col)
	return col, nil
}

// Retriever returns a query function over the user's collection, or
// ErrUnavailable when nothing has been ingested yet. Callers should turn
// ErrUnavailable into an explicit "upload your resume first" condition.
func (m *Manager) Retriever(userID string) (RetrieveFunc, error) {
	col, err := m.Open(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnavailable
		}
		return nil, err
	}
	return func(ctx context.Context, query string) ([]domain.ScoredChunk, error) {
		embedding, err := m.embedder.EmbedText(ctx, query, "RETRIEVAL_QUERY")
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return col.Search(embedding, m.topK), nil
	}, nil
}

func (m *Manager) embedAll(ctx context.Context, texts []string, source string) ([]domain.EmbeddedChunk, error) {
	chunks := make([]domain.EmbeddedChunk, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	now := time.Now().UTC()
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			embedding, err := m.embedder.EmbedText(gctx, text, "RETRIEVAL_DOCUMENT")
			if err != nil {
				return err
			}
			chunks[i] = domain.EmbeddedChunk{
				ID:        util.NewID(),
				Text:      text,
				Embedding: embedding,
				Source:    source,
				CreatedAt: now,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (m *Manager) persist(col *Collection) error {
	dir := filepath.Join(m.root, util.SanitizePathSegment(col.UserID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}
	data, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".collection-*")
	if err != nil {
		return fmt.Errorf("create temp collection: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp collection: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, collectionFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace collection: %w", err)
	}
	return nil
}

func (m *Manager) remember(col *Collection) {
	m.mu.Lock()
	m.loaded[col.UserID] = col
	m.mu.Unlock()
}

func (m *Manager) path(userID string) string {
	return filepath.Join(m.root, util.SanitizePathSegment(userID), collectionFile)
}
