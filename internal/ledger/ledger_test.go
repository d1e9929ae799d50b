package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"kareerbot/pkg/domain"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return l
}

func TestLoadMissingLedgerIsEmpty(t *testing.T) {
	l := newTestLedger(t)
	if docs := l.Load("nobody"); len(docs) != 0 {
		t.Fatalf("expected empty history, got %d docs", len(docs))
	}
}

func TestAppendAndLoadRoundTrip(t *testing.T) {
	l := newTestLedger(t)
	doc := domain.IngestedDocument{
		Source:      "resume.pdf",
		Text:        "Experienced in Python and Docker",
		ContentHash: Fingerprint("Experienced in Python and Docker"),
		Timestamp:   time.Now().UTC(),
	}
	if err := l.Append("user-1", doc); err != nil {
		t.Fatalf("append: %v", err)
	}
	docs := l.Load("user-1")
	if len(docs) != 1 {
		t.Fatalf("ledger length = %d, want 1", len(docs))
	}
	if docs[0].Text != doc.Text || docs[0].ContentHash != doc.ContentHash {
		t.Fatalf("loaded doc does not match appended doc: %+v", docs[0])
	}
}

func TestContainsHash(t *testing.T) {
	l := newTestLedger(t)
	hash := Fingerprint("some resume text")
	if l.ContainsHash("user-1", hash) {
		t.Fatalf("empty ledger should not contain hash")
	}
	if err := l.Append("user-1", domain.IngestedDocument{Text: "some resume text", ContentHash: hash}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !l.ContainsHash("user-1", hash) {
		t.Fatalf("ledger should contain hash after append")
	}
	if l.ContainsHash("user-2", hash) {
		t.Fatalf("another user's ledger must not contain the hash")
	}
}

func TestContainsText(t *testing.T) {
	l := newTestLedger(t)
	if err := l.Append("user-1", domain.IngestedDocument{Source: domain.SourceChatSkill, Text: "Kubernetes"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !l.ContainsText("user-1", "Kubernetes") {
		t.Fatalf("expected exact text match")
	}
	if l.ContainsText("user-1", "kubernetes") {
		t.Fatalf("text match must be exact, not case-insensitive")
	}
}

func TestCorruptLedgerDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir, Options{})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	path := filepath.Join(dir, "ledgers", "user-1.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if docs := l.Load("user-1"); docs != nil {
		t.Fatalf("corrupt ledger should load as empty, got %d docs", len(docs))
	}
	// A new append still works and replaces the corrupt file.
	if err := l.Append("user-1", domain.IngestedDocument{Text: "fresh", ContentHash: Fingerprint("fresh")}); err != nil {
		t.Fatalf("append after corruption: %v", err)
	}
	if docs := l.Load("user-1"); len(docs) != 1 {
		t.Fatalf("ledger length after recovery = %d, want 1", len(docs))
	}
}

func TestStrictWritesSurfacesErrors(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir, Options{StrictWrites: true})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	// Remove the ledger directory so persistence must fail.
	if err := os.RemoveAll(filepath.Join(dir, "ledgers")); err != nil {
		t.Fatalf("remove dir: %v", err)
	}
	if err := l.Append("user-1", domain.IngestedDocument{Text: "x"}); err == nil {
		t.Fatalf("expected strict append to report persistence error")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("the same text")
	b := Fingerprint("the same text")
	if a != b {
		t.Fatalf("fingerprints differ: %s vs %s", a, b)
	}
	if a == Fingerprint("different text") {
		t.Fatalf("different texts should not share a fingerprint")
	}
	if len(a) != 64 {
		t.Fatalf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}
