package auditlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"tradehall.gg/internal/trade"
)

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	entries := []trade.AuditEntry{
		{TimeUnix: 1700000000, SessionID: "s1", Outcome: "COMPLETED", ActorA: "alice", ActorB: "bob", CoinsA: 100, ItemsB: []string{"dragon"}, ValueA: 100, ValueB: 120, Balanced: true},
		{TimeUnix: 1700000060, SessionID: "s2", Outcome: "FAILED", Reason: "E_INSUFFICIENT_FUNDS", ActorA: "carol", ActorB: "dave"},
	}
	for _, e := range entries {
		if err := w.WriteAudit(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	hour := time.Now().UTC().Format("2006-01-02-15")
	f, err := os.Open(filepath.Join(dir, "trades-"+hour+".jsonl.zst"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []trade.AuditEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e trade.AuditEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != len(entries) {
		t.Fatalf("read %d entries, want %d", len(got), len(entries))
	}
	if got[0].SessionID != "s1" || got[0].ItemsB[0] != "dragon" {
		t.Fatalf("entry 0: %+v", got[0])
	}
	if got[1].Outcome != "FAILED" || got[1].Reason != "E_INSUFFICIENT_FUNDS" {
		t.Fatalf("entry 1: %+v", got[1])
	}
}

func TestAppendAfterReopen(t *testing.T) {
	dir := t.TempDir()

	w := NewWriter(dir)
	if err := w.WriteAudit(trade.AuditEntry{SessionID: "s1", Outcome: "COMPLETED"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A second writer appends a fresh zstd frame to the same hour file.
	w2 := NewWriter(dir)
	if err := w2.WriteAudit(trade.AuditEntry{SessionID: "s2", Outcome: "CANCELLED"}); err != nil {
		t.Fatalf("write 2: %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("close 2: %v", err)
	}

	hour := time.Now().UTC().Format("2006-01-02-15")
	f, err := os.Open(filepath.Join(dir, "trades-"+hour+".jsonl.zst"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var ids []string
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e trade.AuditEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		ids = append(ids, e.SessionID)
	}
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Fatalf("sessions: %v", ids)
	}
}
