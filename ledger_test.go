package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLedgerConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{dataDir: t.TempDir()}
}

func TestLedgerRecordOncePerDay(t *testing.T) {
	l := loadLedger(testLedgerConfig(t))

	first := PlayerResult{Position: 5, TotalPlayers: 100, QuestionsCorrect: 3, GameNumber: 1}
	l.RecordResult("token-a", first)

	// A second result for the same identity must not overwrite the first.
	l.RecordResult("token-a", PlayerResult{Position: 1, TotalPlayers: 100, QuestionsCorrect: 10, GameNumber: 2})

	rec, ok := l.HasPlayed("token-a")
	if !ok || !rec.HasPlayed {
		t.Fatal("expected a played record for token-a")
	}
	if *rec.Result != first {
		t.Fatalf("record was overwritten: %+v", rec.Result)
	}
}

func TestLedgerIgnoresEmptyIdentity(t *testing.T) {
	l := loadLedger(testLedgerConfig(t))

	l.RecordResult("", PlayerResult{Position: 2})

	if len(l.entries) != 0 {
		t.Fatalf("anonymous result was persisted: %v", l.entries)
	}
}

func TestLedgerPersistAndReload(t *testing.T) {
	cfg := testLedgerConfig(t)

	l := loadLedger(cfg)
	l.RecordResult("token-b", PlayerResult{Position: 2, TotalPlayers: 2, QuestionsCorrect: 1, GameNumber: 7})

	reloaded := loadLedger(cfg)
	rec, ok := reloaded.HasPlayed("token-b")
	if !ok || !rec.HasPlayed {
		t.Fatal("record did not survive reload")
	}
	if rec.Result.GameNumber != 7 {
		t.Fatalf("wrong game number after reload: %d", rec.Result.GameNumber)
	}
}

func TestLedgerDiscardsStaleDay(t *testing.T) {
	cfg := testLedgerConfig(t)
	path := filepath.Join(cfg.dataDir, ledgerFile)

	stale, err := json.Marshal(ledgerBlob{
		Date: time.Now().AddDate(0, 0, -1).Format(dateLayout),
		Entries: map[string]DailyRecord{
			"token-c": {HasPlayed: true},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, stale, 0o644); err != nil {
		t.Fatal(err)
	}

	l := loadLedger(cfg)
	if _, ok := l.HasPlayed("token-c"); ok {
		t.Fatal("yesterday's record leaked into today")
	}
}

func TestLedgerResetForNewDay(t *testing.T) {
	cfg := testLedgerConfig(t)

	l := loadLedger(cfg)
	l.RecordResult("token-d", PlayerResult{Position: 1})
	l.ResetForNewDay()

	if _, ok := l.HasPlayed("token-d"); ok {
		t.Fatal("record survived the day rollover")
	}

	reloaded := loadLedger(cfg)
	if _, ok := reloaded.HasPlayed("token-d"); ok {
		t.Fatal("rollover was not persisted")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.json")

	if err := writeFileAtomic(path, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(path, []byte("second")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Fatalf("unexpected contents: %q", data)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file in dir, found %d", len(entries))
	}
}
