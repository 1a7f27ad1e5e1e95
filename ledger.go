package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const ledgerFile = "ledger.json"

// PlayerResult is the terminal outcome written once per identity per day.
type PlayerResult struct {
	Position         int `json:"position"`
	TotalPlayers     int `json:"total_players"`
	QuestionsCorrect int `json:"questions_correct"`
	GameNumber       int `json:"game_number"`
}

type DailyRecord struct {
	HasPlayed bool          `json:"has_played"`
	Result    *PlayerResult `json:"result,omitempty"`
}

// Ledger tracks which identities have already played today. The whole
// table is day-scoped: a stored blob for any other day is discarded on
// load and at midnight rollover. All access happens under the engine
// mutex, so the ledger itself carries no lock.
type Ledger struct {
	cfg     *Config
	path    string
	date    string
	entries map[string]DailyRecord
}

type ledgerBlob struct {
	Date    string                 `json:"date"`
	Entries map[string]DailyRecord `json:"entries"`
}

func loadLedger(cfg *Config) *Ledger {
	l := &Ledger{
		cfg:     cfg,
		path:    filepath.Join(cfg.dataDir, ledgerFile),
		date:    time.Now().Format(dateLayout),
		entries: make(map[string]DailyRecord),
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logf(cfg, "LEDGER: Failed to read %s: %v", l.path, err)
		}
		return l
	}

	var blob ledgerBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		logf(cfg, "LEDGER: Discarding unreadable ledger: %v", err)
		return l
	}

	if blob.Date != l.date {
		logf(cfg, "LEDGER: Discarding stale ledger from %s", blob.Date)
		return l
	}

	if blob.Entries != nil {
		l.entries = blob.Entries
	}
	logf(cfg, "LEDGER: Restored %d records for %s", len(l.entries), l.date)

	return l
}

// RecordResult writes a terminal result for an identity. First write of
// the day wins; repeat writes for the same identity are ignored, so an
// identity plays at most once daily no matter how often it reconnects.
func (l *Ledger) RecordResult(identity string, result PlayerResult) {
	if identity == "" {
		return
	}
	if existing, ok := l.entries[identity]; ok && existing.HasPlayed {
		return
	}

	res := result
	l.entries[identity] = DailyRecord{
		HasPlayed: true,
		Result:    &res,
	}

	l.persist()
}

// HasPlayed looks up an identity, used at identify time to restore a
// reconnecting participant's status.
func (l *Ledger) HasPlayed(identity string) (DailyRecord, bool) {
	rec, ok := l.entries[identity]
	return rec, ok
}

// ResetForNewDay discards the table at midnight rollover.
func (l *Ledger) ResetForNewDay() {
	l.date = time.Now().Format(dateLayout)
	l.entries = make(map[string]DailyRecord)
	l.persist()
	logf(l.cfg, "LEDGER: Reset for %s", l.date)
}

// persist rewrites the whole blob. Failures are logged and dropped; a
// round in progress never blocks on ledger I/O.
func (l *Ledger) persist() {
	data, err := json.Marshal(ledgerBlob{
		Date:    l.date,
		Entries: l.entries,
	})
	if err != nil {
		logf(l.cfg, "LEDGER: Failed to marshal: %v", err)
		return
	}

	if err := writeFileAtomic(l.path, data); err != nil {
		logf(l.cfg, "LEDGER: Failed to persist: %v", err)
	}
}

// writeFileAtomic writes to a temp file in the target directory and
// renames it into place, so a crash mid-write never truncates the blob.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}
