package main

import (
	"path/filepath"
	"testing"
	"time"
)

func poolOf(counts map[string]int) []Question {
	var pool []Question
	for difficulty, n := range counts {
		for i := 0; i < n; i++ {
			pool = append(pool, Question{
				Text:         difficulty,
				Answers:      []string{"a", "b", "c", "d"},
				CorrectIndex: 0,
				Difficulty:   difficulty,
			})
		}
	}
	return pool
}

func assertTierLayout(t *testing.T, set []Question) {
	t.Helper()

	if len(set) != questionsPerGame {
		t.Fatalf("expected %d questions, got %d", questionsPerGame, len(set))
	}

	i := 0
	for _, tier := range tierCounts {
		for n := 0; n < tier.count; n++ {
			if set[i].Difficulty != tier.difficulty {
				t.Fatalf("question %d: difficulty %q, want %q", i+1, set[i].Difficulty, tier.difficulty)
			}
			i++
		}
	}
}

func TestBuildDailySetLayout(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		ok     bool
	}{
		{"exact fit", map[string]int{"easy": 3, "medium": 3, "hard": 4}, true},
		{"surplus everywhere", map[string]int{"easy": 10, "medium": 10, "hard": 10}, true},
		{"no hard questions", map[string]int{"easy": 10, "medium": 10}, true},
		{"unlabeled pool", map[string]int{"impossible": 30}, true},
		{"too small", map[string]int{"easy": 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := buildDailySet(poolOf(tt.counts))

			if !tt.ok {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}

			if err != nil {
				t.Fatal(err)
			}
			assertTierLayout(t, set)
		})
	}
}

func TestEmbeddedFallbackSet(t *testing.T) {
	cfg := &Config{}
	set := embeddedQuestions(cfg, testRNG())

	assertTierLayout(t, set)

	for i, q := range set {
		if len(q.Answers) != 4 {
			t.Fatalf("question %d has %d answers", i+1, len(q.Answers))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex > 3 {
			t.Fatalf("question %d has correct index %d", i+1, q.CorrectIndex)
		}
		if q.Text == "" {
			t.Fatalf("question %d has no text", i+1)
		}
	}
}

func TestShuffleOptionsTracksCorrectAnswer(t *testing.T) {
	rng := testRNG()

	for i := 0; i < 200; i++ {
		q := Question{
			Answers:      []string{"right", "w1", "w2", "w3"},
			CorrectIndex: 0,
		}
		shuffleOptions(&q, rng)

		if q.Answers[q.CorrectIndex] != "right" {
			t.Fatalf("correct index lost after shuffle: %v (index %d)", q.Answers, q.CorrectIndex)
		}
	}
}

func TestQuestionCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, questionCacheFile)
	today := time.Now().Format(dateLayout)

	set, err := buildDailySet(poolOf(map[string]int{"easy": 3, "medium": 3, "hard": 4}))
	if err != nil {
		t.Fatal(err)
	}

	if err := saveQuestionCache(path, today, set); err != nil {
		t.Fatal(err)
	}

	loaded, err := loadQuestionCache(path, today)
	if err != nil {
		t.Fatal(err)
	}
	assertTierLayout(t, loaded)

	// A cache written for a different day must be rejected.
	if _, err := loadQuestionCache(path, "1999-12-31"); err == nil {
		t.Fatal("stale cache was accepted")
	}
}

func TestDailyQuestionsFallsBackToEmbedded(t *testing.T) {
	cfg := &Config{
		dataDir:     t.TempDir(),
		questionURL: "http://127.0.0.1:1/unreachable",
	}

	set := dailyQuestions(cfg, testRNG())
	assertTierLayout(t, set)
}
