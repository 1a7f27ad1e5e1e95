package main

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	questionsPerGame  = 10
	questionCacheFile = "questions.json"
	dateLayout        = "2006-01-02"
)

// Tier order of the daily set: 3 easy, 3 medium, 4 hard.
var tierCounts = []struct {
	difficulty string
	count      int
}{
	{"easy", 3},
	{"medium", 3},
	{"hard", 4},
}

// Question is immutable once the daily set has been assembled.
type Question struct {
	Text         string   `json:"text"`
	Answers      []string `json:"answers"`
	CorrectIndex int      `json:"correct_index"`
	Difficulty   string   `json:"difficulty"`
	Category     string   `json:"category"`
}

// triviaResponse matches the Open Trivia DB wire format.
type triviaResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Difficulty       string   `json:"difficulty"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

type questionCache struct {
	Date      string     `json:"date"`
	Questions []Question `json:"questions"`
}

//go:embed assets/questions.json
var fallbackQuestions []byte

// dailyQuestions returns exactly 10 questions for today. The fallback
// chain (today's cache, remote fetch, embedded emergency set) means it
// never fails; the round loop can rely on a full set.
func dailyQuestions(cfg *Config, rng *rand.Rand) []Question {
	today := time.Now().Format(dateLayout)
	path := filepath.Join(cfg.dataDir, questionCacheFile)

	if cached, err := loadQuestionCache(path, today); err == nil {
		logf(cfg, "QUESTIONS: Loaded cached set for %s", today)
		return cached
	}

	if fetched, err := fetchRemoteQuestions(cfg, rng); err == nil {
		if err := saveQuestionCache(path, today, fetched); err != nil {
			logf(cfg, "QUESTIONS: Failed to cache daily set: %v", err)
		}
		logf(cfg, "QUESTIONS: Fetched daily set from %s", cfg.questionURL)
		return fetched
	} else {
		logf(cfg, "QUESTIONS: Remote fetch failed: %v", err)
	}

	return embeddedQuestions(cfg, rng)
}

func loadQuestionCache(path, today string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cache questionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	if cache.Date != today {
		return nil, fmt.Errorf("cached set is for %s, not %s", cache.Date, today)
	}
	if len(cache.Questions) != questionsPerGame {
		return nil, fmt.Errorf("cached set holds %d questions", len(cache.Questions))
	}

	return cache.Questions, nil
}

func saveQuestionCache(path, today string, questions []Question) error {
	data, err := json.Marshal(questionCache{
		Date:      today,
		Questions: questions,
	})
	if err != nil {
		return err
	}

	return writeFileAtomic(path, data)
}

func fetchRemoteQuestions(cfg *Config, rng *rand.Rand) ([]Question, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Get(cfg.questionURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code from question source: %d", resp.StatusCode)
	}

	var parsed triviaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.ResponseCode != 0 {
		return nil, fmt.Errorf("question source response code: %d", parsed.ResponseCode)
	}

	pool := make([]Question, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if len(r.IncorrectAnswers) != 3 {
			continue
		}

		q := Question{
			Text:       html.UnescapeString(r.Question),
			Difficulty: r.Difficulty,
			Category:   html.UnescapeString(r.Category),
		}

		q.Answers = make([]string, 0, 4)
		q.Answers = append(q.Answers, html.UnescapeString(r.CorrectAnswer))
		for _, wrong := range r.IncorrectAnswers {
			q.Answers = append(q.Answers, html.UnescapeString(wrong))
		}
		q.CorrectIndex = 0
		shuffleOptions(&q, rng)

		pool = append(pool, q)
	}

	return buildDailySet(pool)
}

// buildDailySet orders the pool into the fixed 3/3/4 tier layout. When a
// tier runs short, leftovers from other tiers are relabeled to fill it, so
// the daily set always carries the fixed distribution regardless of what
// the source reported.
func buildDailySet(pool []Question) ([]Question, error) {
	if len(pool) < questionsPerGame {
		return nil, fmt.Errorf("question pool too small: %d", len(pool))
	}

	buckets := make(map[string][]Question)
	for _, q := range pool {
		buckets[q.Difficulty] = append(buckets[q.Difficulty], q)
	}

	var leftovers []Question
	known := make(map[string]bool, len(tierCounts))
	for _, tier := range tierCounts {
		known[tier.difficulty] = true
		if extra := buckets[tier.difficulty]; len(extra) > tier.count {
			leftovers = append(leftovers, extra[tier.count:]...)
		}
	}
	for label, qs := range buckets {
		if !known[label] {
			leftovers = append(leftovers, qs...)
		}
	}

	set := make([]Question, 0, questionsPerGame)
	li := 0
	for _, tier := range tierCounts {
		taken := buckets[tier.difficulty]
		if len(taken) > tier.count {
			taken = taken[:tier.count]
		}
		set = append(set, taken...)

		// Top up short tiers from the leftovers, relabeled.
		for i := len(taken); i < tier.count; i++ {
			if li >= len(leftovers) {
				return nil, errors.New("question pool cannot fill tier distribution")
			}
			q := leftovers[li]
			li++
			q.Difficulty = tier.difficulty
			set = append(set, q)
		}
	}

	return set, nil
}

// embeddedQuestions is the last rung of the fallback chain.
func embeddedQuestions(cfg *Config, rng *rand.Rand) []Question {
	var pool []Question
	if err := json.Unmarshal(fallbackQuestions, &pool); err != nil {
		// The embedded set is validated by tests; reaching this means a
		// broken build.
		panic("embedded question set is invalid: " + err.Error())
	}

	for i := range pool {
		shuffleOptions(&pool[i], rng)
	}

	set, err := buildDailySet(pool)
	if err != nil {
		panic("embedded question set is incomplete: " + err.Error())
	}

	logf(cfg, "QUESTIONS: Using embedded fallback set")

	return set
}

// shuffleOptions permutes the answer list in place, tracking the correct
// index through the shuffle.
func shuffleOptions(q *Question, rng *rand.Rand) {
	for i := len(q.Answers) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		q.Answers[i], q.Answers[j] = q.Answers[j], q.Answers[i]
		switch q.CorrectIndex {
		case i:
			q.CorrectIndex = j
		case j:
			q.CorrectIndex = i
		}
	}
}
