package main

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	statusWaiting  = "waiting"
	statusStarting = "starting"
	statusPlaying  = "playing"
	statusFinished = "finished"
)

// Engine owns every piece of mutable game state: connected sessions, the
// lifecycle state machine, parties, the ghost crowd, and the play ledger.
// One instance exists per process, constructed at startup and passed to
// every handler. Exported methods take the mutex; helpers with a Locked
// suffix assume it is already held.
type Engine struct {
	mu sync.Mutex

	cfg *Config
	rng *rand.Rand

	clients map[*Client]*Session
	parties map[string]*Party
	ghosts  *ghostCrowd
	ledger  *Ledger

	status        string
	gameNumber    int
	questions     []Question
	questionIndex int
	totalPlayers  int
	accepting     bool

	// fixedQuestions bypasses the daily provider; set only by tests.
	fixedQuestions []Question

	// Pacing, shortened by tests.
	tick         time.Duration
	intermission time.Duration
	resetDelay   time.Duration
}

func NewEngine(cfg *Config) *Engine {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	return &Engine{
		cfg:          cfg,
		rng:          rng,
		clients:      make(map[*Client]*Session),
		parties:      make(map[string]*Party),
		ghosts:       newGhostCrowd(cfg.ghostMin, cfg.ghostMax, rng),
		ledger:       loadLedger(cfg),
		status:       statusWaiting,
		tick:         time.Second,
		intermission: 5 * time.Second,
		resetDelay:   10 * time.Second,
	}
}

// Register adds a freshly upgraded connection and sends it the current
// game number and state snapshot.
func (e *Engine) Register(c *Client) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &Session{
		Name:   fmt.Sprintf("player-%.8s", c.id),
		Answer: -1,
	}
	e.clients[c] = s

	e.trySendLocked(c, GameNumberMessage{
		Type:       "game_number",
		GameNumber: e.gameNumber,
	})
	e.trySendLocked(c, e.gameStateMessageLocked(s))

	e.broadcastPlayerCountLocked()
}

// Unregister removes a disconnected client. Round bookkeeping already
// recorded for this session is not rolled back.
func (e *Engine) Unregister(c *Client) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.clients[c]; !ok {
		return
	}

	e.leaveCurrentPartyLocked(c)
	delete(e.clients, c)
	close(c.send)

	e.broadcastPlayerCountLocked()
}

// trySendLocked queues a message for one client, dropping the client if
// its buffer is full.
func (e *Engine) trySendLocked(c *Client, msg any) {
	if _, ok := e.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(e.clients, c)
		close(c.send)
	}
}

func (e *Engine) broadcastLocked(msg any) {
	for c := range e.clients {
		e.trySendLocked(c, msg)
	}
}

// Send queues a message for a single client.
func (e *Engine) Send(c *Client, msg any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.trySendLocked(c, msg)
}

func (e *Engine) broadcast(msg any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.broadcastLocked(msg)
}

// waitingCountLocked counts connected sessions still eligible to play.
func (e *Engine) waitingCountLocked() int {
	count := 0
	for _, s := range e.clients {
		if s.eligible() {
			count++
		}
	}
	return count
}

// displayCountLocked folds the ghost crowd into the waiting count, or
// masks it entirely while the reveal window is closed.
func (e *Engine) displayCountLocked() (count int, reveal bool) {
	reveal = e.cfg.revealOpen(time.Now())
	if !reveal {
		return 0, false
	}
	return e.waitingCountLocked() + e.ghosts.Alive(), true
}

func (e *Engine) broadcastPlayerCountLocked() {
	count, reveal := e.displayCountLocked()
	e.broadcastLocked(PlayerCountMessage{
		Type:        "player_count",
		Count:       count,
		RevealCount: reveal,
	})
}

func (e *Engine) gameStateMessageLocked(s *Session) GameStateMessage {
	count, reveal := e.displayCountLocked()

	return GameStateMessage{
		Type:           "game_state",
		Status:         e.status,
		HasPlayedToday: s.PlayedToday,
		TodayResult:    s.LastResult,
		WaitingPlayers: count,
		RevealCount:    reveal,
		TestMode:       e.cfg.testMode,
	}
}

// DayRollover discards yesterday's ledger and lets everyone play again.
// Triggered by the scheduler at local midnight.
func (e *Engine) DayRollover() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ledger.ResetForNewDay()
	e.ghosts.Reset()

	for c, s := range e.clients {
		s.PlayedToday = false
		s.LastResult = nil
		e.trySendLocked(c, e.gameStateMessageLocked(s))
	}

	e.broadcastPlayerCountLocked()
}
