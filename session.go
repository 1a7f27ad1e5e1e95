package main

// Session holds the server-side state for one connection. Sessions are
// owned by the engine: every read and write happens through engine
// methods under the engine mutex.
type Session struct {
	Identity    string // opaque client-supplied token, set at most once
	Name        string
	Ready       bool
	Alive       bool
	Answer      int // -1 while the slot is empty
	Correct     int
	PlayedToday bool
	LastResult  *PlayerResult
	LeftGame    bool
	InGame      bool // participated in the current game
	PartyCode   string
}

// eligible reports whether a session may enter the next game.
func (s *Session) eligible() bool {
	return !s.PlayedToday && !s.LeftGame
}

// Identify binds a client-supplied identity to the session and restores
// today's status from the ledger. Identity is trusted as-is; an unknown
// token is simply a fresh participant. A second identify on the same
// connection is ignored.
func (e *Engine) Identify(c *Client, identity string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.clients[c]
	if !ok || identity == "" {
		return
	}

	if s.Identity == "" {
		s.Identity = identity
		if rec, found := e.ledger.HasPlayed(identity); found {
			s.PlayedToday = rec.HasPlayed
			s.LastResult = rec.Result
		}
		logf(e.cfg, "GAME: Client %s identified (played today: %t)", c.id, s.PlayedToday)
	}

	e.trySendLocked(c, e.gameStateMessageLocked(s))
	e.broadcastPlayerCountLocked()
}

// SendGameState answers a client's explicit state request.
func (e *Engine) SendGameState(c *Client) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.clients[c]
	if !ok {
		return
	}

	e.trySendLocked(c, e.gameStateMessageLocked(s))
}

// SubmitAnswer fills the session's answer slot for the current round.
// Submissions are honored only while the round timer is still running;
// anything arriving after the zero tick is silently ignored.
func (e *Engine) SubmitAnswer(c *Client, answer int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != statusPlaying || !e.accepting {
		return
	}
	if answer < 0 || answer > 3 {
		return
	}

	s, ok := e.clients[c]
	if !ok || !s.InGame || !s.Alive || s.LeftGame {
		return
	}

	s.Answer = answer
}

// LeaveGame marks the session a voluntary spectator. It keeps receiving
// lobby updates but drops out of round broadcasts, elimination, and the
// winner set.
func (e *Engine) LeaveGame(c *Client) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.clients[c]
	if !ok || s.LeftGame {
		return
	}

	s.LeftGame = true
	logf(e.cfg, "GAME: Client %s left the game", c.id)

	e.broadcastPlayerCountLocked()
}
