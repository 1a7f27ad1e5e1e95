package main

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"
)

const countdownFrom = 3

// StartGame moves the lobby from Waiting to Starting and kicks off the
// game loop. Triggered by the daily scheduler or, in test mode, by a
// client. A trigger arriving outside Waiting, or with nobody eligible,
// is a logged no-op.
func (e *Engine) StartGame(trigger string) {
	e.mu.Lock()

	if e.status != statusWaiting {
		logf(e.cfg, "GAME: Ignoring %s start while %s", trigger, e.status)
		e.mu.Unlock()
		return
	}

	eligible := 0
	for _, s := range e.clients {
		if s.eligible() {
			s.Ready = true
			eligible++
		}
	}
	if eligible == 0 {
		logf(e.cfg, "GAME: Ignoring %s start with no eligible players", trigger)
		e.mu.Unlock()
		return
	}

	e.status = statusStarting
	logf(e.cfg, "GAME: Starting (%s trigger, %d eligible)", trigger, eligible)

	e.broadcastLocked(GameStartingMessage{Type: "game_starting"})
	e.mu.Unlock()

	go e.runGame()
}

// runGame drives one full game cycle: countdown, participant snapshot,
// round loop, finish, lobby reset. It is the only goroutine that touches
// the lifecycle once Starting is entered; it sleeps between phases and
// takes the engine mutex for each mutation.
func (e *Engine) runGame() {
	questions := e.fixedQuestions
	if questions == nil {
		qrng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		questions = dailyQuestions(e.cfg, qrng)
	}

	for i := countdownFrom; i >= 1; i-- {
		e.broadcast(CountdownMessage{Type: "countdown", Seconds: i})
		time.Sleep(e.tick)
	}

	e.mu.Lock()
	e.questions = questions
	e.questionIndex = 0
	e.gameNumber++

	real := 0
	for _, s := range e.clients {
		if !s.Ready || !s.eligible() {
			continue
		}
		s.Alive = true
		s.InGame = true
		s.Correct = 0
		s.Answer = -1
		s.PlayedToday = true
		real++
	}

	e.totalPlayers = real + e.ghosts.Alive()
	e.status = statusPlaying
	logf(e.cfg, "GAME: Game %d underway, %d real + %d ghosts", e.gameNumber, real, e.ghosts.Alive())

	e.broadcastLocked(GameNumberMessage{
		Type:       "game_number",
		GameNumber: e.gameNumber,
	})
	e.mu.Unlock()

	for {
		e.openRound()

		for remaining := e.cfg.roundSeconds; remaining > 0; remaining-- {
			e.broadcastRound(TimerMessage{Type: "timer", SecondsLeft: remaining})
			time.Sleep(e.tick)
		}

		done := e.closeRound()

		time.Sleep(e.intermission)

		if done {
			break
		}
	}

	e.finishGame()
	time.Sleep(e.resetDelay)
	e.resetGame()
}

// openRound clears answer slots and broadcasts the current question,
// annotated with the recipient's party roster where one exists.
func (e *Engine) openRound() {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.questions[e.questionIndex]

	for _, s := range e.clients {
		if s.InGame {
			s.Answer = -1
		}
	}
	e.accepting = true

	base := QuestionMessage{
		Type:             "question",
		Number:           e.questionIndex + 1,
		Total:            len(e.questions),
		Text:             q.Text,
		Answers:          q.Answers,
		Difficulty:       q.Difficulty,
		Category:         q.Category,
		TimeLimitSeconds: e.cfg.roundSeconds,
	}

	for c, s := range e.clients {
		if s.LeftGame {
			continue
		}
		msg := base
		msg.PartyMembers = e.rosterForLocked(c)
		e.trySendLocked(c, msg)
	}
}

// broadcastRound sends a message to every non-spectator session.
func (e *Engine) broadcastRound(msg any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for c, s := range e.clients {
		if s.LeftGame {
			continue
		}
		e.trySendLocked(c, msg)
	}
}

// closeRound freezes answers, runs elimination, broadcasts results, and
// reports whether the terminal condition holds.
func (e *Engine) closeRound() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.accepting = false

	q := e.questions[e.questionIndex]
	outcome := e.runEliminationLocked(q)

	for c, s := range e.clients {
		if s.LeftGame {
			continue
		}
		msg := ResultsMessage{
			Type:              "results",
			Correct:           s.InGame && s.Alive,
			CorrectIndex:      q.CorrectIndex,
			EliminatedCount:   outcome.eliminated,
			RemainingCount:    outcome.remaining,
			TotalPlayers:      e.totalPlayers,
			AnswerPercentages: outcome.percentages,
			PartyMembers:      e.rosterForLocked(c),
		}
		e.trySendLocked(c, msg)
	}

	done := e.questionIndex+1 >= len(e.questions) || outcome.remaining <= 1
	if !done {
		e.questionIndex++
	}

	return done
}

type roundOutcome struct {
	eliminated  int // real + ghost, this round
	remaining   int // real + ghost, after this round
	percentages [4]int
}

// runEliminationLocked applies one round's answers: partition real
// participants into survivors and eliminated, attrit the ghost crowd,
// assign the round's tied elimination position, persist terminal results,
// compute the answer distribution, and mirror party statuses.
func (e *Engine) runEliminationLocked(q Question) roundOutcome {
	var votes [4]int
	realAlive := 0
	var knockedOut []*Client

	for c, s := range e.clients {
		if !s.Alive || s.LeftGame || !s.InGame {
			continue
		}

		if s.Answer >= 0 {
			votes[s.Answer]++
		}

		if s.Answer == q.CorrectIndex {
			s.Correct++
			realAlive++
		} else {
			s.Alive = false
			knockedOut = append(knockedOut, c)
		}
	}

	ghostsLost := e.ghosts.Attrit(q.Difficulty)
	ghostsAlive := e.ghosts.Alive()

	// Synthetic votes: surviving ghosts answered correctly, the lost ones
	// spread uniformly over the three wrong options.
	votes[q.CorrectIndex] += ghostsAlive
	wrongIndexes := make([]int, 0, 3)
	for i := range votes {
		if i != q.CorrectIndex {
			wrongIndexes = append(wrongIndexes, i)
		}
	}
	for i := 0; i < ghostsLost; i++ {
		votes[wrongIndexes[e.rng.IntN(len(wrongIndexes))]]++
	}

	outcome := roundOutcome{
		eliminated:  len(knockedOut) + ghostsLost,
		remaining:   realAlive + ghostsAlive,
		percentages: answerPercentages(votes),
	}

	// Everyone knocked out this round answered within the same window, so
	// they all share one rank.
	position := outcome.remaining + outcome.eliminated
	for _, c := range knockedOut {
		s := e.clients[c]
		result := PlayerResult{
			Position:         position,
			TotalPlayers:     e.totalPlayers,
			QuestionsCorrect: s.Correct,
			GameNumber:       e.gameNumber,
		}
		s.LastResult = &result

		if s.Identity != "" {
			e.ledger.RecordResult(s.Identity, result)
		}

		e.trySendLocked(c, EliminatedMessage{
			Type:             "eliminated",
			Position:         position,
			TotalPlayers:     e.totalPlayers,
			QuestionsCorrect: s.Correct,
			GameNumber:       e.gameNumber,
		})
	}

	e.mirrorPartyStatusLocked(e.questionIndex + 1)

	logf(e.cfg, "GAME: Round %d: %d eliminated, %d remain", e.questionIndex+1, outcome.eliminated, outcome.remaining)

	return outcome
}

func answerPercentages(votes [4]int) [4]int {
	total := 0
	for _, v := range votes {
		total += v
	}

	var percentages [4]int
	if total == 0 {
		return percentages
	}

	for i, v := range votes {
		percentages[i] = int(math.Round(float64(v) / float64(total) * 100))
	}
	return percentages
}

// finishGame writes the winners' results and broadcasts the leaderboard.
func (e *Engine) finishGame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status = statusFinished

	var winners []string
	for _, s := range e.clients {
		if !s.InGame || !s.Alive || s.LeftGame {
			continue
		}

		winners = append(winners, s.Name)
		result := PlayerResult{
			Position:         1,
			TotalPlayers:     e.totalPlayers,
			QuestionsCorrect: s.Correct,
			GameNumber:       e.gameNumber,
		}
		s.LastResult = &result

		if s.Identity != "" {
			e.ledger.RecordResult(s.Identity, result)
		}
	}

	logf(e.cfg, "GAME: Game %d over, %d winners of %d participants", e.gameNumber, len(winners), e.totalPlayers)

	e.broadcastLocked(GameOverMessage{
		Type:              "game_over",
		Winners:           winners,
		Leaderboard:       e.leaderboardLocked(),
		GameNumber:        e.gameNumber,
		TotalParticipants: e.totalPlayers,
		FinalQuestion:     e.questionIndex + 1,
	})
}

// leaderboardLocked ranks this game's real participants: correct answers
// descending, survivors ahead on ties. Top 10 only.
func (e *Engine) leaderboardLocked() []LeaderboardEntry {
	var entries []LeaderboardEntry
	for _, s := range e.clients {
		if !s.InGame {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Name:           s.Name,
			CorrectAnswers: s.Correct,
			Alive:          s.Alive && !s.LeftGame,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CorrectAnswers != entries[j].CorrectAnswers {
			return entries[i].CorrectAnswers > entries[j].CorrectAnswers
		}
		if entries[i].Alive != entries[j].Alive {
			return entries[i].Alive
		}
		return entries[i].Name < entries[j].Name
	})

	if len(entries) > 10 {
		entries = entries[:10]
	}
	return entries
}

// resetGame returns the lobby to Waiting for the next cycle. Played-today
// flags and stored results survive until the day rolls over.
func (e *Engine) resetGame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ghosts.Reset()
	e.parties = make(map[string]*Party)

	for _, s := range e.clients {
		s.Ready = false
		s.Alive = false
		s.InGame = false
		s.Answer = -1
		s.Correct = 0
		s.PartyCode = ""
	}

	e.status = statusWaiting
	e.questionIndex = 0
	e.accepting = false

	logf(e.cfg, "GAME: Lobby reset, %d ghosts queued", e.ghosts.Population())

	for c, s := range e.clients {
		e.trySendLocked(c, e.gameStateMessageLocked(s))
	}
	e.broadcastPlayerCountLocked()
}
