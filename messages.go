package main

// Messages coming from clients. A single envelope carries every inbound
// event; the type switch in readPump validates fields per event before
// anything reaches the engine.
type ClientMessage struct {
	Type     string `json:"type"`               // "identify", "get_state", "answer", "leave_game", "create_party", "join_party", "leave_party", "start_game"
	Identity string `json:"identity,omitempty"` // identify
	Answer   *int   `json:"answer,omitempty"`   // answer
	Name     string `json:"name,omitempty"`     // create_party / join_party
	Code     string `json:"code,omitempty"`     // join_party
}

// GameNumberMessage is sent on connect and at the start of each game.
type GameNumberMessage struct {
	Type       string `json:"type"` // "game_number"
	GameNumber int    `json:"game_number"`
}

// GameStateMessage is the per-client status snapshot, sent on connect,
// on identify, and whenever the lobby resets.
type GameStateMessage struct {
	Type           string        `json:"type"` // "game_state"
	Status         string        `json:"status"`
	HasPlayedToday bool          `json:"has_played_today"`
	TodayResult    *PlayerResult `json:"today_result,omitempty"`
	WaitingPlayers int           `json:"waiting_players"`
	RevealCount    bool          `json:"reveal_count"`
	TestMode       bool          `json:"test_mode"`
}

// PlayerCountMessage broadcasts the waiting count on membership changes.
type PlayerCountMessage struct {
	Type        string `json:"type"` // "player_count"
	Count       int    `json:"count"`
	RevealCount bool   `json:"reveal_count"`
}

type GameStartingMessage struct {
	Type string `json:"type"` // "game_starting"
}

type CountdownMessage struct {
	Type    string `json:"type"` // "countdown"
	Seconds int    `json:"seconds"`
}

// QuestionMessage opens a round. PartyMembers is populated only for
// recipients currently in a party.
type QuestionMessage struct {
	Type             string        `json:"type"` // "question"
	Number           int           `json:"number"`
	Total            int           `json:"total"`
	Text             string        `json:"text"`
	Answers          []string      `json:"answers"`
	Difficulty       string        `json:"difficulty"`
	Category         string        `json:"category"`
	TimeLimitSeconds int           `json:"time_limit_seconds"`
	PartyMembers     []PartyMember `json:"party_members,omitempty"`
}

type TimerMessage struct {
	Type        string `json:"type"` // "timer"
	SecondsLeft int    `json:"seconds_left"`
}

// ResultsMessage closes a round.
type ResultsMessage struct {
	Type              string        `json:"type"` // "results"
	Correct           bool          `json:"correct"`
	CorrectIndex      int           `json:"correct_index"`
	EliminatedCount   int           `json:"eliminated_count"`
	RemainingCount    int           `json:"remaining_count"`
	TotalPlayers      int           `json:"total_players"`
	AnswerPercentages [4]int        `json:"answer_percentages"`
	PartyMembers      []PartyMember `json:"party_members,omitempty"`
}

// EliminatedMessage is sent only to participants knocked out this round.
type EliminatedMessage struct {
	Type             string `json:"type"` // "eliminated"
	Position         int    `json:"position"`
	TotalPlayers     int    `json:"total_players"`
	QuestionsCorrect int    `json:"questions_correct"`
	GameNumber       int    `json:"game_number"`
}

type LeaderboardEntry struct {
	Name           string `json:"name"`
	CorrectAnswers int    `json:"correct_answers"`
	Alive          bool   `json:"alive"`
}

type GameOverMessage struct {
	Type              string             `json:"type"` // "game_over"
	Winners           []string           `json:"winners"`
	Leaderboard       []LeaderboardEntry `json:"leaderboard"`
	GameNumber        int                `json:"game_number"`
	TotalParticipants int                `json:"total_participants"`
	FinalQuestion     int                `json:"final_question"`
}

// PartyUpdateMessage carries the full roster to every member of a party.
type PartyUpdateMessage struct {
	Type    string        `json:"type"` // "party_update"
	Code    string        `json:"code"`
	Members []PartyMember `json:"members"`
}

// PartyAckMessage acknowledges create_party and join_party requests.
// Validation failures are soft: Success is false and Error holds the
// user-facing reason.
type PartyAckMessage struct {
	Type    string        `json:"type"` // "party_ack"
	Success bool          `json:"success"`
	Code    string        `json:"code,omitempty"`
	Members []PartyMember `json:"members,omitempty"`
	Error   string        `json:"error,omitempty"`
}
