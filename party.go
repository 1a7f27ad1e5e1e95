package main

import (
	"bufio"
	"bytes"
	"crypto/rand"
	_ "embed"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// No I, O, 0 or 1: party codes get read aloud and retyped.
	partyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	partyCodeLength   = 6
	partyMaxMembers   = 5
	partyNameMaxLen   = 10
)

const (
	memberWaiting    = "waiting"
	memberAlive      = "alive"
	memberEliminated = "eliminated"
)

//go:embed assets/badwords.txt
var badWordsRaw []byte

var badWords = loadBadWords()

func loadBadWords() []string {
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(badWordsRaw))
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

func containsProfanity(name string) bool {
	lowered := strings.ToLower(name)
	for _, word := range badWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// PartyMember mirrors one session's standing inside a party. The client
// pointer stays server-side; only the display fields go over the wire.
type PartyMember struct {
	client          *Client
	Name            string `json:"name"`
	Status          string `json:"status"`
	EliminatedRound int    `json:"eliminated_round,omitempty"`
}

// Party is an ephemeral team of up to 5 sessions. It lives for exactly
// one game cycle: the Finished to Waiting reset discards all parties.
type Party struct {
	Code      string
	Members   []*PartyMember
	CreatedAt time.Time
}

// validatePartyName returns a user-facing reason, or "" when the name
// passes. These are soft failures carried in acks, never errors.
func validatePartyName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Name cannot be empty"
	}
	if utf8.RuneCountInString(name) > partyNameMaxLen {
		return "Name must be 10 characters or fewer"
	}
	if containsProfanity(name) {
		return "Name contains inappropriate language"
	}
	return ""
}

// newPartyCodeLocked generates a crypto-random party code and ensures it
// doesn't collide with existing parties.
func (e *Engine) newPartyCodeLocked() string {
	for {
		buf := make([]byte, partyCodeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, partyCodeLength)
		for i := range out {
			out[i] = partyCodeAlphabet[int(buf[i])%len(partyCodeAlphabet)]
		}
		code := string(out)

		if _, exists := e.parties[code]; !exists {
			return code
		}
	}
}

// CreateParty allocates a fresh one-member party for the caller.
func (e *Engine) CreateParty(c *Client, name string) PartyAckMessage {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.clients[c]
	if !ok {
		return partyFailure("Not connected")
	}

	if reason := validatePartyName(name); reason != "" {
		return partyFailure(reason)
	}

	e.leaveCurrentPartyLocked(c)

	party := &Party{
		Code:      e.newPartyCodeLocked(),
		CreatedAt: time.Now(),
	}
	party.Members = append(party.Members, &PartyMember{
		client: c,
		Name:   name,
		Status: memberWaiting,
	})

	e.parties[party.Code] = party
	s.PartyCode = party.Code
	s.Name = name

	logf(e.cfg, "PARTY: %q created party %s", name, party.Code)

	return PartyAckMessage{
		Type:    "party_ack",
		Success: true,
		Code:    party.Code,
		Members: rosterOf(party),
	}
}

// JoinParty appends the caller to an existing party and broadcasts the
// updated roster to every member, the joiner included.
func (e *Engine) JoinParty(c *Client, code, name string) PartyAckMessage {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.clients[c]
	if !ok {
		return partyFailure("Not connected")
	}

	if reason := validatePartyName(name); reason != "" {
		return partyFailure(reason)
	}

	party, exists := e.parties[strings.ToUpper(code)]
	if !exists {
		return partyFailure("Party not found")
	}
	if len(party.Members) >= partyMaxMembers {
		return partyFailure("Party is full (max 5 members)")
	}
	for _, member := range party.Members {
		if member.client == c {
			return partyFailure("You are already in this party")
		}
	}

	e.leaveCurrentPartyLocked(c)

	party.Members = append(party.Members, &PartyMember{
		client: c,
		Name:   name,
		Status: memberWaiting,
	})
	s.PartyCode = party.Code
	s.Name = name

	logf(e.cfg, "PARTY: %q joined party %s (%d members)", name, party.Code, len(party.Members))

	e.broadcastPartyLocked(party)

	return PartyAckMessage{
		Type:    "party_ack",
		Success: true,
		Code:    party.Code,
		Members: rosterOf(party),
	}
}

// LeaveParty removes the caller from its party. No-op if the caller is
// not in one.
func (e *Engine) LeaveParty(c *Client) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.leaveCurrentPartyLocked(c)
}

// PartyExists reports whether a code resolves to an active party.
func (e *Engine) PartyExists(code string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.parties[strings.ToUpper(code)]
	return ok
}

// leaveCurrentPartyLocked detaches a client from its party, deleting the
// party when it empties and otherwise broadcasting the updated roster.
func (e *Engine) leaveCurrentPartyLocked(c *Client) {
	s, ok := e.clients[c]
	if !ok || s.PartyCode == "" {
		return
	}

	party, exists := e.parties[s.PartyCode]
	s.PartyCode = ""
	if !exists {
		return
	}

	dst := party.Members[:0]
	for _, member := range party.Members {
		if member.client == c {
			continue
		}
		dst = append(dst, member)
	}
	party.Members = dst

	if len(party.Members) == 0 {
		delete(e.parties, party.Code)
		logf(e.cfg, "PARTY: Party %s emptied and removed", party.Code)
		return
	}

	e.broadcastPartyLocked(party)
}

// rosterOf copies the wire-visible member fields.
func rosterOf(party *Party) []PartyMember {
	roster := make([]PartyMember, 0, len(party.Members))
	for _, member := range party.Members {
		roster = append(roster, *member)
	}
	return roster
}

func (e *Engine) broadcastPartyLocked(party *Party) {
	msg := PartyUpdateMessage{
		Type:    "party_update",
		Code:    party.Code,
		Members: rosterOf(party),
	}

	for _, member := range party.Members {
		e.trySendLocked(member.client, msg)
	}
}

// rosterForLocked returns the roster of the party the client belongs to,
// or nil. Used to annotate question and results broadcasts per recipient.
func (e *Engine) rosterForLocked(c *Client) []PartyMember {
	s, ok := e.clients[c]
	if !ok || s.PartyCode == "" {
		return nil
	}
	party, exists := e.parties[s.PartyCode]
	if !exists {
		return nil
	}
	return rosterOf(party)
}

// mirrorPartyStatusLocked stamps each member's standing after a round:
// elimination state always follows the member's session.
func (e *Engine) mirrorPartyStatusLocked(round int) {
	for _, party := range e.parties {
		for _, member := range party.Members {
			s, ok := e.clients[member.client]
			if !ok || !s.InGame || s.LeftGame {
				continue
			}

			if s.Alive {
				member.Status = memberAlive
			} else if member.Status != memberEliminated {
				member.Status = memberEliminated
				member.EliminatedRound = round
			}
		}
	}
}

func partyFailure(reason string) PartyAckMessage {
	return PartyAckMessage{
		Type:    "party_ack",
		Success: false,
		Error:   reason,
	}
}
