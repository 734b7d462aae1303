package game

import (
	"errors"
	"time"
)

var ErrRoundLocked = errors.New("round is locked")
var ErrCardAlreadyUsed = errors.New("card already used")
var ErrNoActiveQuestion = errors.New("no active question")
var ErrUnknownTeam = errors.New("unknown team")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdCreateQuestion  CommandType = "CreateQuestion"
	CmdSubmitAnswer    CommandType = "SubmitAnswer"
	CmdActivateCard    CommandType = "ActivateCard"
	CmdLockRound       CommandType = "LockRound"
	CmdCalculateScores CommandType = "CalculateScores"
	CmdResetGame       CommandType = "ResetGame"
)

// Command is the closed set of mutations on the game state. Role checks
// (admin, controller) happen in the room, which is the only place roles are
// known; the engine enforces state-machine legality.
type Command struct {
	Type           CommandType
	TeamID         int
	Answer         string
	Card           CardType
	RedirectTarget int
	Question       *Question
}

type EventType string

const (
	EvtQuestionCreated  EventType = "QuestionCreated"
	EvtAnswerSubmitted  EventType = "AnswerSubmitted"
	EvtCardActivated    EventType = "CardActivated"
	EvtRoundLocked      EventType = "RoundLocked"
	EvtScoresCalculated EventType = "ScoresCalculated"
	EvtGameReset        EventType = "GameReset"
)

type Event struct {
	Type     EventType
	TeamID   int
	Question *Question
	Result   *RoundResult
}

// Apply runs one command against the state and returns the events to
// broadcast plus the new state. The input state is never mutated; on error
// it is returned unchanged and no events are emitted, so a command commits
// as one unit or not at all.
func Apply(s State, cmd Command, now time.Time) ([]Event, State, error) {
	switch cmd.Type {
	case CmdCreateQuestion:
		ns := s.Clone()
		ns.CurrentQuestion = cmd.Question
		ns.CurrentRound++
		ns.IsLocked = false
		for i := range ns.Teams {
			ns.Teams[i].Answer = nil
		}
		return []Event{{Type: EvtQuestionCreated, Question: cmd.Question}}, ns, nil

	case CmdSubmitAnswer:
		if s.IsLocked {
			return nil, s, ErrRoundLocked
		}
		ns := s.Clone()
		team, ok := ns.TeamByID(cmd.TeamID)
		if !ok {
			return nil, s, ErrUnknownTeam
		}
		// Overwrites before lock are allowed; last write wins.
		answer := cmd.Answer
		team.Answer = &answer
		return []Event{{Type: EvtAnswerSubmitted, TeamID: cmd.TeamID}}, ns, nil

	case CmdActivateCard:
		if s.IsLocked {
			return nil, s, ErrRoundLocked
		}
		ns := s.Clone()
		team, ok := ns.TeamByID(cmd.TeamID)
		if !ok {
			return nil, s, ErrUnknownTeam
		}
		if avail, known := team.SpecialCards[cmd.Card]; !known || !avail {
			return nil, s, ErrCardAlreadyUsed
		}
		// Availability is consumed permanently at activation, regardless of
		// how the round turns out.
		team.SpecialCards[cmd.Card] = false
		team.ActiveCards[cmd.Card] = true
		if cmd.Card == CardRedirect && cmd.RedirectTarget != 0 {
			team.RedirectTarget = cmd.RedirectTarget
		}
		return []Event{{Type: EvtCardActivated, TeamID: cmd.TeamID}}, ns, nil

	case CmdLockRound:
		if s.IsLocked {
			// Idempotent: second lock is a no-op with nothing to broadcast.
			return nil, s, nil
		}
		ns := s.Clone()
		ns.IsLocked = true
		return []Event{{Type: EvtRoundLocked}}, ns, nil

	case CmdCalculateScores:
		if s.CurrentQuestion == nil {
			return nil, s, ErrNoActiveQuestion
		}
		ns := s.Clone()
		result := ScoreRound(ns.Teams, *ns.CurrentQuestion, ns.Rules)
		commitResult(&ns, result)
		ns.History = append(ns.History, HistoryEntry{
			Round:     ns.CurrentRound,
			Question:  *ns.CurrentQuestion,
			Results:   result,
			Timestamp: now,
		})
		return []Event{{Type: EvtScoresCalculated, Result: &result}}, ns, nil

	case CmdResetGame:
		ns := s.Clone()
		for i := range ns.Teams {
			ns.Teams[i] = newTeam(TeamSeed{ID: ns.Teams[i].ID, Name: ns.Teams[i].Name}, ns.Rules)
		}
		ns.CurrentQuestion = nil
		ns.CurrentRound = 0
		ns.IsLocked = false
		ns.History = nil
		return []Event{{Type: EvtGameReset}}, ns, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// commitResult writes the scored totals back into the teams and clears the
// round-scoped card state.
func commitResult(s *State, result RoundResult) {
	for _, tr := range result.Teams {
		team, ok := s.TeamByID(tr.ID)
		if !ok {
			continue
		}
		team.Score = tr.ScoreAfter
		for _, card := range AllCards {
			team.ActiveCards[card] = false
		}
		team.RedirectTarget = 0
	}
}
