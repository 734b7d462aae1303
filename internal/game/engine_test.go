package game

import (
	"errors"
	"testing"
	"time"
)

func newGame(n int) State {
	rules := testRules(n)
	seeds := make([]TeamSeed, 0, n)
	for i := 1; i <= n; i++ {
		seeds = append(seeds, TeamSeed{ID: i, Name: ""})
	}
	return NewState(rules, seeds)
}

func mustApply(t *testing.T, s State, cmd Command) ([]Event, State) {
	t.Helper()
	events, ns, err := Apply(s, cmd, time.Now())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return events, ns
}

func containsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func TestApply_CreateQuestionStartsFreshRound(t *testing.T) {
	s := newGame(3)
	s.IsLocked = true
	s.CurrentRound = 4
	a := "stale"
	s.Teams[0].Answer = &a

	q := question
	events, ns := mustApply(t, s, Command{Type: CmdCreateQuestion, Question: &q})

	if !containsEvent(events, EvtQuestionCreated) {
		t.Fatalf("want EvtQuestionCreated")
	}
	if ns.CurrentRound != 5 || ns.IsLocked || ns.CurrentQuestion == nil {
		t.Fatalf("round not reset: %+v", ns)
	}
	for _, team := range ns.Teams {
		if team.Answer != nil {
			t.Fatalf("answers must be cleared on a new question")
		}
	}
}

func TestApply_SubmitAnswerLastWriteWins(t *testing.T) {
	s := newGame(3)
	_, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, TeamID: 2, Answer: "first"})
	_, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, TeamID: 2, Answer: "second"})

	team, _ := s.TeamByID(2)
	if team.Answer == nil || *team.Answer != "second" {
		t.Fatalf("want last write to win, got %v", team.Answer)
	}
}

func TestApply_SubmitAnswerWhileLocked(t *testing.T) {
	s := newGame(3)
	s.IsLocked = true

	_, _, err := Apply(s, Command{Type: CmdSubmitAnswer, TeamID: 1, Answer: "x"}, time.Now())
	if !errors.Is(err, ErrRoundLocked) {
		t.Fatalf("want ErrRoundLocked, got %v", err)
	}
}

func TestApply_SubmitAnswerUnknownTeam(t *testing.T) {
	s := newGame(3)

	_, _, err := Apply(s, Command{Type: CmdSubmitAnswer, TeamID: 42, Answer: "x"}, time.Now())
	if !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("want ErrUnknownTeam, got %v", err)
	}
}

func TestApply_ActivateCardConsumesPermanently(t *testing.T) {
	s := newGame(3)

	_, s = mustApply(t, s, Command{Type: CmdActivateCard, TeamID: 1, Card: CardImmunity})
	team, _ := s.TeamByID(1)
	if team.SpecialCards[CardImmunity] || !team.ActiveCards[CardImmunity] {
		t.Fatalf("card not consumed/armed: %+v", team)
	}

	_, _, err := Apply(s, Command{Type: CmdActivateCard, TeamID: 1, Card: CardImmunity}, time.Now())
	if !errors.Is(err, ErrCardAlreadyUsed) {
		t.Fatalf("want ErrCardAlreadyUsed, got %v", err)
	}
}

func TestApply_ActivateUnknownCardRejected(t *testing.T) {
	s := newGame(3)

	_, _, err := Apply(s, Command{Type: CmdActivateCard, TeamID: 1, Card: CardType("wildcard")}, time.Now())
	if !errors.Is(err, ErrCardAlreadyUsed) {
		t.Fatalf("want ErrCardAlreadyUsed, got %v", err)
	}
}

func TestApply_ActivateRedirectRecordsTarget(t *testing.T) {
	s := newGame(5)

	_, s = mustApply(t, s, Command{Type: CmdActivateCard, TeamID: 2, Card: CardRedirect, RedirectTarget: 5})
	team, _ := s.TeamByID(2)
	if team.RedirectTarget != 5 {
		t.Fatalf("want redirect target 5, got %d", team.RedirectTarget)
	}
}

func TestApply_LockRoundIdempotent(t *testing.T) {
	s := newGame(3)

	events, s := mustApply(t, s, Command{Type: CmdLockRound})
	if !containsEvent(events, EvtRoundLocked) || !s.IsLocked {
		t.Fatalf("first lock must transition and emit")
	}

	events, s2, err := Apply(s, Command{Type: CmdLockRound}, time.Now())
	if err != nil {
		t.Fatalf("second lock must be a no-op, got err %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("second lock must emit nothing, got %+v", events)
	}
	if !s2.IsLocked {
		t.Fatalf("state must stay locked")
	}
}

func TestApply_CalculateScoresWithoutQuestion(t *testing.T) {
	s := newGame(3)

	_, _, err := Apply(s, Command{Type: CmdCalculateScores}, time.Now())
	if !errors.Is(err, ErrNoActiveQuestion) {
		t.Fatalf("want ErrNoActiveQuestion, got %v", err)
	}
}

func TestApply_CalculateScoresCommitsAtomically(t *testing.T) {
	s := newGame(3)
	q := question
	_, s = mustApply(t, s, Command{Type: CmdCreateQuestion, Question: &q})
	_, s = mustApply(t, s, Command{Type: CmdActivateCard, TeamID: 1, Card: CardAllIn})
	_, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, TeamID: 1, Answer: "A"})

	now := time.Now()
	events, ns, err := Apply(s, Command{Type: CmdCalculateScores}, now)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(events) != 1 || events[0].Type != EvtScoresCalculated || events[0].Result == nil {
		t.Fatalf("want one EvtScoresCalculated with result, got %+v", events)
	}

	team, _ := ns.TeamByID(1)
	if team.Score != s.Rules.InitialScore+4 {
		t.Fatalf("allIn correct: want %d, got %d", s.Rules.InitialScore+4, team.Score)
	}
	if team.ActiveCards[CardAllIn] {
		t.Fatalf("active cards must be cleared after scoring")
	}
	if team.SpecialCards[CardAllIn] {
		t.Fatalf("spent card must stay spent after scoring")
	}
	if len(ns.History) != 1 || ns.History[0].Round != 1 || !ns.History[0].Timestamp.Equal(now) {
		t.Fatalf("history entry wrong: %+v", ns.History)
	}
}

func TestApply_ResetGameRestoresEverything(t *testing.T) {
	s := newGame(3)
	q := question
	_, s = mustApply(t, s, Command{Type: CmdCreateQuestion, Question: &q})
	_, s = mustApply(t, s, Command{Type: CmdActivateCard, TeamID: 1, Card: CardRedirect, RedirectTarget: 3})
	_, s = mustApply(t, s, Command{Type: CmdLockRound})
	_, s = mustApply(t, s, Command{Type: CmdCalculateScores})

	events, s := mustApply(t, s, Command{Type: CmdResetGame})
	if !containsEvent(events, EvtGameReset) {
		t.Fatalf("want EvtGameReset")
	}
	if s.CurrentQuestion != nil || s.CurrentRound != 0 || s.IsLocked || len(s.History) != 0 {
		t.Fatalf("state not reset: %+v", s)
	}
	for _, team := range s.Teams {
		if team.Score != s.Rules.InitialScore {
			t.Fatalf("team %d: want initial score, got %d", team.ID, team.Score)
		}
		for _, card := range AllCards {
			if !team.SpecialCards[card] || team.ActiveCards[card] {
				t.Fatalf("team %d: cards not restored", team.ID)
			}
		}
		if team.RedirectTarget != 0 {
			t.Fatalf("team %d: redirect target not cleared", team.ID)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := newGame(3)

	_, _ = mustApply(t, s, Command{Type: CmdSubmitAnswer, TeamID: 1, Answer: "x"})
	if s.Teams[0].Answer != nil {
		t.Fatalf("input state was mutated")
	}

	_, _ = mustApply(t, s, Command{Type: CmdActivateCard, TeamID: 1, Card: CardImmunity})
	if !s.Teams[0].SpecialCards[CardImmunity] {
		t.Fatalf("input state card map was mutated")
	}
}

func TestApply_UnsupportedCommand(t *testing.T) {
	s := newGame(3)

	_, _, err := Apply(s, Command{Type: CommandType("Nope")}, time.Now())
	if !errors.Is(err, ErrUnsupportedCommand) {
		t.Fatalf("want ErrUnsupportedCommand, got %v", err)
	}
}
