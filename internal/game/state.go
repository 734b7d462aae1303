package game

import "time"

type CardType string

const (
	CardImmunity CardType = "immunity"
	CardRedirect CardType = "redirect"
	CardAllIn    CardType = "allIn"
)

var AllCards = []CardType{CardImmunity, CardRedirect, CardAllIn}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multipleChoice"
	QuestionTrueFalse      QuestionType = "trueFalse"
)

type Question struct {
	Type          QuestionType `json:"type"`
	Text          string       `json:"question"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
}

// Team is the domain view of a team. Connection bookkeeping (controller,
// viewers) lives in the arbiter's side table, never here, so the struct is
// safe to serialize as-is.
type Team struct {
	ID             int               `json:"id"`
	Name           string            `json:"name"`
	Score          int               `json:"score"`
	Answer         *string           `json:"answer"`
	SpecialCards   map[CardType]bool `json:"specialCards"`
	ActiveCards    map[CardType]bool `json:"activeCards"`
	RedirectTarget int               `json:"redirectTarget,omitempty"` // 0 = unset
}

// Rules holds the scoring constants. Defaults mirror the event's original
// configuration: 9 teams starting at 15 points, ±2 per answer, -1 domino,
// crisis at 5 wrong answers for -2 across the board, score floor 0.
type Rules struct {
	TeamCount       int
	InitialScore    int
	CorrectPoints   int
	WrongPoints     int
	DominoPenalty   int
	CrisisThreshold int
	CrisisPenalty   int
	MinScore        int
}

func DefaultRules() Rules {
	return Rules{
		TeamCount:       9,
		InitialScore:    15,
		CorrectPoints:   2,
		WrongPoints:     -2,
		DominoPenalty:   -1,
		CrisisThreshold: 5,
		CrisisPenalty:   -2,
		MinScore:        0,
	}
}

type TeamResult struct {
	ID             int               `json:"id"`
	Name           string            `json:"name"`
	Answer         *string           `json:"answer"`
	IsCorrect      bool              `json:"isCorrect"`
	ScoreChange    int               `json:"scoreChange"`
	ScoreBefore    int               `json:"scoreBefore"`
	ScoreAfter     int               `json:"scoreAfter"`
	UsedCards      map[CardType]bool `json:"usedCards"`
	RedirectTarget int               `json:"redirectTarget,omitempty"`
}

type DominoChain struct {
	From    int `json:"from"`
	To      int `json:"to"`
	Penalty int `json:"penalty"`
}

type RoundResult struct {
	Teams        []TeamResult  `json:"teams"`
	DominoChains []DominoChain `json:"dominoChains"`
	IsCrisis     bool          `json:"isCrisis"`
}

type HistoryEntry struct {
	Round     int         `json:"round"`
	Question  Question    `json:"question"`
	Results   RoundResult `json:"results"`
	Timestamp time.Time   `json:"timestamp"`
}

type State struct {
	Teams           []Team
	CurrentQuestion *Question
	CurrentRound    int
	IsLocked        bool
	History         []HistoryEntry
	Rules           Rules
}

// TeamSeed identifies a roster entry used to build the initial state.
type TeamSeed struct {
	ID   int
	Name string
}

// NewState builds the initial aggregate. Seeds must already be sorted by
// ascending team ID; scoring iterates in slice order.
func NewState(rules Rules, seeds []TeamSeed) State {
	s := State{Rules: rules, Teams: make([]Team, 0, len(seeds))}
	for _, seed := range seeds {
		s.Teams = append(s.Teams, newTeam(seed, rules))
	}
	return s
}

func newTeam(seed TeamSeed, rules Rules) Team {
	return Team{
		ID:           seed.ID,
		Name:         seed.Name,
		Score:        rules.InitialScore,
		SpecialCards: map[CardType]bool{CardImmunity: true, CardRedirect: true, CardAllIn: true},
		ActiveCards:  map[CardType]bool{CardImmunity: false, CardRedirect: false, CardAllIn: false},
	}
}

func (s State) TeamByID(id int) (*Team, bool) {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i], true
		}
	}
	return nil, false
}

// Clone deep-copies the state so Apply can mutate freely while callers keep
// handing out snapshots of the previous value.
func (s State) Clone() State {
	ns := s
	ns.Teams = make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		nt := t
		if t.Answer != nil {
			answer := *t.Answer
			nt.Answer = &answer
		}
		nt.SpecialCards = make(map[CardType]bool, len(t.SpecialCards))
		for k, v := range t.SpecialCards {
			nt.SpecialCards[k] = v
		}
		nt.ActiveCards = make(map[CardType]bool, len(t.ActiveCards))
		for k, v := range t.ActiveCards {
			nt.ActiveCards[k] = v
		}
		ns.Teams[i] = nt
	}
	if s.CurrentQuestion != nil {
		q := *s.CurrentQuestion
		q.Options = append([]string(nil), s.CurrentQuestion.Options...)
		ns.CurrentQuestion = &q
	}
	ns.History = append([]HistoryEntry(nil), s.History...)
	return ns
}
