package types

import "github.com/trungle-dev/domino-quiz-backend/internal/game"

// Client -> server event names.
const (
	MsgJoinAdmin          = "joinAdmin"
	MsgGetSampleQuestions = "getSampleQuestions"
	MsgCreateQuestion     = "createQuestion"
	MsgLockRound          = "lockRound"
	MsgCalculateScores    = "calculateScores"
	MsgResetGame          = "resetGame"
	MsgSubmitAnswer       = "submitAnswer"
	MsgActivateCard       = "activateCard"
)

// Server -> client event names.
const (
	MsgGameState        = "gameState"
	MsgAuthSuccess      = "authSuccess"
	MsgControllerStatus = "controllerStatus"
	MsgPromoted         = "promoted"
	MsgNewQuestion      = "newQuestion"
	MsgRoundLocked      = "roundLocked"
	MsgTimerUpdate      = "timerUpdate"
	MsgTimerExpired     = "timerExpired"
	MsgRoundResults     = "roundResults"
	MsgSampleQuestions  = "sampleQuestions"
	MsgGameReset        = "gameReset"
	MsgError            = "error"
)

type ClientMessage struct {
	Type           string         `json:"type"`
	TeamID         int            `json:"teamId,omitempty"`
	Answer         string         `json:"answer,omitempty"`
	CardType       string         `json:"cardType,omitempty"`
	RedirectTarget int            `json:"redirectTarget,omitempty"`
	Question       *game.Question `json:"question,omitempty"`
}

type ServerMessage struct {
	Type       string            `json:"type"`
	State      *StateSnapshot    `json:"state,omitempty"`
	Question   *game.Question    `json:"question,omitempty"`
	Questions  []game.Question   `json:"questions,omitempty"`
	Results    *game.RoundResult `json:"results,omitempty"`
	Auth       *AuthSuccess      `json:"auth,omitempty"`
	Controller *ControllerStatus `json:"controller,omitempty"`
	Timer      *TimerUpdate      `json:"timer,omitempty"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// StateSnapshot is the sanitized broadcast form of the game state: plain
// data only, with controller identity and viewer counts folded in from the
// arbiter side table and the countdown reduced to remaining/duration.
type StateSnapshot struct {
	Teams           []TeamSnapshot      `json:"teams"`
	CurrentQuestion *game.Question      `json:"currentQuestion"`
	CurrentRound    int                 `json:"currentRound"`
	IsLocked        bool                `json:"isLocked"`
	History         []game.HistoryEntry `json:"history"`
	Timer           TimerSnapshot       `json:"timer"`
}

type TeamSnapshot struct {
	ID              int                    `json:"id"`
	Name            string                 `json:"name"`
	Score           int                    `json:"score"`
	Answer          *string                `json:"answer"`
	SpecialCards    map[game.CardType]bool `json:"specialCards"`
	ActiveCards     map[game.CardType]bool `json:"activeCards"`
	RedirectTarget  int                    `json:"redirectTarget,omitempty"`
	ControllerEmail *string                `json:"controllerEmail"`
	ViewerCount     int                    `json:"viewerCount"`
}

type TimerSnapshot struct {
	Active    bool `json:"active"`
	Remaining int  `json:"remaining"`
	Duration  int  `json:"duration"`
}

type AuthSuccess struct {
	Role            string  `json:"role"`
	TeamID          int     `json:"teamId,omitempty"`
	Email           string  `json:"email"`
	ControllerEmail *string `json:"controllerEmail"`
}

type ControllerStatus struct {
	ControllerEmail *string `json:"controllerEmail"`
	ViewerCount     int     `json:"viewerCount"`
}

type TimerUpdate struct {
	Remaining int `json:"remaining"`
	Duration  int `json:"duration"`
}
