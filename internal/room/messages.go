package room

import (
	"github.com/trungle-dev/domino-quiz-backend/internal/auth"
	"github.com/trungle-dev/domino-quiz-backend/internal/game"
	"github.com/trungle-dev/domino-quiz-backend/internal/types"
)

type Msg interface{ isRoomMsg() }

// Join registers an authenticated connection and computes its role.
type Join struct {
	ClientID  string
	Principal auth.Principal
	Outbox    chan types.ServerMessage
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

// FromClient carries a decoded client event into the loop. ClientID lets
// errors go back to the sender alone.
type FromClient struct {
	ClientID string
	Msg      types.ClientMessage
}

func (FromClient) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// GetView reflects internal state without data races; used by the health
// endpoint and tests.
type GetView struct {
	Reply chan View
}

func (GetView) isRoomMsg() {}

type View struct {
	State          game.State
	NumClients     int
	TimerActive    bool
	TimerRemaining int
}

// timerTick is the countdown's scheduled event, injected into the same
// serial stream as client events. Gen drops fires from superseded timers.
type timerTick struct{ Gen int }

func (timerTick) isRoomMsg() {}
