// Package room runs the authoritative game loop. All state mutation happens
// inside a single goroutine consuming one inbox, so every operation is
// atomic relative to the others; broadcasts are fire-and-forget fan-out to
// per-client outboxes.
package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trungle-dev/domino-quiz-backend/internal/arbiter"
	"github.com/trungle-dev/domino-quiz-backend/internal/auth"
	"github.com/trungle-dev/domino-quiz-backend/internal/game"
	"github.com/trungle-dev/domino-quiz-backend/internal/types"
)

type client struct {
	outbox    chan types.ServerMessage
	principal auth.Principal
}

type countdown struct {
	active    bool
	gen       int
	remaining int
	duration  int
	cancel    context.CancelFunc
}

type Room struct {
	inbox     chan Msg
	state     game.State
	questions []game.Question
	seats     *arbiter.Arbiter
	clients   map[string]*client
	timer     countdown
	roundSecs int
	log       *zap.SugaredLogger
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(parent context.Context, initial game.State, roundDuration time.Duration, questions []game.Question, log *zap.SugaredLogger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:     make(chan Msg, 64),
		state:     initial,
		questions: questions,
		seats:     arbiter.New(),
		clients:   make(map[string]*client),
		roundSecs: int(roundDuration / time.Second),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

// View round-trips a GetView through the loop.
func (r *Room) View() View {
	reply := make(chan View, 1)
	r.inbox <- GetView{Reply: reply}
	return <-reply
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Leave:
				r.dropClient(msg.ClientID)
			case FromClient:
				r.handleClientMessage(msg.ClientID, msg.Msg)
			case timerTick:
				r.handleTick(msg.Gen)
			case GetView:
				msg.Reply <- View{
					State:          r.state.Clone(),
					NumClients:     len(r.clients),
					TimerActive:    r.timer.active,
					TimerRemaining: r.timer.remaining,
				}
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	p := msg.Principal
	r.clients[msg.ClientID] = &client{outbox: msg.Outbox, principal: p}

	if p.IsAdmin {
		r.log.Infow("admin connected", "email", p.Email)
		r.sendTo(msg.ClientID, types.ServerMessage{Type: types.MsgGameState, State: r.snapshot()})
		return
	}

	if _, ok := r.state.TeamByID(p.TeamID); !ok {
		// The ws layer rejects unknown teams before joining; this guards the
		// inbox against callers that skipped it.
		r.sendTo(msg.ClientID, types.ServerMessage{Type: types.MsgError, Error: game.ErrUnknownTeam.Error()})
		r.dropClient(msg.ClientID)
		return
	}

	role := r.seats.Join(p.TeamID, msg.ClientID, p.Email)
	controllerEmail, _ := r.seats.Status(p.TeamID)
	r.log.Infow("member connected", "email", p.Email, "team", p.TeamID, "role", role)

	r.sendTo(msg.ClientID, types.ServerMessage{Type: types.MsgAuthSuccess, Auth: &types.AuthSuccess{
		Role:            string(role),
		TeamID:          p.TeamID,
		Email:           p.Email,
		ControllerEmail: controllerEmail,
	}})
	r.sendTo(msg.ClientID, types.ServerMessage{Type: types.MsgGameState, State: r.snapshot()})
	r.broadcastControllerStatus(p.TeamID)
}

// dropClient unseats and forgets a connection. Invoked for clean leaves,
// slow consumers, and rejected joins alike; promotion of the front viewer
// happens here.
func (r *Room) dropClient(id string) {
	c, ok := r.clients[id]
	if !ok {
		return
	}
	delete(r.clients, id)
	close(c.outbox)

	if c.principal.IsAdmin {
		return
	}
	teamID := c.principal.TeamID
	promoted, changed := r.seats.Leave(teamID, id)
	if !changed {
		return
	}
	if promoted != nil {
		r.log.Infow("viewer promoted", "email", promoted.Email, "team", teamID)
		r.sendTo(promoted.ConnID, types.ServerMessage{Type: types.MsgPromoted, Message: "You have been promoted to controller"})
	}
	r.broadcastControllerStatus(teamID)
}

func (r *Room) handleClientMessage(clientID string, m types.ClientMessage) {
	c, ok := r.clients[clientID]
	if !ok {
		return
	}
	p := c.principal

	switch m.Type {
	case types.MsgJoinAdmin:
		if !p.IsAdmin {
			r.sendError(clientID, "permission denied: admin only")
			return
		}
		r.sendTo(clientID, types.ServerMessage{Type: types.MsgGameState, State: r.snapshot()})

	case types.MsgGetSampleQuestions:
		r.sendTo(clientID, types.ServerMessage{Type: types.MsgSampleQuestions, Questions: r.questions})

	case types.MsgCreateQuestion:
		if !p.IsAdmin {
			r.sendError(clientID, "permission denied: admin only")
			return
		}
		if m.Question == nil {
			r.sendError(clientID, "question required")
			return
		}
		r.apply(clientID, game.Command{Type: game.CmdCreateQuestion, Question: m.Question})

	case types.MsgLockRound:
		if !p.IsAdmin {
			r.sendError(clientID, "permission denied: admin only")
			return
		}
		r.apply(clientID, game.Command{Type: game.CmdLockRound})

	case types.MsgCalculateScores:
		if !p.IsAdmin {
			r.sendError(clientID, "permission denied: admin only")
			return
		}
		r.apply(clientID, game.Command{Type: game.CmdCalculateScores})

	case types.MsgResetGame:
		if !p.IsAdmin {
			r.sendError(clientID, "permission denied: admin only")
			return
		}
		r.apply(clientID, game.Command{Type: game.CmdResetGame})

	case types.MsgSubmitAnswer:
		if !r.seats.IsController(m.TeamID, clientID) {
			r.sendError(clientID, "permission denied: only the controller can answer")
			return
		}
		r.apply(clientID, game.Command{Type: game.CmdSubmitAnswer, TeamID: m.TeamID, Answer: m.Answer})

	case types.MsgActivateCard:
		if !r.seats.IsController(m.TeamID, clientID) {
			r.sendError(clientID, "permission denied: only the controller can activate cards")
			return
		}
		r.apply(clientID, game.Command{
			Type:           game.CmdActivateCard,
			TeamID:         m.TeamID,
			Card:           game.CardType(m.CardType),
			RedirectTarget: m.RedirectTarget,
		})

	default:
		r.sendError(clientID, "unknown message type")
	}
}

// apply runs a command through the engine; errors go back to the sender
// only, events fan out to everyone.
func (r *Room) apply(clientID string, cmd game.Command) {
	events, next, err := game.Apply(r.state, cmd, time.Now())
	if err != nil {
		r.sendError(clientID, err.Error())
		return
	}
	r.state = next
	for _, ev := range events {
		r.handleEvent(ev)
	}
}

func (r *Room) handleEvent(ev game.Event) {
	switch ev.Type {
	case game.EvtQuestionCreated:
		r.startCountdown()
		r.log.Infow("question created", "round", r.state.CurrentRound, "text", ev.Question.Text)
		r.broadcast(types.ServerMessage{Type: types.MsgNewQuestion, Question: ev.Question})
		r.broadcastState()

	case game.EvtAnswerSubmitted, game.EvtCardActivated:
		r.broadcastState()

	case game.EvtRoundLocked:
		r.stopCountdown()
		r.log.Infow("round locked", "round", r.state.CurrentRound)
		r.broadcast(types.ServerMessage{Type: types.MsgRoundLocked})
		r.broadcastState()

	case game.EvtScoresCalculated:
		r.log.Infow("scores calculated", "round", r.state.CurrentRound, "crisis", ev.Result.IsCrisis, "chains", len(ev.Result.DominoChains))
		r.broadcast(types.ServerMessage{Type: types.MsgRoundResults, Results: ev.Result})
		r.broadcastState()

	case game.EvtGameReset:
		r.stopCountdown()
		r.seats.Reset()
		r.log.Infow("game reset")
		r.broadcast(types.ServerMessage{Type: types.MsgGameReset})
		r.broadcastState()
		for _, t := range r.state.Teams {
			r.broadcastControllerStatus(t.ID)
		}
	}
}

// startCountdown arms a fresh per-second ticker, cancelling any live one
// first so two timers never race on the same round.
func (r *Room) startCountdown() {
	r.stopCountdown()
	r.timer.gen++
	r.timer.active = true
	r.timer.duration = r.roundSecs
	r.timer.remaining = r.roundSecs

	ctx, cancel := context.WithCancel(r.ctx)
	r.timer.cancel = cancel
	gen := r.timer.gen
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case r.inbox <- timerTick{Gen: gen}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

func (r *Room) stopCountdown() {
	if r.timer.cancel != nil {
		r.timer.cancel()
		r.timer.cancel = nil
	}
	r.timer.active = false
}

func (r *Room) handleTick(gen int) {
	if !r.timer.active || gen != r.timer.gen {
		// Stale fire from a superseded timer.
		return
	}
	r.timer.remaining--
	r.broadcast(types.ServerMessage{Type: types.MsgTimerUpdate, Timer: &types.TimerUpdate{
		Remaining: r.timer.remaining,
		Duration:  r.timer.duration,
	}})
	if r.timer.remaining > 0 {
		return
	}

	// Auto-lock path: same transition as an admin lockRound, plus the
	// expiry signal.
	r.stopCountdown()
	events, next, err := game.Apply(r.state, game.Command{Type: game.CmdLockRound}, time.Now())
	if err == nil {
		r.state = next
		for _, ev := range events {
			r.handleEvent(ev)
		}
	}
	r.log.Infow("timer expired", "round", r.state.CurrentRound)
	r.broadcast(types.ServerMessage{Type: types.MsgTimerExpired})
}

// snapshot builds the sanitized broadcast view: deep-copied team data plus
// the arbiter's controller/viewer bookkeeping, never connection handles.
func (r *Room) snapshot() *types.StateSnapshot {
	teams := make([]types.TeamSnapshot, 0, len(r.state.Teams))
	for _, t := range r.state.Teams {
		special := make(map[game.CardType]bool, len(t.SpecialCards))
		for k, v := range t.SpecialCards {
			special[k] = v
		}
		active := make(map[game.CardType]bool, len(t.ActiveCards))
		for k, v := range t.ActiveCards {
			active[k] = v
		}
		var answer *string
		if t.Answer != nil {
			a := *t.Answer
			answer = &a
		}
		controllerEmail, viewerCount := r.seats.Status(t.ID)
		teams = append(teams, types.TeamSnapshot{
			ID:              t.ID,
			Name:            t.Name,
			Score:           t.Score,
			Answer:          answer,
			SpecialCards:    special,
			ActiveCards:     active,
			RedirectTarget:  t.RedirectTarget,
			ControllerEmail: controllerEmail,
			ViewerCount:     viewerCount,
		})
	}

	var question *game.Question
	if r.state.CurrentQuestion != nil {
		q := *r.state.CurrentQuestion
		question = &q
	}

	return &types.StateSnapshot{
		Teams:           teams,
		CurrentQuestion: question,
		CurrentRound:    r.state.CurrentRound,
		IsLocked:        r.state.IsLocked,
		History:         append([]game.HistoryEntry(nil), r.state.History...),
		Timer: types.TimerSnapshot{
			Active:    r.timer.active,
			Remaining: r.timer.remaining,
			Duration:  r.timer.duration,
		},
	}
}

func (r *Room) broadcastState() {
	r.broadcast(types.ServerMessage{Type: types.MsgGameState, State: r.snapshot()})
}

func (r *Room) broadcastControllerStatus(teamID int) {
	controllerEmail, viewerCount := r.seats.Status(teamID)
	msg := types.ServerMessage{Type: types.MsgControllerStatus, Controller: &types.ControllerStatus{
		ControllerEmail: controllerEmail,
		ViewerCount:     viewerCount,
	}}
	for id, c := range r.clients {
		if !c.principal.IsAdmin && c.principal.TeamID == teamID {
			r.sendTo(id, msg)
		}
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id, c := range r.clients {
		select {
		case c.outbox <- msg:
		default:
			// Client is slow/full - drop it.
			r.dropClient(id)
		}
	}
}

func (r *Room) sendTo(id string, msg types.ServerMessage) {
	c, ok := r.clients[id]
	if !ok {
		return
	}
	select {
	case c.outbox <- msg:
	default:
		r.dropClient(id)
	}
}

func (r *Room) sendError(id, text string) {
	r.sendTo(id, types.ServerMessage{Type: types.MsgError, Error: text})
}

func (r *Room) shutdown() {
	r.stopCountdown()
	for id, c := range r.clients {
		close(c.outbox)
		delete(r.clients, id)
	}
	r.cancel()
}
