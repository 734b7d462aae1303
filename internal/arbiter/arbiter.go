// Package arbiter assigns connection roles per team: exactly one controller
// plus a FIFO queue of viewers, with the front viewer promoted when the
// controller leaves. It is a side table keyed by team ID; connection
// references never enter the serializable game state.
package arbiter

type Role string

const (
	RoleController Role = "controller"
	RoleViewer     Role = "viewer"
)

type Member struct {
	ConnID string
	Email  string
}

type seats struct {
	controller *Member
	viewers    []Member
}

type Arbiter struct {
	teams map[int]*seats
}

func New() *Arbiter {
	return &Arbiter{teams: make(map[int]*seats)}
}

func (a *Arbiter) team(id int) *seats {
	s, ok := a.teams[id]
	if !ok {
		s = &seats{}
		a.teams[id] = s
	}
	return s
}

// Join seats a connection: controller if the seat is empty, otherwise
// appended to the viewer queue in join order.
func (a *Arbiter) Join(teamID int, connID, email string) Role {
	s := a.team(teamID)
	if s.controller == nil {
		s.controller = &Member{ConnID: connID, Email: email}
		return RoleController
	}
	s.viewers = append(s.viewers, Member{ConnID: connID, Email: email})
	return RoleViewer
}

// Leave unseats a connection. When the controller leaves, the front viewer
// (if any) is promoted and returned; a team with no connections at all is
// legal. changed reports whether the connection was seated on this team.
func (a *Arbiter) Leave(teamID int, connID string) (promoted *Member, changed bool) {
	s, ok := a.teams[teamID]
	if !ok {
		return nil, false
	}
	if s.controller != nil && s.controller.ConnID == connID {
		s.controller = nil
		if len(s.viewers) > 0 {
			next := s.viewers[0]
			s.viewers = s.viewers[1:]
			s.controller = &next
			return &next, true
		}
		return nil, true
	}
	for i, v := range s.viewers {
		if v.ConnID == connID {
			s.viewers = append(s.viewers[:i], s.viewers[i+1:]...)
			return nil, true
		}
	}
	return nil, false
}

// IsController reports whether connID currently controls teamID.
func (a *Arbiter) IsController(teamID int, connID string) bool {
	s, ok := a.teams[teamID]
	return ok && s.controller != nil && s.controller.ConnID == connID
}

// Status returns the controller's email (nil when controllerless) and the
// viewer count, the payload of every controllerStatus broadcast.
func (a *Arbiter) Status(teamID int) (controllerEmail *string, viewerCount int) {
	s, ok := a.teams[teamID]
	if !ok || s.controller == nil {
		if ok {
			return nil, len(s.viewers)
		}
		return nil, 0
	}
	email := s.controller.Email
	return &email, len(s.viewers)
}

// Reset clears every seat; the next joiner per team becomes controller.
func (a *Arbiter) Reset() {
	a.teams = make(map[int]*seats)
}
