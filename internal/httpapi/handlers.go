package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/trungle-dev/domino-quiz-backend/internal/auth"
	"github.com/trungle-dev/domino-quiz-backend/internal/config"
	"github.com/trungle-dev/domino-quiz-backend/internal/registry"
	"github.com/trungle-dev/domino-quiz-backend/internal/room"
)

const adminEmail = "admin@system"

type authResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token,omitempty"`
	TeamID   int    `json:"teamId,omitempty"`
	TeamName string `json:"teamName,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	IsAdmin  bool   `json:"isAdmin,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Handlers struct {
	cfg      config.Config
	reg      *registry.Registry
	verifier auth.TokenVerifier
	room     *room.Room
	log      *zap.SugaredLogger
}

func NewHandlers(cfg config.Config, reg *registry.Registry, verifier auth.TokenVerifier, rm *room.Room, log *zap.SugaredLogger) *Handlers {
	return &Handlers{cfg: cfg, reg: reg, verifier: verifier, room: rm, log: log}
}

// AdminLogin trades the configured admin credentials for an admin token.
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Error: "invalid request body"})
		return
	}
	if req.Username != h.cfg.AdminUsername || req.Password != h.cfg.AdminPassword {
		writeJSON(w, http.StatusUnauthorized, authResponse{Error: "invalid username or password"})
		return
	}

	token, err := auth.Issue(h.cfg.SessionSecret, auth.Principal{Email: adminEmail, Name: "Admin", IsAdmin: true}, h.cfg.TokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, authResponse{Error: "failed to issue token"})
		return
	}
	h.log.Infow("admin login", "username", req.Username)
	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Token:   token,
		IsAdmin: true,
		Email:   adminEmail,
		Name:    "Admin",
	})
}

// GoogleLogin verifies a Google ID token and maps the email onto the admin
// list or the team whitelist.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Error: "invalid request body"})
		return
	}

	email, name, err := h.verifier.VerifyIDToken(r.Context(), req.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, authResponse{Error: "google verification failed"})
		return
	}

	if h.reg.IsAdmin(email) {
		token, err := auth.Issue(h.cfg.SessionSecret, auth.Principal{Email: email, Name: name, IsAdmin: true}, h.cfg.TokenTTL)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, authResponse{Error: "failed to issue token"})
			return
		}
		h.log.Infow("admin login via google", "email", email)
		writeJSON(w, http.StatusOK, authResponse{Success: true, Token: token, IsAdmin: true, Email: email, Name: name})
		return
	}

	team, ok := h.reg.TeamByEmail(email)
	if !ok {
		writeJSON(w, http.StatusForbidden, authResponse{Error: "email is not on the whitelist"})
		return
	}
	token, err := auth.Issue(h.cfg.SessionSecret, auth.Principal{Email: email, Name: name, TeamID: team.ID}, h.cfg.TokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, authResponse{Error: "failed to issue token"})
		return
	}
	h.log.Infow("member login", "email", email, "team", team.ID)
	writeJSON(w, http.StatusOK, authResponse{
		Success:  true,
		Token:    token,
		TeamID:   team.ID,
		TeamName: team.Name,
		Email:    email,
		Name:     name,
	})
}

// DemoLogin signs in as a roster member without Google, for test mode only.
func (h *Handlers) DemoLogin(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.TestMode {
		writeJSON(w, http.StatusForbidden, authResponse{Error: "demo login is disabled in production mode"})
		return
	}

	var req struct {
		TeamID      int `json:"teamId"`
		MemberIndex int `json:"memberIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Error: "invalid request body"})
		return
	}
	if req.MemberIndex < 1 {
		req.MemberIndex = 1
	}

	team, ok := h.reg.TeamByID(req.TeamID)
	if !ok {
		writeJSON(w, http.StatusNotFound, authResponse{Error: fmt.Sprintf("team %d not found", req.TeamID)})
		return
	}
	if len(team.Members) == 0 {
		writeJSON(w, http.StatusNotFound, authResponse{Error: fmt.Sprintf("team %d has no members", req.TeamID)})
		return
	}
	idx := req.MemberIndex - 1
	if idx >= len(team.Members) {
		idx = len(team.Members) - 1
	}
	email := team.Members[idx]
	name := fmt.Sprintf("Demo User %d (%s)", req.MemberIndex, team.Name)

	token, err := auth.Issue(h.cfg.SessionSecret, auth.Principal{Email: email, Name: name, TeamID: team.ID}, h.cfg.TokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, authResponse{Error: "failed to issue token"})
		return
	}
	h.log.Infow("demo login", "email", email, "team", team.ID)
	writeJSON(w, http.StatusOK, authResponse{
		Success:  true,
		Token:    token,
		TeamID:   team.ID,
		TeamName: team.Name,
		Email:    email,
		Name:     name,
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	view := h.room.View()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "OK",
		"teams":  len(view.State.Teams),
		"round":  view.State.CurrentRound,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
