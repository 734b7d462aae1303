// Package registry loads the static team whitelist and the sample question
// bank from JSON files. Both are read once at process start and are
// read-only for the rest of the session.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/trungle-dev/domino-quiz-backend/internal/game"
)

type TeamEntry struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type rosterFile struct {
	Teams  []TeamEntry `json:"teams"`
	Admins []string    `json:"admins"`
}

type Registry struct {
	teams  []TeamEntry
	admins map[string]bool
}

// LoadRoster reads the team whitelist. Teams are sorted by ID; entries
// without a name get a generated one.
func LoadRoster(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	var file rosterFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}

	teams := make([]TeamEntry, len(file.Teams))
	copy(teams, file.Teams)
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	for i := range teams {
		if teams[i].Name == "" {
			teams[i].Name = fmt.Sprintf("Team %d", teams[i].ID)
		}
	}

	admins := make(map[string]bool, len(file.Admins))
	for _, a := range file.Admins {
		admins[strings.ToLower(a)] = true
	}
	return &Registry{teams: teams, admins: admins}, nil
}

// Teams returns the roster sorted by ascending team ID.
func (r *Registry) Teams() []TeamEntry {
	return r.teams
}

// Seeds returns the roster in the form the game state is built from.
func (r *Registry) Seeds() []game.TeamSeed {
	seeds := make([]game.TeamSeed, 0, len(r.teams))
	for _, t := range r.teams {
		seeds = append(seeds, game.TeamSeed{ID: t.ID, Name: t.Name})
	}
	return seeds
}

func (r *Registry) TeamByID(id int) (TeamEntry, bool) {
	for _, t := range r.teams {
		if t.ID == id {
			return t, true
		}
	}
	return TeamEntry{}, false
}

// TeamByEmail finds the team whose member list contains the email,
// case-insensitively.
func (r *Registry) TeamByEmail(email string) (TeamEntry, bool) {
	needle := strings.ToLower(email)
	for _, t := range r.teams {
		for _, m := range t.Members {
			if strings.ToLower(m) == needle {
				return t, true
			}
		}
	}
	return TeamEntry{}, false
}

func (r *Registry) IsAdmin(email string) bool {
	return r.admins[strings.ToLower(email)]
}

// LoadQuestions reads the sample question bank. A missing file is not an
// error; the bank is just empty.
func LoadQuestions(path string) ([]game.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read questions %s: %w", path, err)
	}
	var questions []game.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions %s: %w", path, err)
	}
	return questions, nil
}
