// Package config reads the environment-overridable settings. Defaults match
// the live event's configuration; a .env file loaded in main can override
// any of them.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/trungle-dev/domino-quiz-backend/internal/game"
)

type Config struct {
	Port           int
	SessionSecret  string
	AdminUsername  string
	AdminPassword  string
	TestMode       bool
	GoogleClientID string
	TeamsFile      string
	QuestionsFile  string
	RoundDuration  time.Duration
	TokenTTL       time.Duration
	Rules          game.Rules
}

func Load() Config {
	rules := game.DefaultRules()
	rules.TeamCount = envInt("TEAM_COUNT", rules.TeamCount)
	rules.InitialScore = envInt("INITIAL_SCORE", rules.InitialScore)
	rules.CorrectPoints = envInt("CORRECT_POINTS", rules.CorrectPoints)
	rules.WrongPoints = envInt("WRONG_POINTS", rules.WrongPoints)
	rules.DominoPenalty = envInt("DOMINO_PENALTY", rules.DominoPenalty)
	rules.CrisisThreshold = envInt("CRISIS_THRESHOLD", rules.CrisisThreshold)
	rules.CrisisPenalty = envInt("CRISIS_PENALTY", rules.CrisisPenalty)
	rules.MinScore = envInt("MIN_SCORE", rules.MinScore)

	return Config{
		Port:           envInt("PORT", 3001),
		SessionSecret:  envStr("SESSION_SECRET", "default-secret"),
		AdminUsername:  envStr("ADMIN_USERNAME", "admin"),
		AdminPassword:  envStr("ADMIN_PASSWORD", "admin123"),
		TestMode:       envBool("TEST_MODE", false),
		GoogleClientID: envStr("GOOGLE_CLIENT_ID", ""),
		TeamsFile:      envStr("TEAMS_FILE", "teamMembers.json"),
		QuestionsFile:  envStr("QUESTIONS_FILE", "sampleQuestions.json"),
		RoundDuration:  time.Duration(envInt("ROUND_DURATION", 30)) * time.Second,
		TokenTTL:       24 * time.Hour,
		Rules:          rules,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
