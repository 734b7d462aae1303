package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/trungle-dev/domino-quiz-backend/internal/auth"
	"github.com/trungle-dev/domino-quiz-backend/internal/config"
	"github.com/trungle-dev/domino-quiz-backend/internal/game"
	"github.com/trungle-dev/domino-quiz-backend/internal/httpapi"
	"github.com/trungle-dev/domino-quiz-backend/internal/registry"
	"github.com/trungle-dev/domino-quiz-backend/internal/room"
	"github.com/trungle-dev/domino-quiz-backend/internal/ws"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	reg, err := registry.LoadRoster(cfg.TeamsFile)
	if err != nil {
		sugar.Fatalw("load roster", "err", err)
	}
	questions, err := registry.LoadQuestions(cfg.QuestionsFile)
	if err != nil {
		sugar.Fatalw("load questions", "err", err)
	}

	state := game.NewState(cfg.Rules, reg.Seeds())
	rm := room.New(context.Background(), state, cfg.RoundDuration, questions, sugar)

	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID)
	handlers := httpapi.NewHandlers(cfg, reg, verifier, rm, sugar)
	router := httpapi.SetupRoutes(handlers, ws.Handler(rm, reg, cfg.SessionSecret, sugar))

	addr := fmt.Sprintf(":%d", cfg.Port)
	sugar.Infow("listening",
		"addr", addr,
		"teams", len(reg.Teams()),
		"sampleQuestions", len(questions),
		"testMode", cfg.TestMode,
	)
	if err := http.ListenAndServe(addr, router); err != nil {
		sugar.Fatalw("server exited", "err", err)
	}
}
