package main

import (
	"context"
	"fmt"
	"os"

	"quiz-drill/internal/cli"
	"quiz-drill/internal/config"
	"quiz-drill/internal/logger"
	"quiz-drill/internal/quiz"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	store := quiz.NewStore(quiz.StorePaths{
		Bank:      cfg.BankPath,
		Wrong:     cfg.WrongPath,
		Stats:     cfg.StatsPath,
		Favorites: cfg.FavoritesPath,
	}, log)

	// The history DB is optional: quizzing works without it.
	var history quiz.HistoryRepository
	historyStore, err := quiz.NewHistoryStore(cfg.HistoryDBPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.HistoryDBPath).Msg("attempt history disabled")
	} else {
		defer historyStore.Close()
		history = historyStore
	}

	service := quiz.NewService(store, store, store, history, log)

	if err := cli.Run(context.Background(), os.Stdin, os.Stdout, service, store, cfg.DocxPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
