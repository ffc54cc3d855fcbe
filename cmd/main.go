package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"trade_pilot/internal/application"
	"trade_pilot/internal/config"
	"trade_pilot/internal/domain"
	"trade_pilot/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log := logx.NewLogger(os.Stderr, slog.LevelInfo)
		log.Error("config load failed", logx.Error(err))
		os.Exit(2)
	}

	log := logx.NewLogger(os.Stdout, logx.ParseLevel(cfg.App.LogLevel))
	slog.SetDefault(log)

	if err := application.Run(ctx, cfg, log); err != nil {
		code, _ := domain.GetCode(err)
		log.Error("application failed", slog.String("code", code.String()), logx.Error(err))

		if errors.Is(err, domain.ErrInvalidLayout) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	log.Info("application stopped")
}
