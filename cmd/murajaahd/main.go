package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"murajaah/internal/api"
	"murajaah/internal/config"
	"murajaah/internal/daemon"
	"murajaah/internal/engine"
	"murajaah/internal/logging"
	"murajaah/internal/notifications"
	"murajaah/internal/review"
	"murajaah/internal/store"
	"murajaah/internal/verification"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	notifier := notifications.NewService(cfg)
	reviews := review.NewQueue(st, notifier, logger)
	scorer := verification.NewFromConfig(cfg)

	var eng *engine.Engine
	if scorer != nil {
		eng = engine.New(st, st, scorer, reviews, notifier, logger)
	} else {
		eng = engine.New(st, st, nil, reviews, notifier, logger)
	}
	svc := api.NewService(eng, st, reviews)

	d, err := daemon.New(cfg, st, svc, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("murajaahd shutting down")
}
