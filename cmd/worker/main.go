package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"katze_backend/internal/dispatch"
	"katze_backend/platform/config"
	"katze_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting automation worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GetAutomationWebhookURL() == "" {
		log.Error("AUTOMATION_WEBHOOK_URL not configured; nothing to deliver to")
		os.Exit(1)
	}

	sink := dispatch.NewWebhookSink(cfg.GetAutomationWebhookURL(), cfg.GetAutomationWebhookTimeout())
	worker, err := dispatch.NewWorker(cfg, sink, log)
	if err != nil {
		log.Error("failed to initialize automation worker", "error", err)
		panic("failed to initialize automation worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("automation worker stopped")
}
