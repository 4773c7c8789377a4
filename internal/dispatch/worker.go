package dispatch

import (
	"context"
	"fmt"

	"katze_backend/platform/config"
	"katze_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes automation tasks and posts them through a Sink.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sink   Sink
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sink Sink, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		sink:   sink,
		log:    log,
	}
	w.mux.HandleFunc(TaskAutomationWebhook, w.handleAutomationWebhook)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("automation worker stopped", "error", err)
	}
}

func (w *Worker) handleAutomationWebhook(ctx context.Context, task *asynq.Task) error {
	ev, err := ParseAutomationWebhookPayload(task)
	if err != nil {
		return fmt.Errorf("parse automation payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.sink.Deliver(ctx, ev); err != nil {
		w.log.Error("automation webhook failed", "request_id", ev.RequestID, "error", err)
		return err
	}
	w.log.Info("automation webhook delivered", "request_id", ev.RequestID)
	return nil
}
