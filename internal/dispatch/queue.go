package dispatch

import (
	"context"
	"crypto/tls"
	"fmt"

	"katze_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// QueueSink hands events to the asynq queue consumed by cmd/worker.
type QueueSink struct {
	client *asynq.Client
	queue  string
}

// NewQueueSink connects an asynq client using the scheduler settings.
func NewQueueSink(cfg config.SchedulerConfig) (*QueueSink, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return newQueueSink(opt, cfg.GetAsynqQueueName()), nil
}

func newQueueSink(opt asynq.RedisConnOpt, queue string) *QueueSink {
	if queue == "" {
		queue = "default"
	}
	return &QueueSink{client: asynq.NewClient(opt), queue: queue}
}

// Deliver enqueues ev once. The task is never retried.
func (s *QueueSink) Deliver(ctx context.Context, ev AdoptionRequestEvent) error {
	task, err := NewAutomationWebhookTask(ev)
	if err != nil {
		return err
	}

	_, err = s.client.EnqueueContext(ctx, task, asynq.Queue(s.queue), asynq.MaxRetry(0))
	return err
}

func (s *QueueSink) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
