package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"leadrouter/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues routing tasks. The ingestion layer holds one to submit
// new-lead events; the worker host holds one to schedule periodic sweeps.
type Client struct {
	client *asynq.Client
	queue  string
}

// LeadSubmitter is the enqueue surface exposed to the ingestion collaborator.
type LeadSubmitter interface {
	EnqueueLeadAssign(ctx context.Context, payload LeadAssignPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueLeadAssign submits a lead for assignment.
func (c *Client) EnqueueLeadAssign(ctx context.Context, payload LeadAssignPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewLeadAssignTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// EnqueueReconcile submits a bulk reconciliation sweep. The job itself is
// single-flight; an extra enqueue while one runs is rejected by the job, so
// duplicate triggers are harmless.
func (c *Client) EnqueueReconcile(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	_, err := c.client.EnqueueContext(ctx, NewReconcileTask(), asynq.Queue(c.queue), asynq.MaxRetry(0))
	return err
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
