// Package queue moves static file generation requests through a Redis Stream.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	fieldStaticFileID = "static_file_id"
	fieldBookmakers   = "bookmakers"
)

// GenerateJob asks a worker to regenerate one static file.
type GenerateJob struct {
	StaticFileID uuid.UUID
	Bookmakers   []string
}

func (j GenerateJob) values() map[string]interface{} {
	return map[string]interface{}{
		fieldStaticFileID: j.StaticFileID.String(),
		fieldBookmakers:   strings.Join(j.Bookmakers, ","),
	}
}

// DecodeJob reads a job from stream fields. Bookmakers may be a comma
// separated list or a JSON array.
func DecodeJob(values map[string]interface{}) (GenerateJob, error) {
	var job GenerateJob

	raw, _ := values[fieldStaticFileID].(string)
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return job, fmt.Errorf("invalid %s %q: %w", fieldStaticFileID, raw, err)
	}
	job.StaticFileID = id

	books, _ := values[fieldBookmakers].(string)
	books = strings.TrimSpace(books)
	if strings.HasPrefix(books, "[") {
		if err := json.Unmarshal([]byte(books), &job.Bookmakers); err != nil {
			return job, fmt.Errorf("invalid %s: %w", fieldBookmakers, err)
		}
		return job, nil
	}
	for _, b := range strings.Split(books, ",") {
		if b = strings.TrimSpace(b); b != "" {
			job.Bookmakers = append(job.Bookmakers, b)
		}
	}
	return job, nil
}

// StreamClient is the subset of the redis client used for jobs.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

type Publisher struct {
	client StreamClient
	stream string
}

func NewPublisher(client StreamClient, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// Enqueue appends job to the stream and returns the message id.
func (p *Publisher) Enqueue(ctx context.Context, job GenerateJob) (string, error) {
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: job.values(),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("enqueue to %s: %w", p.stream, err)
	}
	return id, nil
}

// Handler processes one job.
type Handler func(ctx context.Context, job GenerateJob) error

// Consumer reads jobs for a consumer group and runs them with bounded
// concurrency. Every delivered message is acknowledged once handled, failed
// or not; there are no retries.
type Consumer struct {
	client      StreamClient
	stream      string
	group       string
	name        string
	concurrency int
	jobTimeout  time.Duration
	block       time.Duration
	retryDelay  time.Duration
}

func NewConsumer(client StreamClient, stream, group, name string, concurrency int, jobTimeout time.Duration) *Consumer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Consumer{
		client:      client,
		stream:      stream,
		group:       group,
		name:        name,
		concurrency: concurrency,
		jobTimeout:  jobTimeout,
		block:       5 * time.Second,
		retryDelay:  time.Second,
	}
}

// EnsureGroup creates the stream and consumer group when missing.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s: %w", c.group, err)
	}
	return nil
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}
	log.Printf("Consumer %s reading %s as group %s", c.name, c.stream, c.group)

	for {
		if ctx.Err() != nil {
			return nil
		}
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{c.stream, ">"},
			Count:    int64(c.concurrency),
			Block:    c.block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("stream read error on %s: %v", c.stream, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		var wg sync.WaitGroup
		for _, s := range streams {
			for _, msg := range s.Messages {
				wg.Add(1)
				go func(msg redis.XMessage) {
					defer wg.Done()
					c.handle(ctx, msg, h)
				}(msg)
			}
		}
		wg.Wait()
	}
}

func (c *Consumer) handle(ctx context.Context, msg redis.XMessage, h Handler) {
	defer c.ack(msg.ID)

	job, err := DecodeJob(msg.Values)
	if err != nil {
		log.Printf("dropping malformed job %s: %v", msg.ID, err)
		return
	}

	jobCtx := ctx
	if c.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, c.jobTimeout)
		defer cancel()
	}
	if err := h(jobCtx, job); err != nil {
		log.Printf("job %s for static file %s failed: %v", msg.ID, job.StaticFileID, err)
	}
}

func (c *Consumer) ack(id string) {
	// Acknowledge even after shutdown so the message is not redelivered.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.client.XAck(ctx, c.stream, c.group, id).Err(); err != nil {
		log.Printf("ack %s failed: %v", id, err)
	}
}
