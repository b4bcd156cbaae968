package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonathan/resume-coach/internal/types"
	"github.com/streadway/amqp"
)

// Queue and exchange names.
const (
	RequestQueue    = "analysis_requests"
	ResultsExchange = "analysis_results"
)

// RoutingKey returns the results routing key for a request.
func RoutingKey(requestID string) string {
	return fmt.Sprintf("analysis.%s", requestID)
}

// Publisher delivers a job result.
type Publisher interface {
	Publish(ctx context.Context, result types.AnalysisJobResult) error
}

// ChannelPublisher publishes results to the results exchange.
type ChannelPublisher struct {
	ch *amqp.Channel
}

// Publish implements Publisher.
func (p *ChannelPublisher) Publish(_ context.Context, result types.AnalysisJobResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	return p.ch.Publish(
		ResultsExchange,
		RoutingKey(result.RequestID),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    result.RequestID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Consumer runs a pool of workers that share one RabbitMQ connection.
type Consumer struct {
	conn      *amqp.Connection
	processor *Processor
	workers   int
}

// Dial connects to RabbitMQ.
func Dial(url string, processor *Processor, workers int) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	if workers < 1 {
		workers = 1
	}
	return &Consumer{conn: conn, processor: processor, workers: workers}, nil
}

// Close closes the connection.
func (c *Consumer) Close() error {
	return c.conn.Close()
}

// Declare creates the request queue and results exchange if they do not exist.
func Declare(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(
		RequestQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.ExchangeDeclare(
		ResultsExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// Run starts the workers and blocks until ctx is cancelled or a worker fails.
func (c *Consumer) Run(ctx context.Context) error {
	setup, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := Declare(setup); err != nil {
		_ = setup.Close()
		return err
	}
	_ = setup.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, c.workers)
	var wg sync.WaitGroup
	wg.Add(c.workers)
	for i := range c.workers {
		go func(id int) {
			defer wg.Done()
			log.Printf("[worker] worker %d started", id)
			if err := c.runWorker(ctx, id); err != nil {
				errs <- fmt.Errorf("worker %d: %w", id, err)
				cancel()
			}
		}(i + 1)
	}

	wg.Wait()
	close(errs)
	return <-errs
}

func (c *Consumer) runWorker(ctx context.Context, id int) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	deliveries, err := ch.Consume(
		RequestQueue,
		fmt.Sprintf("resume-coach-%d", id),
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume: %w", err)
	}

	publisher := &ChannelPublisher{ch: ch}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			HandleDelivery(ctx, d, c.processor, publisher)
		}
	}
}

// HandleDelivery processes one message. Malformed messages are rejected without requeue; the
// message is acked only after its result has been published, and requeued if publishing fails
// or ctx is cancelled while it is being processed.
func HandleDelivery(ctx context.Context, d amqp.Delivery, processor *Processor, publisher Publisher) {
	job, err := DecodeJob(d.Body)
	if err != nil {
		log.Printf("[worker] rejecting malformed message: %v", err)
		if err := d.Reject(false); err != nil {
			log.Printf("[worker] failed to reject message: %v", err)
		}
		return
	}

	log.Printf("[worker] processing request %s (%s)", job.RequestID, job.ObjectKey)
	result := processor.Process(ctx, job)
	if ctx.Err() != nil {
		log.Printf("[worker] shutting down, requeueing request %s", job.RequestID)
		if err := d.Nack(false, true); err != nil {
			log.Printf("[worker] failed to requeue message: %v", err)
		}
		return
	}

	if err := publisher.Publish(ctx, result); err != nil {
		log.Printf("[worker] failed to publish result for request %s: %v", job.RequestID, err)
		if err := d.Nack(false, true); err != nil {
			log.Printf("[worker] failed to requeue message: %v", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		log.Printf("[worker] failed to ack message: %v", err)
	}
}
