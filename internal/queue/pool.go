package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, body []byte) error

// Pool consumes deliveries with a fixed number of workers.
type Pool struct {
	Workers int
	Handle  HandlerFunc
	Logger  *zap.Logger
}

// Run blocks until deliveries is closed or ctx is done. Messages are acked
// once handled, including ones whose analysis failed and was recorded as
// such. Malformed messages are dropped with a nack; messages cut short by
// shutdown are nacked back onto the queue.
func (p *Pool) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := max(p.Workers, 1)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		logger.Info("worker started", zap.Int("worker_id", i+1))
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id, deliveries, logger.With(zap.Int("worker_id", id)))
		}(i + 1)
	}
	wg.Wait()
}

func (p *Pool) work(ctx context.Context, id int, deliveries <-chan amqp.Delivery, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			err := p.Handle(ctx, d.Body)
			switch {
			case errors.Is(err, ErrMalformed):
				logger.Error("dropping malformed message", zap.Error(err))
				if nerr := d.Nack(false, false); nerr != nil {
					logger.Error("failed to nack message", zap.Error(nerr))
				}
				continue
			case errors.Is(err, ErrInterrupted) || (err != nil && ctx.Err() != nil):
				logger.Warn("requeueing interrupted message", zap.Error(err))
				if nerr := d.Nack(false, true); nerr != nil {
					logger.Error("failed to requeue message", zap.Error(nerr))
				}
				continue
			case err != nil:
				logger.Warn("message processed with error", zap.Error(err))
			}
			if aerr := d.Ack(false); aerr != nil {
				logger.Error("failed to ack message", zap.Error(aerr))
			}
		}
	}
}

// Consume dials RabbitMQ, declares the work queue and runs a pool of workers
// on it until ctx is done or the broker closes the channel.
func Consume(ctx context.Context, url, queueName string, workers int, handle HandlerFunc, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if _, err := declareQueue(ch, queueName); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(workers, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq messages: %w", err)
	}

	logger.Info("starting consumer worker pool", zap.String("queue", queueName), zap.Int("workers", workers))
	pool := &Pool{Workers: workers, Handle: handle, Logger: logger}
	pool.Run(ctx, msgs)
	if ctx.Err() != nil {
		return nil
	}
	return errors.New("rabbitmq delivery channel closed")
}
