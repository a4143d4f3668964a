// Package queue runs resume analyses asynchronously over RabbitMQ. The API
// enqueues jobs, workers process them and every status change is fanned out
// on a topic exchange.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const ExchangeKind = "topic"

// Job asks a worker to analyze a stored resume.
type Job struct {
	AnalysisID     uuid.UUID `json:"analysis_id"`
	ResumeID       uuid.UUID `json:"resume_id"`
	JobDescription string    `json:"job_description,omitempty"`
}

// Update is published on every analysis status transition.
type Update struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// RoutingKey is the topic subscribers bind to for one analysis.
func RoutingKey(analysisID uuid.UUID) string {
	return fmt.Sprintf("analysis.%s", analysisID)
}

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Opener returns a fresh channel. AMQP channels are not safe for concurrent
// use, so each publish opens its own.
type Opener func() (Channel, error)

func ConnOpener(conn *amqp.Connection) Opener {
	return func() (Channel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
}

type Publisher struct {
	open  Opener
	queue string
}

func NewPublisher(open Opener, queue string) *Publisher {
	return &Publisher{open: open, queue: queue}
}

// Enqueue publishes job as a persistent message on the durable work queue.
func (p *Publisher) Enqueue(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if _, err := declareQueue(ch, p.queue); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	return ch.Publish("", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.AnalysisID.String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func declareQueue(ch Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
}

type Notifier struct {
	open     Opener
	exchange string
	logger   *zap.Logger
}

func NewNotifier(open Opener, exchange string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{open: open, exchange: exchange, logger: logger}
}

// Notify publishes u on the updates exchange under RoutingKey(u.AnalysisID).
func (n *Notifier) Notify(_ context.Context, u Update) error {
	ch, err := n.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(n.exchange, ExchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, _ := json.Marshal(u)
	return ch.Publish(
		n.exchange,
		RoutingKey(u.AnalysisID),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
