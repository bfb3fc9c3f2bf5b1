package rabbit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"classroom-quiz/internal/domain"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// FinishedRoutingKey is the routing key of finished-session events.
const FinishedRoutingKey = "quiz.finished"

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// ResultsPublisher fans final results out to a topic exchange so export and
// grade-book services can consume them.
type ResultsPublisher struct {
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex // amqp channels must not be shared between concurrent publishers
	ch Channel
}

// Dial connects to the broker and declares the exchange.
func Dial(url, exchange string) (*ResultsPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}
	p, err := NewResultsPublisher(ch, exchange)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewResultsPublisher declares the exchange on an existing channel.
func NewResultsPublisher(ch Channel, exchange string) (*ResultsPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, errors.Wrapf(err, "declare exchange %s", exchange)
	}
	return &ResultsPublisher{ch: ch, exchange: exchange}, nil
}

func (p *ResultsPublisher) SaveResults(ctx context.Context, results domain.FinalResults) error {
	body, err := json.Marshal(results)
	if err != nil {
		return errors.Wrap(err, "marshal results")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, FinishedRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return errors.Wrapf(err, "publish results for %s", results.Pin)
	}
	return nil
}

// Close releases the channel and, when dialed here, the connection.
func (p *ResultsPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
