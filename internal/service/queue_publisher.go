// Package service publishes domain events to RabbitMQ.  Errors are logged
// and returned so callers can ignore failures without interrupting the
// request that produced the event.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/biztime/internal/config"
	"github.com/iliyamo/biztime/internal/metrics"
	q "github.com/iliyamo/biztime/internal/queue"
)

const (
	dialTimeout    = time.Second
	publishTimeout = 2 * time.Second
)

// ErrBrokerUnavailable is returned while the publisher waits before dialing
// a broker that refused the previous attempt.
var ErrBrokerUnavailable = errors.New("rabbitmq: broker unavailable, waiting before redial")

// Publisher hands domain events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event q.Event) error
	Close() error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.Event) error { return nil }
func (NopPublisher) Close() error                            { return nil }

// AMQPPublisher publishes events to a durable RabbitMQ queue through the
// default exchange over one shared connection.  After a failed dial it
// stops dialing until an exponential backoff interval has passed, so an
// unreachable broker costs a write request at most one dial timeout per
// interval instead of one per event.
type AMQPPublisher struct {
	url    string
	queue  string
	logger echo.Logger

	dial func(url string) (*amqp.Connection, error)
	now  func() time.Time

	mu       sync.Mutex
	conn     *amqp.Connection
	retry    backoff.BackOff
	nextDial time.Time
}

// NewPublisher returns an AMQPPublisher for cfg, or a NopPublisher when no
// broker URL is configured.  The broker is dialed lazily on first publish.
func NewPublisher(cfg config.AMQPConfig, logger echo.Logger) Publisher {
	if cfg.URL == "" {
		return NopPublisher{}
	}
	return newAMQPPublisher(cfg, logger)
}

func newAMQPPublisher(cfg config.AMQPConfig, logger echo.Logger) *AMQPPublisher {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = time.Second
	retry.MaxInterval = time.Minute
	retry.MaxElapsedTime = 0 // never give up
	return &AMQPPublisher{
		url:    cfg.URL,
		queue:  cfg.Queue,
		logger: logger,
		dial: func(url string) (*amqp.Connection, error) {
			return amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
		},
		now:   time.Now,
		retry: retry,
	}
}

// connection returns the shared connection, dialing when there is none and
// the backoff interval has passed.
func (p *AMQPPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	if p.now().Before(p.nextDial) {
		return nil, ErrBrokerUnavailable
	}
	conn, err := p.dial(p.url)
	if err != nil {
		p.nextDial = p.now().Add(p.retry.NextBackOff())
		return nil, err
	}
	p.retry.Reset()
	p.conn = conn
	return conn, nil
}

// dropConnection closes conn if it is still the shared one so the next
// publish dials again.
func (p *AMQPPublisher) dropConnection(conn *amqp.Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == conn {
		_ = conn.Close()
		p.conn = nil
	}
}

// Publish sends event as a persistent JSON message.  Any error is logged and
// returned so the caller can choose to ignore it.
func (p *AMQPPublisher) Publish(ctx context.Context, event q.Event) (err error) {
	defer func() { metrics.RecordEventPublished(event.Type, err) }()

	conn, err := p.connection()
	if err != nil {
		if !errors.Is(err, ErrBrokerUnavailable) {
			p.logger.Errorf("rabbitmq: dial failed: %v", err)
		}
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Errorf("rabbitmq: channel open failed: %v", err)
		p.dropConnection(conn)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err = ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.logger.Errorf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err = ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.logger.Errorf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// Close closes the shared connection, if any.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
