package queue

// consumer.go holds the background consumer that listens to the events
// queue and appends one audit line per event to a log file.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/biztime/internal/config"
)

// StartEventConsumer connects to RabbitMQ, declares the events queue
// (durable) and consumes it until ctx is cancelled.  Broker failures are
// retried with exponential backoff; a message that cannot be handled is
// logged and rejected without requeue so the loop keeps going.
func StartEventConsumer(ctx context.Context, cfg config.AMQPConfig, logger echo.Logger) error {
	for {
		var conn *amqp.Connection
		dial := func() error {
			c, err := amqp.Dial(cfg.URL)
			if err != nil {
				logger.Warnf("event-consumer: failed to dial broker: %v", err)
				return err
			}
			conn = c
			return nil
		}
		policy := backoff.NewExponentialBackOff()
		policy.MaxElapsedTime = 0 // keep trying until ctx ends
		if err := backoff.Retry(dial, backoff.WithContext(policy, ctx)); err != nil {
			return ctx.Err()
		}

		err := consumeLoop(ctx, conn, cfg, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warnf("event-consumer: consume loop ended: %v; reconnecting", err)
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg config.AMQPConfig, logger echo.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warnf("event-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(cfg.AuditLogPath, d.Body); err != nil {
				logger.Errorf("event-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(path string, body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatEvent renders ev as a single human-friendly line.
func formatEvent(ev Event) string {
	at := ev.OccurredAt
	if at == "" {
		at = time.Now().UTC().Format(time.RFC3339)
	}
	if ev.InvoiceID == 0 {
		return fmt.Sprintf("[%s] %s | comp_code=%s\n", at, ev.Type, ev.CompCode)
	}
	paidDate := ev.PaidDate
	if paidDate == "" {
		paidDate = "-"
	}
	return fmt.Sprintf("[%s] %s | invoice_id=%d | comp_code=%s | amt=%.2f | paid=%t | paid_date=%s\n",
		at, ev.Type, ev.InvoiceID, ev.CompCode, ev.Amt, ev.Paid, paidDate)
}
