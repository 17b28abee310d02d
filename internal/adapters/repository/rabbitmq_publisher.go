package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// DefaultAlertsQueue is used when no queue name is configured
const DefaultAlertsQueue = "maternal_alerts"

// RabbitMQPublisher implements AlertPublisher for publishing alerts to RabbitMQ
// Includes retry logic and circuit breaker for resilience
type RabbitMQPublisher struct {
	conn          *amqp091.Connection
	channel       *amqp091.Channel
	queueName     string
	cb            *gobreaker.CircuitBreaker
	maxRetries    int
	retryDelay    time.Duration
	connMutex     sync.RWMutex
	reconnectCh   chan bool
	stopReconnect chan bool
	logger        *logrus.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ publisher with circuit breaker
func NewRabbitMQPublisher(rabbitMQURL string, queueName string, logger *logrus.Logger) (*RabbitMQPublisher, error) {
	if queueName == "" {
		queueName = DefaultAlertsQueue
	}

	publisher := &RabbitMQPublisher{
		queueName:     queueName,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
		logger:        logger,
	}

	publisher.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rabbitmq",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	if err := publisher.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go publisher.handleReconnection(rabbitMQURL)

	return publisher, nil
}

// connect establishes connection to RabbitMQ and declares the alerts queue
func (p *RabbitMQPublisher) connect(rabbitMQURL string) error {
	var (
		conn *amqp091.Connection
		err  error
	)
	for i := 0; i < p.maxRetries; i++ {
		conn, err = amqp091.Dial(rabbitMQURL)
		if err == nil {
			break
		}
		p.logger.WithError(err).Warnf("failed to connect to RabbitMQ (attempt %d/%d)", i+1, p.maxRetries)
		if i < p.maxRetries-1 {
			time.Sleep(p.retryDelay)
		}
	}
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	if err := declareAlertsQueue(ch, p.queueName); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	p.connMutex.Lock()
	p.conn = conn
	p.channel = ch
	p.connMutex.Unlock()

	p.logger.WithField("queue", p.queueName).Info("connected to RabbitMQ")
	return nil
}

// declareAlertsQueue declares the durable alerts queue (idempotent)
func declareAlertsQueue(ch *amqp091.Channel, queueName string) error {
	_, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	return err
}

// handleReconnection handles automatic reconnection to RabbitMQ
func (p *RabbitMQPublisher) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-p.reconnectCh:
			p.logger.Info("attempting to reconnect to RabbitMQ")
			p.connMutex.Lock()
			if p.channel != nil {
				p.channel.Close()
			}
			if p.conn != nil {
				p.conn.Close()
			}
			p.connMutex.Unlock()

			if err := p.connect(rabbitMQURL); err != nil {
				p.logger.WithError(err).Error("RabbitMQ reconnection failed")
			}
		case <-p.stopReconnect:
			return
		}
	}
}

// PublishRiskAlert publishes the High rated conditions of a symptom submission
func (p *RabbitMQPublisher) PublishRiskAlert(ctx context.Context, alert *domain.RiskAlert) error {
	return p.publish(ctx, domain.NewRiskAlertEvent(alert))
}

// PublishFamilyAlert publishes an alert addressed to the user's contacts
func (p *RabbitMQPublisher) PublishFamilyAlert(ctx context.Context, alert *domain.FamilyAlert) error {
	return p.publish(ctx, domain.NewFamilyAlertEvent(alert))
}

func (p *RabbitMQPublisher) publish(ctx context.Context, event domain.AlertEvent) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.publishWithRetry(ctx, event)
	})
	return err
}

// publishWithRetry publishes with retry logic
func (p *RabbitMQPublisher) publishWithRetry(ctx context.Context, event domain.AlertEvent) error {
	startTime := time.Now()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	fields := logrus.Fields{
		"event":    "alert_publish_attempt",
		"alert_id": event.ID.String(),
		"kind":     string(event.Kind),
		"user_id":  event.UserID.String(),
		"severity": event.Severity,
	}
	p.logger.WithFields(fields).Debug("publishing alert")

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		p.connMutex.RLock()
		ch := p.channel
		conn := p.conn
		p.connMutex.RUnlock()

		if ch == nil || conn == nil || conn.IsClosed() {
			p.requestReconnect()
			lastErr = fmt.Errorf("RabbitMQ connection is closed")
			time.Sleep(p.retryDelay)
			continue
		}

		err = ch.PublishWithContext(
			ctx,
			"",          // exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				Body:         body,
				DeliveryMode: amqp091.Persistent,
				MessageId:    event.ID.String(),
				Type:         string(event.Kind),
				Timestamp:    time.Now(),
			},
		)
		if err == nil {
			p.logger.WithFields(fields).
				WithField("latency_ms", time.Since(startTime).Milliseconds()).
				Info("alert published")
			return nil
		}

		lastErr = err
		p.logger.WithFields(fields).WithError(err).
			Warnf("failed to publish alert (attempt %d/%d)", i+1, p.maxRetries)

		if i < p.maxRetries-1 {
			p.requestReconnect()
			time.Sleep(p.retryDelay)
		}
	}

	return fmt.Errorf("failed to publish alert after %d retries: %w", p.maxRetries, lastErr)
}

func (p *RabbitMQPublisher) requestReconnect() {
	select {
	case p.reconnectCh <- true:
	default:
	}
}

// Close closes the RabbitMQ connection
func (p *RabbitMQPublisher) Close() error {
	close(p.stopReconnect)
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Ensure RabbitMQPublisher implements the interface
var _ ports.AlertPublisher = (*RabbitMQPublisher)(nil)
