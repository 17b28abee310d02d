package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Outcomes reported to ConsumeObserver
const (
	ConsumeStatusSuccess = "success"
	ConsumeStatusInvalid = "invalid"
	ConsumeStatusFailed  = "failed"
)

// ConsumeObserver is notified once per processed delivery
type ConsumeObserver func(status string, elapsed time.Duration)

// AlertConsumer consumes the alerts queue and hands each event to a dispatcher.
// Runs in background inside the alert-consumer binary; with several replicas
// RabbitMQ distributes deliveries across them.
type AlertConsumer struct {
	conn           *amqp091.Connection
	channel        *amqp091.Channel
	queueName      string
	dispatcher     ports.AlertDispatcher
	observer       ConsumeObserver
	logger         *logrus.Logger
	connMutex      sync.RWMutex
	reconnectCh    chan bool
	stopReconnect  chan bool
	maxRetries     int
	retryDelay     time.Duration
	consumingCtx   context.Context
	consumingMutex sync.Mutex
	isConsuming    bool
}

// NewAlertConsumer creates a consumer bound to the alerts queue.
// It does not connect; call Connect before StartConsuming.
func NewAlertConsumer(queueName string, dispatcher ports.AlertDispatcher, observer ConsumeObserver, logger *logrus.Logger) *AlertConsumer {
	if queueName == "" {
		queueName = DefaultAlertsQueue
	}
	if observer == nil {
		observer = func(string, time.Duration) {}
	}
	return &AlertConsumer{
		queueName:     queueName,
		dispatcher:    dispatcher,
		observer:      observer,
		logger:        logger,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
	}
}

// Connect dials RabbitMQ and starts the reconnection handler
func (c *AlertConsumer) Connect(rabbitMQURL string) error {
	if err := c.connect(rabbitMQURL); err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	go c.handleReconnection(rabbitMQURL)
	return nil
}

// connect establishes connection to RabbitMQ
func (c *AlertConsumer) connect(rabbitMQURL string) error {
	var (
		conn *amqp091.Connection
		err  error
	)
	for i := 0; i < c.maxRetries; i++ {
		conn, err = amqp091.Dial(rabbitMQURL)
		if err == nil {
			break
		}
		c.logger.WithError(err).Warnf("failed to connect to RabbitMQ (attempt %d/%d)", i+1, c.maxRetries)
		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay)
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
	if err := declareAlertsQueue(ch, c.queueName); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	c.connMutex.Lock()
	c.conn = conn
	c.channel = ch
	c.connMutex.Unlock()

	c.logger.WithField("queue", c.queueName).Info("alert consumer connected to RabbitMQ")
	return nil
}

// handleReconnection reconnects and resumes consuming after a dropped channel
func (c *AlertConsumer) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-c.reconnectCh:
			c.logger.Info("attempting to reconnect to RabbitMQ")
			c.connMutex.Lock()
			if c.channel != nil && !c.channel.IsClosed() {
				c.channel.Close()
			}
			if c.conn != nil && !c.conn.IsClosed() {
				c.conn.Close()
			}
			c.connMutex.Unlock()

			if err := c.connect(rabbitMQURL); err != nil {
				c.logger.WithError(err).Error("RabbitMQ reconnection failed")
				time.Sleep(5 * time.Second)
				c.requestReconnect()
				continue
			}

			c.consumingMutex.Lock()
			ctx := c.consumingCtx
			restart := ctx != nil && ctx.Err() == nil && !c.isConsuming
			c.consumingMutex.Unlock()
			if restart {
				if err := c.StartConsuming(ctx); err != nil {
					c.logger.WithError(err).Error("failed to resume consuming")
				}
			}
		case <-c.stopReconnect:
			return
		}
	}
}

func (c *AlertConsumer) requestReconnect() {
	select {
	case c.reconnectCh <- true:
	default:
	}
}

// StartConsuming registers the consumer and processes deliveries in a
// background goroutine until ctx is cancelled. A second call while
// consuming is a no-op.
func (c *AlertConsumer) StartConsuming(ctx context.Context) error {
	c.consumingMutex.Lock()
	if c.isConsuming {
		c.consumingMutex.Unlock()
		c.logger.Debug("alert consumer already running, skipping duplicate start")
		return nil
	}
	c.isConsuming = true
	c.consumingCtx = ctx
	c.consumingMutex.Unlock()

	stopped := c.stopConsuming

	c.connMutex.RLock()
	channel := c.channel
	conn := c.conn
	c.connMutex.RUnlock()

	if channel == nil || channel.IsClosed() || conn == nil || conn.IsClosed() {
		stopped()
		return fmt.Errorf("RabbitMQ connection is closed")
	}

	// One unacknowledged delivery at a time
	if err := channel.Qos(1, 0, false); err != nil {
		stopped()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	consumerTag := fmt.Sprintf("alert-consumer-%d", time.Now().UnixNano())
	msgs, err := channel.Consume(
		c.queueName, // queue
		consumerTag, // consumer tag
		false,       // auto-ack (manual ack after dispatch)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		stopped()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"consumer_tag": consumerTag,
		"queue":        c.queueName,
	}).Info("alert consumer started")

	go c.consumeDeliveries(ctx, msgs)

	return nil
}

func (c *AlertConsumer) stopConsuming() {
	c.consumingMutex.Lock()
	c.isConsuming = false
	c.consumingMutex.Unlock()
}

// consumeDeliveries processes deliveries until ctx is cancelled or the
// channel closes. A closed channel clears the consuming state before asking
// for a reconnect, so the reconnect loop restarts consuming.
func (c *AlertConsumer) consumeDeliveries(ctx context.Context, msgs <-chan amqp091.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("alert consumer context cancelled")
			c.stopConsuming()
			return
		case msg, ok := <-msgs:
			if !ok {
				c.stopConsuming()
				c.logger.Warn("alert consumer channel closed, reconnecting")
				c.requestReconnect()
				return
			}
			c.processMessage(ctx, msg)
		}
	}
}

// processMessage decodes and dispatches one delivery.
// Malformed events are dropped; dispatch failures are requeued once.
func (c *AlertConsumer) processMessage(ctx context.Context, msg amqp091.Delivery) {
	start := time.Now()

	event, err := domain.DecodeAlertEvent(msg.Body)
	if err != nil {
		c.logger.WithError(err).WithField("message_id", msg.MessageId).Warn("dropping malformed alert event")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.WithError(nackErr).Error("failed to nack malformed alert event")
		}
		c.observer(ConsumeStatusInvalid, time.Since(start))
		return
	}

	fields := logrus.Fields{
		"alert_id": event.ID.String(),
		"kind":     string(event.Kind),
		"user_id":  event.UserID.String(),
		"severity": event.Severity,
	}

	if err := c.dispatcher.Dispatch(ctx, event); err != nil {
		// Requeue once; a delivery that already failed before is dropped
		requeue := !msg.Redelivered
		c.logger.WithFields(fields).WithError(err).WithField("requeue", requeue).Error("failed to dispatch alert")
		if nackErr := msg.Nack(false, requeue); nackErr != nil {
			c.logger.WithError(nackErr).Error("failed to nack alert event")
		}
		c.observer(ConsumeStatusFailed, time.Since(start))
		return
	}

	if err := msg.Ack(false); err != nil {
		// A redelivery only repeats the dashboard notification
		c.logger.WithFields(fields).WithError(err).Error("failed to acknowledge alert event")
	}
	c.logger.WithFields(fields).Info("alert dispatched")
	c.observer(ConsumeStatusSuccess, time.Since(start))
}

// Close stops reconnection and closes the RabbitMQ connection.
// The consuming context is cancelled by the caller.
func (c *AlertConsumer) Close() error {
	close(c.stopReconnect)

	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			c.logger.WithError(err).Warn("error closing RabbitMQ channel")
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			c.logger.WithError(err).Warn("error closing RabbitMQ connection")
		}
	}

	c.logger.Info("alert consumer closed")
	return nil
}
