package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// AMQPTypeUserEvent marks deliveries carrying a user event.
	AMQPTypeUserEvent = "user_event"
	// AMQPTypeAdminEvent marks deliveries carrying an admin event.
	AMQPTypeAdminEvent = "admin_event"
)

var errAMQPConsumerStarted = errors.New("ingest.amqp.already_started")

// AMQPConsumer feeds events from a durable AMQP queue into a Listener.
// The delivery Type property selects the event shape.
type AMQPConsumer struct {
	conn        *amqp.Connection
	listener    *Listener
	logger      *zap.Logger
	queueName   string
	channel     *amqp.Channel
	consumerTag string
	mutex       sync.Mutex
	cancelFunc  context.CancelFunc
	stopped     chan struct{}
}

// DialAMQP opens a connection to the broker at url.
func DialAMQP(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("ingest.amqp.dial: %w", err)
	}
	return conn, nil
}

// NewAMQPConsumer constructs a consumer for queueName.
func NewAMQPConsumer(conn *amqp.Connection, listener *Listener, logger *zap.Logger, queueName string) *AMQPConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPConsumer{
		conn:      conn,
		listener:  listener,
		logger:    logger.Named("AMQPConsumer"),
		queueName: queueName,
	}
}

// Start declares the queue and consumes it on a background goroutine until ctx ends or Stop is called.
func (consumer *AMQPConsumer) Start(ctx context.Context) error {
	consumer.mutex.Lock()
	defer consumer.mutex.Unlock()
	if consumer.channel != nil {
		return errAMQPConsumerStarted
	}

	channel, err := consumer.conn.Channel()
	if err != nil {
		return fmt.Errorf("ingest.amqp.channel: %w", err)
	}
	if _, err := channel.QueueDeclare(consumer.queueName, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		return fmt.Errorf("ingest.amqp.declare.%s: %w", consumer.queueName, err)
	}
	if err := channel.Qos(32, 0, false); err != nil {
		_ = channel.Close()
		return fmt.Errorf("ingest.amqp.qos: %w", err)
	}
	consumer.consumerTag = fmt.Sprintf("event-metrics-%d", time.Now().UnixNano())
	deliveries, err := channel.Consume(consumer.queueName, consumer.consumerTag, false, false, false, false, nil)
	if err != nil {
		_ = channel.Close()
		return fmt.Errorf("ingest.amqp.consume.%s: %w", consumer.queueName, err)
	}

	consumerContext, cancel := context.WithCancel(ctx)
	consumer.channel = channel
	consumer.cancelFunc = cancel
	consumer.stopped = make(chan struct{})
	consumer.logger.Info("consuming event queue", zap.String("queue", consumer.queueName))

	go consumer.run(consumerContext, deliveries, consumer.stopped)
	return nil
}

// Stop cancels consumption and waits for the consuming goroutine to exit.
func (consumer *AMQPConsumer) Stop() {
	consumer.mutex.Lock()
	cancel := consumer.cancelFunc
	stopped := consumer.stopped
	consumer.mutex.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (consumer *AMQPConsumer) run(ctx context.Context, deliveries <-chan amqp.Delivery, stopped chan struct{}) {
	defer close(stopped)
	defer consumer.closeChannel()
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				consumer.logger.Warn("delivery channel closed", zap.String("queue", consumer.queueName))
				return
			}
			consumer.handleDelivery(delivery)
		}
	}
}

func (consumer *AMQPConsumer) closeChannel() {
	consumer.mutex.Lock()
	defer consumer.mutex.Unlock()
	if consumer.channel == nil {
		return
	}
	if err := consumer.channel.Cancel(consumer.consumerTag, false); err != nil {
		consumer.logger.Debug("consumer cancel failed", zap.Error(err))
	}
	if err := consumer.channel.Close(); err != nil {
		consumer.logger.Debug("channel close failed", zap.Error(err))
	}
	consumer.channel = nil
	consumer.cancelFunc = nil
}

func (consumer *AMQPConsumer) handleDelivery(delivery amqp.Delivery) {
	var dispatchErr error
	switch delivery.Type {
	case AMQPTypeUserEvent:
		event, err := DecodeUserEvent(delivery.Body)
		if err == nil {
			consumer.listener.OnEvent(event)
		}
		dispatchErr = err
	case AMQPTypeAdminEvent:
		event, err := DecodeAdminEvent(delivery.Body)
		if err == nil {
			consumer.listener.OnAdminEvent(event)
		}
		dispatchErr = err
	default:
		dispatchErr = fmt.Errorf("%w: unknown delivery type %q", ErrInvalidEvent, delivery.Type)
	}

	if dispatchErr != nil {
		consumer.logger.Warn("rejecting undecodable delivery",
			zap.String("code", "ingest.amqp.invalid_event"),
			zap.Uint64("delivery_tag", delivery.DeliveryTag),
			zap.Error(dispatchErr))
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			consumer.logger.Error("nack failed", zap.Uint64("delivery_tag", delivery.DeliveryTag), zap.Error(nackErr))
		}
		return
	}
	if ackErr := delivery.Ack(false); ackErr != nil {
		consumer.logger.Error("ack failed", zap.Uint64("delivery_tag", delivery.DeliveryTag), zap.Error(ackErr))
	}
}
