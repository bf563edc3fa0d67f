package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingKeyCustomerRegistered       = "customer.registered"
	RoutingKeyCustomerExposureExceeded = "customer.exposure.exceeded"
	RoutingKeyLoanCreated              = "loan.created"
	RoutingKeyPaymentPosted            = "loan.payment.posted"
	RoutingKeyLoanPaidOff              = "loan.paid_off"
	publisherAppID                     = "credit-engine"
)

type EventPublisher interface {
	PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error
	PublishExposureExceeded(ctx context.Context, event ExposureExceededEvent) error
	PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error
	PublishPaymentPosted(ctx context.Context, event PaymentPostedEvent) error
	PublishLoanPaidOff(ctx context.Context, event LoanPaidOffEvent) error
}

type RabbitMQEventPublisher struct {
	conn         *amqp.Connection
	exchangeName string
	logger       *slog.Logger
}

var _ EventPublisher = (*RabbitMQEventPublisher)(nil)

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (EventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
	}, nil
}

func (p *RabbitMQEventPublisher) PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error {
	return p.publish(ctx, RoutingKeyCustomerRegistered, event)
}

func (p *RabbitMQEventPublisher) PublishExposureExceeded(ctx context.Context, event ExposureExceededEvent) error {
	return p.publish(ctx, RoutingKeyCustomerExposureExceeded, event)
}

func (p *RabbitMQEventPublisher) PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error {
	return p.publish(ctx, RoutingKeyLoanCreated, event)
}

func (p *RabbitMQEventPublisher) PublishPaymentPosted(ctx context.Context, event PaymentPostedEvent) error {
	return p.publish(ctx, RoutingKeyPaymentPosted, event)
}

func (p *RabbitMQEventPublisher) PublishLoanPaidOff(ctx context.Context, event LoanPaidOffEvent) error {
	return p.publish(ctx, RoutingKeyLoanPaidOff, event)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

	msg, err := buildPublishing(payload, time.Now())
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return err
	}

	channel, err := p.conn.Channel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	logCtx.DebugContext(ctx, "Publishing message", "messageID", msg.MessageId, "bodySize", len(msg.Body))

	err = channel.PublishWithContext(ctx, p.exchangeName, routingKey, false, false, msg)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message", "messageID", msg.MessageId)
	return nil
}

func buildPublishing(payload any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Body:         body,
		AppId:        publisherAppID,
	}, nil
}
