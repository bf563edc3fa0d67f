package event

import (
	"context"
	"log/slog"
)

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

var _ EventPublisher = (*NoopPublisher)(nil)

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger.With("component", "NoopPublisher")}
}

func (p *NoopPublisher) PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error {
	return p.drop(ctx, RoutingKeyCustomerRegistered)
}

func (p *NoopPublisher) PublishExposureExceeded(ctx context.Context, event ExposureExceededEvent) error {
	return p.drop(ctx, RoutingKeyCustomerExposureExceeded)
}

func (p *NoopPublisher) PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error {
	return p.drop(ctx, RoutingKeyLoanCreated)
}

func (p *NoopPublisher) PublishPaymentPosted(ctx context.Context, event PaymentPostedEvent) error {
	return p.drop(ctx, RoutingKeyPaymentPosted)
}

func (p *NoopPublisher) PublishLoanPaidOff(ctx context.Context, event LoanPaidOffEvent) error {
	return p.drop(ctx, RoutingKeyLoanPaidOff)
}

func (p *NoopPublisher) drop(ctx context.Context, routingKey string) error {
	p.logger.DebugContext(ctx, "Event dropped, no broker configured", slog.String("routingKey", routingKey))
	return nil
}
