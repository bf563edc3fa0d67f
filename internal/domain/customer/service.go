package customer

import (
	"context"
	"credit-engine/internal/event"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const (
	customerNotFound = "Customer not found by repository"
)

type RegistrationRequest struct {
	FirstName     string
	LastName      string
	Age           int
	MonthlyIncome decimal.Decimal
	PhoneNumber   string
}

type CustomerService interface {
	RegisterCustomer(ctx context.Context, req RegistrationRequest) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	policy LimitPolicy
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, publisher event.EventPublisher, policy LimitPolicy, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		logger.Warn("No event publisher provided to NewCustomerService, events will be dropped")
		publisher = event.NewNoopPublisher(logger)
	}
	if policy.BucketSize <= 0 || policy.Multiplier <= 0 {
		policy = DefaultLimitPolicy
	}

	return &customerService{
		repo:   repo,
		pub:    publisher,
		policy: policy,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:    cust.CustomerID,
		Name:          cust.Name(),
		Age:           cust.Age,
		MonthlyIncome: cust.MonthlyIncome,
		ApprovedLimit: cust.ApprovedLimit,
		PhoneNumber:   cust.PhoneNumber,
		CreatedAt:     cust.CreatedAt,
	}
}

func (s *customerService) RegisterCustomer(ctx context.Context, req RegistrationRequest) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register new customer")

	customer, err := NewCustomer(req.FirstName, req.LastName, req.Age, req.MonthlyIncome, req.PhoneNumber, s.policy)
	if err != nil {
		s.logger.WarnContext(ctx, "Registration input rejected", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.Save(ctx, customer); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	log := s.logger.With(slog.Int64("customerID", customer.CustomerID))
	registered := event.CustomerRegisteredEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(customer),
	}
	if pubErr := s.pub.PublishCustomerRegistered(ctx, registered); pubErr != nil {
		log.ErrorContext(ctx, "Customer registered, but FAILED to publish registration event", slog.Any("error", pubErr))
	}

	log.InfoContext(ctx, "Successfully registered new customer", slog.String("approvedLimit", customer.ApprovedLimit.String()))
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	log := s.logger.With(slog.Int64("customerID", customerID))
	log.DebugContext(ctx, "Attempting to get customer by ID")

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.WarnContext(ctx, customerNotFound)
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, customerID)
		}
		log.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	return customer, nil
}
