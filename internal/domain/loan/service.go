package loan

import (
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

type LoanService interface {
	CheckEligibility(ctx context.Context, app Application) (*Decision, error)

	CreateLoan(ctx context.Context, app Application) (*CreationResult, error)

	GetLoan(ctx context.Context, loanID int64) (*Loan, error)

	ListActiveLoans(ctx context.Context, customerID int64) ([]Loan, error)

	PostPayment(ctx context.Context, customerID, loanID int64, amount decimal.Decimal) (*PaymentResult, error)

	GetStatement(ctx context.Context, customerID, loanID int64) (*Statement, error)
}

type loanServiceImpl struct {
	repo            Repository
	evaluator       Evaluator
	customerService customer.CustomerService
	pub             event.EventPublisher
	logger          *slog.Logger
	now             func() time.Time
}

func NewLoanService(r Repository, evaluator Evaluator, cs customer.CustomerService, pub event.EventPublisher, logger *slog.Logger) LoanService {
	if r == nil || evaluator == nil || cs == nil {
		panic("loan service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if pub == nil {
		pub = event.NewNoopPublisher(logger)
	}
	return &loanServiceImpl{
		repo:            r,
		evaluator:       evaluator,
		customerService: cs,
		pub:             pub,
		logger:          logger.With(slog.String("component", "loanService")),
		now:             time.Now,
	}
}

func NewLoanEventPayload(l *Loan) event.LoanEventPayload {
	if l == nil {
		return event.LoanEventPayload{}
	}
	return event.LoanEventPayload{
		LoanID:           l.ID,
		CustomerID:       l.CustomerID,
		Principal:        l.Principal,
		InterestRate:     l.InterestRate,
		TermMonths:       l.TermMonths,
		Installment:      l.Installment,
		RemainingBalance: l.RemainingBalance,
		EMIsPaidOnTime:   l.EMIsPaidOnTime,
		Status:           string(l.Status),
		ApprovalDate:     l.ApprovalDate,
		EndDate:          l.EndDate,
	}
}

func (s *loanServiceImpl) CheckEligibility(ctx context.Context, app Application) (*Decision, error) {
	s.logger.InfoContext(ctx, "Checking eligibility", "customerID", app.CustomerID)

	decision, err := s.evaluator.Evaluate(ctx, app)
	if err != nil {
		s.logger.WarnContext(ctx, "Eligibility evaluation failed", "customerID", app.CustomerID, "error", err)
		return nil, err
	}
	monitoring.RecordDecision(decision.Approved, decision.Reason)
	return decision, nil
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, app Application) (*CreationResult, error) {
	s.logger.InfoContext(ctx, "Creating new loan", "customerID", app.CustomerID)

	decision, err := s.evaluator.Evaluate(ctx, app)
	if err != nil {
		s.logger.WarnContext(ctx, "Eligibility evaluation failed", "customerID", app.CustomerID, "error", err)
		return nil, err
	}
	monitoring.RecordDecision(decision.Approved, decision.Reason)

	if !decision.Approved {
		s.logger.InfoContext(ctx, "Loan application rejected", "customerID", app.CustomerID, "reason", decision.Reason)
		return &CreationResult{Decision: decision}, nil
	}

	loan, err := NewLoan(app.CustomerID, app.Amount, decision.CorrectedRate, app.TermMonths, decision.Installment, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create new loan object", "error", err)
		return nil, fmt.Errorf("failed to create new loan object: %w", err)
	}

	created, err := s.repo.CreateLoan(ctx, loan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan", "customerID", app.CustomerID, "error", err)
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	monitoring.RecordLoanCreated()

	if pubErr := s.pub.PublishLoanCreated(ctx, event.LoanCreatedEvent{Timestamp: s.now(), Payload: NewLoanEventPayload(created)}); pubErr != nil {
		s.logger.ErrorContext(ctx, "Loan created, but FAILED to publish creation event", "loanID", created.ID, "error", pubErr)
	}

	s.logger.InfoContext(ctx, "Loan created successfully", "loanID", created.ID, "customerID", app.CustomerID)
	return &CreationResult{Decision: decision, Loan: created}, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID int64) (*Loan, error) {
	s.logger.DebugContext(ctx, "Getting loan details", "loanID", loanID)
	loan, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan with ID %d", ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}
	return loan, nil
}

func (s *loanServiceImpl) ListActiveLoans(ctx context.Context, customerID int64) ([]Loan, error) {
	if _, err := s.customerService.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	today := DateOnly(s.now())
	loans, err := s.repo.ListByCustomer(ctx, customerID, ListFilter{ActiveOn: &today})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list customer loans", "customerID", customerID, "error", err)
		return nil, fmt.Errorf("failed to list loans for customer %d: %w", customerID, err)
	}
	return loans, nil
}

func (s *loanServiceImpl) PostPayment(ctx context.Context, customerID, loanID int64, amount decimal.Decimal) (result *PaymentResult, err error) {
	s.logger.InfoContext(ctx, "Posting payment", "loanID", loanID, "customerID", customerID, "amount", amount.String())
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		monitoring.RecordPayment("failure_storage")
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			s.logger.ErrorContext(ctx, "Panic occurred during payment processing", "loanID", loanID, "error", p)
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		}
		if err != nil {
			monitoring.RecordPayment(paymentFailureStatus(err))
			s.logger.WarnContext(ctx, "Rolling back payment transaction", "loanID", loanID, "error", err)
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	loan, err := s.repo.GetLoanForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: cannot post payment, loan ID %d", ErrNotFound, loanID)
		}
		return nil, fmt.Errorf("could not lock loan %d: %w", loanID, err)
	}
	if loan.CustomerID != customerID {
		return nil, fmt.Errorf("%w: loan %d does not belong to customer %d", ErrNotFound, loanID, customerID)
	}

	result, err = loan.ApplyPayment(amount, s.now())
	if err != nil {
		return nil, err
	}

	if err = s.repo.UpdateLoanInTx(ctx, tx, loan); err != nil {
		return nil, fmt.Errorf("could not update loan %d: %w", loanID, err)
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("could not commit payment for loan %d: %w", loanID, err)
	}

	monitoring.RecordPayment("success")
	s.publishPaymentEvents(ctx, result)
	s.logger.InfoContext(ctx, "Payment posted successfully",
		"loanID", loanID,
		"remainingBalance", loan.RemainingBalance.String(),
		"restructured", result.Restructured,
		"paidOff", result.PaidOff,
	)
	return result, nil
}

func (s *loanServiceImpl) publishPaymentEvents(ctx context.Context, result *PaymentResult) {
	payload := NewLoanEventPayload(result.Loan)
	posted := event.PaymentPostedEvent{
		Timestamp:    s.now(),
		Amount:       result.Amount,
		OnSchedule:   result.OnSchedule,
		Restructured: result.Restructured,
		PreviousEMI:  result.PreviousInstallment,
		Payload:      payload,
	}
	if err := s.pub.PublishPaymentPosted(ctx, posted); err != nil {
		s.logger.ErrorContext(ctx, "Payment posted, but FAILED to publish payment event", "loanID", payload.LoanID, "error", err)
	}

	if !result.PaidOff {
		return
	}
	monitoring.RecordLoanPaidOff()
	if err := s.pub.PublishLoanPaidOff(ctx, event.LoanPaidOffEvent{Timestamp: s.now(), Payload: payload}); err != nil {
		s.logger.ErrorContext(ctx, "Loan paid off, but FAILED to publish pay-off event", "loanID", payload.LoanID, "error", err)
	}
}

func paymentFailureStatus(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrOverpayment):
		return "failure_overpayment"
	case errors.Is(err, apperrors.ErrLoanFullyPaid):
		return "failure_fully_paid"
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return "failure_amount"
	case errors.Is(err, apperrors.ErrNotFound):
		return "failure_not_found"
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		return "failure_storage"
	default:
		return "failure_internal"
	}
}

func (s *loanServiceImpl) GetStatement(ctx context.Context, customerID, loanID int64) (*Statement, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.CustomerID != customerID {
		s.logger.WarnContext(ctx, "Statement requested for loan of another customer", "loanID", loanID, "customerID", customerID)
		return nil, fmt.Errorf("%w: loan %d does not belong to customer %d", ErrNotFound, loanID, customerID)
	}

	statement := loan.Statement()
	return &statement, nil
}
