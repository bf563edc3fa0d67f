package credit

import (
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const (
	baseScore            = 100
	penaltyPerLoan       = 5
	bonusPerOnTimeEMI    = 10
	bonusPerLoanThisYear = 15
)

var volumeUnit = decimal.NewFromInt(100000)

// Snapshot is everything the scoring and eligibility rules read, fetched once
// per request.
type Snapshot struct {
	Customer *customer.Customer
	Loans    []loan.Loan
	AsOf     time.Time
}

func (s Snapshot) ActiveLoans() []loan.Loan {
	active := make([]loan.Loan, 0, len(s.Loans))
	for _, l := range s.Loans {
		if l.IsActiveOn(s.AsOf) {
			active = append(active, l)
		}
	}
	return active
}

// CurrentExposure sums the principal of the loans active on AsOf.
func (s Snapshot) CurrentExposure() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.ActiveLoans() {
		total = total.Add(l.Principal)
	}
	return total
}

func (s Snapshot) ActiveInstallments() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.ActiveLoans() {
		total = total.Add(l.Installment)
	}
	return total
}

func (s Snapshot) OverLimit() bool {
	return s.CurrentExposure().GreaterThan(s.Customer.ApprovedLimit)
}

// ComputeScore derives the credit score from the snapshot. Customers above
// their approved limit score 0; everyone else starts at 100 and is adjusted
// by their whole loan history. The result is never negative.
func ComputeScore(s Snapshot) int {
	if s.OverLimit() {
		return 0
	}

	year := s.AsOf.Year()
	paidOnTime := 0
	startedThisYear := 0
	volume := decimal.Zero
	for _, l := range s.Loans {
		paidOnTime += l.EMIsPaidOnTime
		if l.StartedInYear(year) {
			startedThisYear++
		}
		volume = volume.Add(l.Principal)
	}

	score := baseScore -
		penaltyPerLoan*len(s.Loans) +
		bonusPerOnTimeEMI*paidOnTime +
		bonusPerLoanThisYear*startedThisYear +
		int(volume.Div(volumeUnit).Floor().IntPart())
	if score < 0 {
		return 0
	}
	return score
}

type Scorer struct {
	customers customer.CustomerService
	loans     loan.Repository
	logger    *slog.Logger
	now       func() time.Time
}

func NewScorer(customers customer.CustomerService, loans loan.Repository, logger *slog.Logger) *Scorer {
	if customers == nil || loans == nil {
		panic("scorer dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		customers: customers,
		loans:     loans,
		logger:    logger.With(slog.String("component", "creditScorer")),
		now:       time.Now,
	}
}

// Snapshot loads the customer and the full loan history.
func (s *Scorer) Snapshot(ctx context.Context, customerID int64) (*Snapshot, error) {
	cust, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	loans, err := s.loans.ListByCustomer(ctx, customerID, loan.ListFilter{})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read loan history", "customerID", customerID, "error", err)
		return nil, fmt.Errorf("failed to read loan history for customer %d: %w", customerID, err)
	}

	return &Snapshot{Customer: cust, Loans: loans, AsOf: s.now()}, nil
}

func (s *Scorer) Score(ctx context.Context, customerID int64) (int, error) {
	snap, err := s.Snapshot(ctx, customerID)
	if err != nil {
		return 0, err
	}
	score := ComputeScore(*snap)
	s.logger.DebugContext(ctx, "Computed credit score", "customerID", customerID, "score", score, "loans", len(snap.Loans))
	return score, nil
}

type ExposureReport struct {
	CustomerID    int64
	Exposure      decimal.Decimal
	ApprovedLimit decimal.Decimal
	ActiveLoans   int
	OverLimit     bool
}

func (s *Scorer) Exposure(ctx context.Context, customerID int64) (*ExposureReport, error) {
	snap, err := s.Snapshot(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &ExposureReport{
		CustomerID:    customerID,
		Exposure:      snap.CurrentExposure(),
		ApprovedLimit: snap.Customer.ApprovedLimit,
		ActiveLoans:   len(snap.ActiveLoans()),
		OverLimit:     snap.OverLimit(),
	}, nil
}
