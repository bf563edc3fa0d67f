package loan

import (
	"credit-engine/internal/pkg/apperrors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	StatusActive  LoanStatus = "ACTIVE"
	StatusPaidOff LoanStatus = "PAID_OFF"
)

type Loan struct {
	ID               int64
	CustomerID       int64
	Principal        decimal.Decimal
	InterestRate     decimal.Decimal
	TermMonths       int
	Installment      decimal.Decimal
	EMIsPaidOnTime   int
	RemainingBalance decimal.Decimal
	ApprovalDate     time.Time
	EndDate          *time.Time
	Status           LoanStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Statement struct {
	CustomerID     int64
	LoanID         int64
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal
	AmountPaid     decimal.Decimal
	Installment    decimal.Decimal
	RepaymentsLeft int
}

// PaymentResult describes how a single payment changed the ledger.
type PaymentResult struct {
	Loan                *Loan
	Amount              decimal.Decimal
	PreviousInstallment decimal.Decimal
	OnSchedule          bool
	Restructured        bool
	PaidOff             bool
}

// NewLoan builds an approved loan starting on approvalDate. The end date is
// approvalDate plus termMonths calendar months.
func NewLoan(customerID int64, principal, annualRatePercent decimal.Decimal, termMonths int, installment decimal.Decimal, approvalDate time.Time) (*Loan, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer id must be positive", apperrors.ErrInvalidArgument)
	}
	if !principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", apperrors.ErrInvalidArgument)
	}
	if annualRatePercent.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", apperrors.ErrInvalidArgument)
	}
	if termMonths <= 0 {
		return nil, fmt.Errorf("%w: term must be positive", apperrors.ErrInvalidArgument)
	}

	start := DateOnly(approvalDate)
	end := start.AddDate(0, termMonths, 0)
	return &Loan{
		CustomerID:       customerID,
		Principal:        principal,
		InterestRate:     annualRatePercent,
		TermMonths:       termMonths,
		Installment:      installment,
		EMIsPaidOnTime:   0,
		RemainingBalance: principal,
		ApprovalDate:     start,
		EndDate:          &end,
		Status:           StatusActive,
	}, nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsActiveOn reports whether the loan counts towards exposure on day.
func (l *Loan) IsActiveOn(day time.Time) bool {
	if l.Status == StatusPaidOff {
		return false
	}
	day = DateOnly(day)
	if DateOnly(l.ApprovalDate).After(day) {
		return false
	}
	return l.EndDate == nil || !day.After(DateOnly(*l.EndDate))
}

func (l *Loan) StartedInYear(year int) bool {
	return l.ApprovalDate.Year() == year
}

func (l *Loan) RepaymentsLeft() int {
	left := l.TermMonths - l.EMIsPaidOnTime
	if left < 0 {
		return 0
	}
	return left
}

// MonthsElapsed counts whole calendar months between the approval date and asOf.
func (l *Loan) MonthsElapsed(asOf time.Time) int {
	start := DateOnly(l.ApprovalDate)
	asOf = DateOnly(asOf)
	if !asOf.After(start) {
		return 0
	}
	months := (asOf.Year()-start.Year())*monthsPerYear + int(asOf.Month()) - int(start.Month())
	if asOf.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func (l *Loan) Statement() Statement {
	left := l.RepaymentsLeft()
	return Statement{
		CustomerID:     l.CustomerID,
		LoanID:         l.ID,
		Principal:      l.Principal,
		InterestRate:   l.InterestRate,
		AmountPaid:     l.Principal.Sub(l.Installment.Mul(decimal.NewFromInt(int64(left)))),
		Installment:    l.Installment,
		RepaymentsLeft: left,
	}
}

// ApplyPayment posts amount against the remaining balance. A payment equal to
// the current installment counts as on schedule; any other amount
// restructures the installment over the months left at the stored rate. The
// loan is left untouched when an error is returned.
func (l *Loan) ApplyPayment(amount decimal.Decimal, asOf time.Time) (*PaymentResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive, got %s", apperrors.ErrInvalidArgument, amount)
	}
	if l.Status == StatusPaidOff || !l.RemainingBalance.IsPositive() {
		return nil, fmt.Errorf("%w: loan %d", apperrors.ErrLoanFullyPaid, l.ID)
	}

	remaining := l.RemainingBalance.Sub(amount)
	if remaining.IsNegative() {
		return nil, fmt.Errorf("%w: amount %s, remaining balance %s", apperrors.ErrOverpayment, amount.StringFixed(2), l.RemainingBalance.StringFixed(2))
	}

	result := &PaymentResult{
		Amount:              amount,
		PreviousInstallment: l.Installment,
		OnSchedule:          amount.Equal(l.Installment),
	}

	installment := l.Installment
	if remaining.IsZero() {
		installment = decimal.Zero
		result.PaidOff = true
	} else if !result.OnSchedule {
		monthsLeft := l.TermMonths - l.MonthsElapsed(asOf)
		if monthsLeft < 1 {
			monthsLeft = 1
		}
		recomputed, err := Installment(remaining, l.InterestRate, monthsLeft)
		if err != nil {
			return nil, fmt.Errorf("failed to restructure installment: %w", err)
		}
		installment = recomputed
		result.Restructured = true
	}

	if result.OnSchedule {
		l.EMIsPaidOnTime++
	}
	l.RemainingBalance = remaining
	l.Installment = installment
	if result.PaidOff {
		l.Status = StatusPaidOff
	}
	l.UpdatedAt = asOf
	result.Loan = l
	return result, nil
}
