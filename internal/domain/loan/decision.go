package loan

import (
	"context"
	"credit-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// Application is a request to borrow Amount over TermMonths at InterestRate percent per year.
type Application struct {
	CustomerID   int64
	Amount       decimal.Decimal
	InterestRate decimal.Decimal
	TermMonths   int
}

func (a Application) Validate() error {
	if a.CustomerID <= 0 {
		return apperrors.NewValidationError("customer_id", "must be positive")
	}
	if !a.Amount.IsPositive() {
		return apperrors.NewValidationError("loan_amount", "must be positive")
	}
	if a.InterestRate.IsNegative() {
		return apperrors.NewValidationError("interest_rate", "cannot be negative")
	}
	if a.TermMonths <= 0 {
		return apperrors.NewValidationError("tenure", "must be positive")
	}
	return nil
}

// Decision is the outcome of an eligibility evaluation. A rejection is a
// regular result carrying the reason, not an error.
type Decision struct {
	CustomerID    int64
	Approved      bool
	InterestRate  decimal.Decimal
	CorrectedRate decimal.Decimal
	TermMonths    int
	Installment   decimal.Decimal
	CreditScore   int
	Reason        string
}

type Evaluator interface {
	Evaluate(ctx context.Context, app Application) (*Decision, error)
}

// CreationResult carries the decision and, when approved, the persisted loan.
type CreationResult struct {
	Decision *Decision
	Loan     *Loan
}
