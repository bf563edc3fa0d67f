package loan

import (
	"context"
	"credit-engine/internal/pkg/apperrors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = fmt.Errorf("%w: loan not found", apperrors.ErrNotFound)
)

// ListFilter narrows ListByCustomer. A nil ActiveOn returns the whole history.
type ListFilter struct {
	ActiveOn *time.Time
}

type Repository interface {
	CreateLoan(ctx context.Context, loan *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	ListByCustomer(ctx context.Context, customerID int64, filter ListFilter) ([]Loan, error)

	ListCustomerIDsWithActiveLoans(ctx context.Context, asOf time.Time) ([]int64, error)

	GetLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error)

	UpdateLoanInTx(ctx context.Context, tx pgx.Tx, loan *Loan) error

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
