package customer

import (
	"context"
	"credit-engine/internal/pkg/apperrors"
	"fmt"
)

var (
	ErrNotFound = fmt.Errorf("%w: customer not found", apperrors.ErrNotFound)
)

type CustomerRepository interface {
	// Save inserts a new customer and assigns its id.
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)
}
