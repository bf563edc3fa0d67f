package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, first_name, last_name, age, monthly_income, approved_limit, phone_number, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	// Customers are immutable once registered.
	if cust.CustomerID != 0 {
		return fmt.Errorf("%w: customer %d is already registered", apperrors.ErrInvalidArgument, cust.CustomerID)
	}
	return r.createCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) error {
	r.logger.DebugContext(ctx, "Attempting to insert new customer", slog.String("name", cust.Name()))

	query := `
        INSERT INTO customers (first_name, last_name, age, monthly_income, approved_limit, phone_number, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	status := "success"
	startTime := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.Age,
		cust.MonthlyIncome,
		cust.ApprovedLimit,
		cust.PhoneNumber,
	).Scan(
		&cust.CustomerID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreateCustomer", status, time.Since(startTime))

	if err != nil {
		return translateDBError(err, r.logger.With(slog.String("operation", "CreateCustomer")))
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	status := "success"
	startTime := time.Now()
	var cust customer.Customer
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&cust.CustomerID,
		&cust.FirstName,
		&cust.LastName,
		&cust.Age,
		&cust.MonthlyIncome,
		&cust.ApprovedLimit,
		&cust.PhoneNumber,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		status = "error"
	}
	monitoring.RecordDBQuery("FindCustomerByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, apperrors.WrapStorageError(err, "failed to get customer by ID")
	}

	return &cust, nil
}

// UpsertCustomers writes customers with their existing ids in one
// transaction and moves the id sequence past the largest imported id.
func (r *CustomerRepository) UpsertCustomers(ctx context.Context, customers []customer.Customer) (int, error) {
	if len(customers) == 0 {
		return 0, nil
	}
	logCtx := r.logger.With(slog.String("operation", "UpsertCustomers"))

	upsertSQL := `
        INSERT INTO customers (id, first_name, last_name, age, monthly_income, approved_limit, phone_number, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        ON CONFLICT (id) DO UPDATE
        SET first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            age = EXCLUDED.age,
            monthly_income = EXCLUDED.monthly_income,
            approved_limit = EXCLUDED.approved_limit,
            phone_number = EXCLUDED.phone_number,
            updated_at = NOW()`

	batch := &pgx.Batch{}
	for _, c := range customers {
		batch.Queue(upsertSQL, c.CustomerID, c.FirstName, c.LastName, c.Age, c.MonthlyIncome, c.ApprovedLimit, c.PhoneNumber)
	}

	return runUpsertBatch(ctx, r.db, logCtx, "UpsertCustomers", batch, len(customers), "customers")
}
