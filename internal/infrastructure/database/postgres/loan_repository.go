package postgres

import (
	"context"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var _ loan.Repository = (*LoanRepository)(nil)

const loanColumns = `id, customer_id, principal, interest_rate, term_months, installment, emis_paid_on_time,
        remaining_balance, approval_date, end_date, status, created_at, updated_at`

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("DBPool cannot be nil for LoanRepository")
	}
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, apperrors.WrapStorageError(err, "failed to begin transaction")
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Commit(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return apperrors.WrapStorageError(err, "failed to commit transaction")
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return apperrors.WrapStorageError(err, "failed to rollback transaction")
	}
	return nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.CustomerID, &l.Principal, &l.InterestRate, &l.TermMonths,
		&l.Installment, &l.EMIsPaidOnTime, &l.RemainingBalance, &l.ApprovalDate,
		&l.EndDate, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	if newLoan == nil {
		return nil, fmt.Errorf("%w: loan cannot be nil", apperrors.ErrInvalidArgument)
	}

	query := `
        INSERT INTO loans (customer_id, principal, interest_rate, term_months, installment, emis_paid_on_time,
            remaining_balance, approval_date, end_date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING ` + loanColumns

	status := "success"
	startTime := time.Now()
	created, err := scanLoan(r.db.QueryRow(ctx, query,
		newLoan.CustomerID, newLoan.Principal, newLoan.InterestRate, newLoan.TermMonths,
		newLoan.Installment, newLoan.EMIsPaidOnTime, newLoan.RemainingBalance,
		newLoan.ApprovalDate, newLoan.EndDate, newLoan.Status,
	))
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreateLoan", status, time.Since(startTime))

	if err != nil {
		return nil, translateDBError(err, r.logger.With(slog.String("operation", "CreateLoan"), slog.Int64("customerID", newLoan.CustomerID)))
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID, "customer_id", created.CustomerID)
	return created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	status := "success"
	startTime := time.Now()
	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, loan.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, apperrors.WrapStorageError(err, "failed to get loan by ID")
	}
	return l, nil
}

func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID int64, filter loan.ListFilter) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1`
	args := []any{customerID}
	if filter.ActiveOn != nil {
		query += ` AND status <> $2 AND approval_date <= $3 AND (end_date IS NULL OR end_date >= $3)`
		args = append(args, loan.StatusPaidOff, loan.DateOnly(*filter.ActiveOn))
	}
	query += ` ORDER BY approval_date ASC, id ASC`

	status := "success"
	startTime := time.Now()
	loans, err := r.queryLoans(ctx, query, args...)
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("ListLoansByCustomer", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list loans for customer", "customer_id", customerID, "error", err)
		return nil, apperrors.WrapStorageError(err, "failed to list loans for customer")
	}
	return loans, nil
}

func (r *LoanRepository) queryLoans(ctx context.Context, query string, args ...any) ([]loan.Loan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := make([]loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *LoanRepository) ListCustomerIDsWithActiveLoans(ctx context.Context, asOf time.Time) ([]int64, error) {
	logCtx := r.logger.With(slog.String("operation", "ListCustomerIDsWithActiveLoans"))
	logCtx.DebugContext(ctx, "Attempting to list customers with active loans")

	query := `
        SELECT DISTINCT customer_id
        FROM loans
        WHERE status <> $1 AND approval_date <= $2 AND (end_date IS NULL OR end_date >= $2)
        ORDER BY customer_id`

	status := "success"
	startTime := time.Now()
	defer func() { monitoring.RecordDBQuery("ListCustomerIDsWithActiveLoans", status, time.Since(startTime)) }()

	rows, err := r.db.Query(ctx, query, loan.StatusPaidOff, loan.DateOnly(asOf))
	if err != nil {
		status = "error"
		logCtx.ErrorContext(ctx, "Failed to query customers with active loans", slog.Any("error", err))
		return nil, apperrors.WrapStorageError(err, "failed to query customers with active loans")
	}
	defer rows.Close()

	customerIDs := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			status = "error"
			logCtx.ErrorContext(ctx, "Failed to scan customer ID row", slog.Any("error", err))
			return nil, apperrors.WrapStorageError(err, "failed scanning customer ID")
		}
		customerIDs = append(customerIDs, id)
	}

	if err = rows.Err(); err != nil {
		status = "error"
		logCtx.ErrorContext(ctx, "Error iterating customer ID rows", slog.Any("error", err))
		return nil, apperrors.WrapStorageError(err, "error iterating customer IDs")
	}

	logCtx.DebugContext(ctx, "Finished listing customers with active loans", slog.Int("count", len(customerIDs)))
	return customerIDs, nil
}

func (r *LoanRepository) GetLoanForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	l, err := scanLoan(tx.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found for update", "loan_id", loanID)
			return nil, loan.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan", "loan_id", loanID, "error", err)
		return nil, apperrors.WrapStorageError(err, "failed to lock loan")
	}
	return l, nil
}

func (r *LoanRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	sql := `
        UPDATE loans
        SET installment = $1, emis_paid_on_time = $2, remaining_balance = $3, status = $4, updated_at = NOW()
        WHERE id = $5`

	cmdTag, err := tx.Exec(ctx, sql, l.Installment, l.EMIsPaidOnTime, l.RemainingBalance, l.Status, l.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan", "loan_id", l.ID, "error", err)
		return apperrors.WrapStorageError(err, "failed to update loan")
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan update affected zero rows", "loan_id", l.ID)
		return fmt.Errorf("%w: loan %d", loan.ErrNotFound, l.ID)
	}
	r.logger.InfoContext(ctx, "Loan updated in DB", "loan_id", l.ID, "status", l.Status)
	return nil
}

// UpsertLoans writes loans with their existing ids in one transaction and
// moves the id sequence past the largest imported id.
func (r *LoanRepository) UpsertLoans(ctx context.Context, loans []loan.Loan) (int, error) {
	if len(loans) == 0 {
		return 0, nil
	}
	logCtx := r.logger.With(slog.String("operation", "UpsertLoans"))

	upsertSQL := `
        INSERT INTO loans (id, customer_id, principal, interest_rate, term_months, installment, emis_paid_on_time,
            remaining_balance, approval_date, end_date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
        ON CONFLICT (id) DO UPDATE
        SET customer_id = EXCLUDED.customer_id,
            principal = EXCLUDED.principal,
            interest_rate = EXCLUDED.interest_rate,
            term_months = EXCLUDED.term_months,
            installment = EXCLUDED.installment,
            emis_paid_on_time = EXCLUDED.emis_paid_on_time,
            remaining_balance = EXCLUDED.remaining_balance,
            approval_date = EXCLUDED.approval_date,
            end_date = EXCLUDED.end_date,
            status = EXCLUDED.status,
            updated_at = NOW()`

	batch := &pgx.Batch{}
	for _, l := range loans {
		batch.Queue(upsertSQL, l.ID, l.CustomerID, l.Principal, l.InterestRate, l.TermMonths, l.Installment,
			l.EMIsPaidOnTime, l.RemainingBalance, l.ApprovalDate, l.EndDate, l.Status)
	}

	return runUpsertBatch(ctx, r.db, logCtx, "UpsertLoans", batch, len(loans), "loans")
}

func runUpsertBatch(ctx context.Context, db DBPool, logger *slog.Logger, queryName string, batch *pgx.Batch, size int, table string) (written int, err error) {
	status := "success"
	startTime := time.Now()
	defer func() {
		if err != nil {
			status = "error"
		}
		monitoring.RecordDBQuery(queryName, status, time.Since(startTime))
	}()

	tx, err := db.Begin(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return 0, apperrors.WrapStorageError(err, "failed to begin transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.ErrorContext(ctx, "Failed to rollback transaction", slog.Any("error", rbErr))
		}
	}()

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < size; i++ {
		if _, err = results.Exec(); err != nil {
			results.Close()
			logger.ErrorContext(ctx, "Failed executing upsert batch", slog.Any("error", err), slog.Int("row_index", i))
			return 0, translateDBError(fmt.Errorf("row %d: %w", i+1, err), logger)
		}
	}
	if err = results.Close(); err != nil {
		logger.ErrorContext(ctx, "Failed closing upsert batch results", slog.Any("error", err))
		return 0, apperrors.WrapStorageError(err, "closing batch results failed")
	}

	resetSQL := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1))`, table, table)
	if _, err = tx.Exec(ctx, resetSQL); err != nil {
		logger.ErrorContext(ctx, "Failed to reset id sequence", slog.String("table", table), slog.Any("error", err))
		return 0, apperrors.WrapStorageError(err, "failed to reset id sequence")
	}

	if err = tx.Commit(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to commit upsert batch", slog.Any("error", err))
		return 0, apperrors.WrapStorageError(err, "failed to commit upsert batch")
	}

	logger.InfoContext(ctx, "Upsert batch committed", slog.String("table", table), slog.Int("rows", size))
	return size, nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		case "23503":
			contextLogger.Warn("Database foreign key violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: referenced record missing (%s)", apperrors.ErrNotFound, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return apperrors.WrapStorageError(err, fmt.Sprintf("db error code %s", pgErr.Code))
	}

	contextLogger.Error("Generic database error", "error", err)
	return apperrors.WrapStorageError(err, "database error")
}
