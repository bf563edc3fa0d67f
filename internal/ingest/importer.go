package ingest

import (
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
)

const (
	colCustomerID    = "Customer ID"
	colFirstName     = "First Name"
	colLastName      = "Last Name"
	colAge           = "Age"
	colPhoneNumber   = "Phone Number"
	colMonthlySalary = "Monthly Salary"
	colApprovedLimit = "Approved Limit"

	colLoanID         = "Loan ID"
	colLoanAmount     = "Loan Amount"
	colTenure         = "Tenure"
	colInterestRate   = "Interest Rate"
	colMonthlyPayment = "Monthly payment"
	colEMIsPaid       = "EMIs paid on Time"
	colApprovalDate   = "Date of Approval"
	colEndDate        = "End Date"
)

type CustomerStore interface {
	UpsertCustomers(ctx context.Context, customers []customer.Customer) (int, error)
}

type LoanStore interface {
	UpsertLoans(ctx context.Context, loans []loan.Loan) (int, error)
}

// Importer loads the legacy customer and loan workbooks. Rows keep their
// spreadsheet ids so loans stay linked to their customers.
type Importer struct {
	customers CustomerStore
	loans     LoanStore
	policy    customer.LimitPolicy
	logger    *slog.Logger
}

func NewImporter(customers CustomerStore, loans LoanStore, policy customer.LimitPolicy, logger *slog.Logger) *Importer {
	if customers == nil || loans == nil {
		panic("importer stores cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		customers: customers,
		loans:     loans,
		policy:    policy,
		logger:    logger.With(slog.String("component", "importer")),
	}
}

func (i *Importer) ImportCustomers(ctx context.Context, r io.Reader) (int, error) {
	customers, err := ReadCustomers(r, i.policy)
	if err != nil {
		return 0, err
	}
	i.logger.InfoContext(ctx, "Parsed customer workbook", slog.Int("rows", len(customers)))

	n, err := i.customers.UpsertCustomers(ctx, customers)
	if err != nil {
		return 0, fmt.Errorf("failed to import customers: %w", err)
	}
	i.logger.InfoContext(ctx, "Customers imported", slog.Int("count", n))
	return n, nil
}

func (i *Importer) ImportLoans(ctx context.Context, r io.Reader) (int, error) {
	loans, err := ReadLoans(r)
	if err != nil {
		return 0, err
	}
	i.logger.InfoContext(ctx, "Parsed loan workbook", slog.Int("rows", len(loans)))

	n, err := i.loans.UpsertLoans(ctx, loans)
	if err != nil {
		return 0, fmt.Errorf("failed to import loans: %w", err)
	}
	i.logger.InfoContext(ctx, "Loans imported", slog.Int("count", n))
	return n, nil
}

// ReadCustomers parses the customer workbook. A blank Approved Limit is
// derived from the monthly salary with policy.
func ReadCustomers(r io.Reader, policy customer.LimitPolicy) ([]customer.Customer, error) {
	s, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}
	if err := s.requireColumns(colCustomerID, colFirstName, colLastName, colAge, colPhoneNumber, colMonthlySalary); err != nil {
		return nil, err
	}

	customers := make([]customer.Customer, 0, len(s.rows))
	for idx, row := range s.rows {
		if blankRow(row) {
			continue
		}

		id, err := parseInt(s.cell(row, colCustomerID))
		if err != nil {
			return nil, rowError(idx, colCustomerID, err)
		}
		age, err := parseInt(s.cell(row, colAge))
		if err != nil {
			return nil, rowError(idx, colAge, err)
		}
		income, err := parseDecimal(s.cell(row, colMonthlySalary))
		if err != nil {
			return nil, rowError(idx, colMonthlySalary, err)
		}

		c, err := customer.NewCustomer(s.cell(row, colFirstName), s.cell(row, colLastName), int(age), income, s.cell(row, colPhoneNumber), policy)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx+2, err)
		}
		c.CustomerID = id

		if raw := s.cell(row, colApprovedLimit); raw != "" {
			limit, err := parseDecimal(raw)
			if err != nil {
				return nil, rowError(idx, colApprovedLimit, err)
			}
			c.ApprovedLimit = limit
		}
		customers = append(customers, *c)
	}
	return customers, nil
}

// ReadLoans parses the loan workbook. The remaining balance is the annuity
// balance after the installments already paid; only loans with every
// installment paid are stored as paid off.
func ReadLoans(r io.Reader) ([]loan.Loan, error) {
	s, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}
	if err := s.requireColumns(colLoanID, colCustomerID, colLoanAmount, colTenure, colInterestRate, colMonthlyPayment, colEMIsPaid, colApprovalDate); err != nil {
		return nil, err
	}

	loans := make([]loan.Loan, 0, len(s.rows))
	for idx, row := range s.rows {
		if blankRow(row) {
			continue
		}

		l, err := parseLoanRow(s, idx, row)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, nil
}

func parseLoanRow(s *sheet, idx int, row []string) (*loan.Loan, error) {
	id, err := parseInt(s.cell(row, colLoanID))
	if err != nil {
		return nil, rowError(idx, colLoanID, err)
	}
	customerID, err := parseInt(s.cell(row, colCustomerID))
	if err != nil {
		return nil, rowError(idx, colCustomerID, err)
	}
	principal, err := parseDecimal(s.cell(row, colLoanAmount))
	if err != nil {
		return nil, rowError(idx, colLoanAmount, err)
	}
	tenure, err := parseInt(s.cell(row, colTenure))
	if err != nil {
		return nil, rowError(idx, colTenure, err)
	}
	rate, err := parseDecimal(s.cell(row, colInterestRate))
	if err != nil {
		return nil, rowError(idx, colInterestRate, err)
	}
	installment, err := parseDecimal(s.cell(row, colMonthlyPayment))
	if err != nil {
		return nil, rowError(idx, colMonthlyPayment, err)
	}
	paid, err := parseInt(s.cell(row, colEMIsPaid))
	if err != nil {
		return nil, rowError(idx, colEMIsPaid, err)
	}
	approval, err := parseDate(s.cell(row, colApprovalDate))
	if err != nil {
		return nil, rowError(idx, colApprovalDate, err)
	}

	l, err := loan.NewLoan(customerID, principal, rate, int(tenure), installment, approval)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", idx+2, err)
	}
	l.ID = id

	if raw := s.cell(row, colEndDate); raw != "" {
		end, err := parseDate(raw)
		if err != nil {
			return nil, rowError(idx, colEndDate, err)
		}
		l.EndDate = &end
	}

	if paid < 0 {
		return nil, rowError(idx, colEMIsPaid, fmt.Errorf("cannot be negative"))
	}
	l.EMIsPaidOnTime = int(paid)
	if l.EMIsPaidOnTime >= l.TermMonths {
		l.RemainingBalance = decimal.Zero
		l.Installment = decimal.Zero
		l.Status = loan.StatusPaidOff
		return l, nil
	}

	remaining, err := loan.OutstandingBalance(principal, rate, installment, l.EMIsPaidOnTime)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", idx+2, err)
	}
	// An overstated installment can amortize the schedule early; the loan
	// still owes the installments left on its term.
	if !remaining.IsPositive() {
		remaining = installment.Mul(decimal.NewFromInt(int64(l.TermMonths - l.EMIsPaidOnTime)))
	}
	l.RemainingBalance = remaining
	return l, nil
}
