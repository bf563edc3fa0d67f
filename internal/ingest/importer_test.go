package ingest

import (
	"bytes"
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	customerHeader = []interface{}{"Customer ID", "First Name", "Last Name", "Age", "Phone Number", "Monthly Salary", "Approved Limit"}
	loanHeader     = []interface{}{"Customer ID", "Loan ID", "Loan Amount", "Tenure", "Interest Rate", "Monthly payment", "EMIs paid on Time", "Date of Approval", "End Date"}
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

type MockCustomerStore struct {
	mock.Mock
}

func (m *MockCustomerStore) UpsertCustomers(ctx context.Context, customers []customer.Customer) (int, error) {
	args := m.Called(ctx, customers)
	return args.Int(0), args.Error(1)
}

type MockLoanStore struct {
	mock.Mock
}

func (m *MockLoanStore) UpsertLoans(ctx context.Context, loans []loan.Loan) (int, error) {
	args := m.Called(ctx, loans)
	return args.Int(0), args.Error(1)
}

func TestReadCustomers(t *testing.T) {
	t.Run("parses rows and keeps their ids", func(t *testing.T) {
		buf := workbook(t,
			customerHeader,
			[]interface{}{300, "Aaron", "Garcia", 63, 9629317944, 9000, 1300000},
			[]interface{}{},
			[]interface{}{301, "Carmelo", "Ruiz", 41, 9156721463, 100000, ""},
		)

		customers, err := ReadCustomers(buf, customer.DefaultLimitPolicy)

		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.Equal(t, int64(300), customers[0].CustomerID)
		assert.Equal(t, "Aaron", customers[0].FirstName)
		assert.Equal(t, "9629317944", customers[0].PhoneNumber)
		assert.Equal(t, "1300000", customers[0].ApprovedLimit.String())
		assert.Equal(t, int64(301), customers[1].CustomerID)
		assert.Equal(t, "3600000", customers[1].ApprovedLimit.String())
	})

	t.Run("missing columns are reported", func(t *testing.T) {
		buf := workbook(t, []interface{}{"Customer ID", "First Name"})

		_, err := ReadCustomers(buf, customer.DefaultLimitPolicy)

		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "Monthly Salary")
	})

	t.Run("bad cells name the row and column", func(t *testing.T) {
		buf := workbook(t,
			customerHeader,
			[]interface{}{300, "Aaron", "Garcia", "sixty", 9629317944, 9000, 1300000},
		)

		_, err := ReadCustomers(buf, customer.DefaultLimitPolicy)

		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		assert.Contains(t, err.Error(), `row 2, column "Age"`)
	})

	t.Run("domain validation still applies", func(t *testing.T) {
		buf := workbook(t,
			customerHeader,
			[]interface{}{300, "", "Garcia", 63, 9629317944, 9000, 1300000},
		)

		_, err := ReadCustomers(buf, customer.DefaultLimitPolicy)

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ReadCustomers(bytes.NewBufferString("plain text"), customer.DefaultLimitPolicy)

		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})
}

func TestReadLoans(t *testing.T) {
	t.Run("converts excel serial dates and derives the balance", func(t *testing.T) {
		buf := workbook(t,
			loanHeader,
			[]interface{}{1, 7798, 900000, 12, 12.5, 80000, 4, 45306, 45671},
			[]interface{}{1, 7799, 120000, 6, 10, 20588.5, 6, "2019-03-10", "2019-09-10"},
		)

		loans, err := ReadLoans(buf)

		require.NoError(t, err)
		require.Len(t, loans, 2)

		first := loans[0]
		assert.Equal(t, int64(7798), first.ID)
		assert.Equal(t, int64(1), first.CustomerID)
		assert.Equal(t, "12.5", first.InterestRate.String())
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.ApprovalDate)
		require.NotNil(t, first.EndDate)
		assert.Equal(t, time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), *first.EndDate)
		assert.Equal(t, 4, first.EMIsPaidOnTime)
		assert.Equal(t, "613055.20", first.RemainingBalance.StringFixed(2))
		assert.Equal(t, loan.StatusActive, first.Status)

		second := loans[1]
		assert.Equal(t, time.Date(2019, 3, 10, 0, 0, 0, 0, time.UTC), second.ApprovalDate)
		assert.True(t, second.RemainingBalance.IsZero())
		assert.Equal(t, loan.StatusPaidOff, second.Status)
	})

	t.Run("installments still due keep the loan active", func(t *testing.T) {
		buf := workbook(t,
			loanHeader,
			[]interface{}{1, 20, 100000, 24, 20, 5089.58, 20, "2024-01-01", "2028-01-01"},
		)

		loans, err := ReadLoans(buf)

		require.NoError(t, err)
		l := loans[0]
		assert.Equal(t, loan.StatusActive, l.Status)
		assert.Equal(t, "19537.54", l.RemainingBalance.StringFixed(2))
		assert.Equal(t, "5089.58", l.Installment.StringFixed(2))
		assert.Equal(t, 4, l.RepaymentsLeft())
		assert.True(t, l.IsActiveOn(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("overstated installment still owes the remaining installments", func(t *testing.T) {
		buf := workbook(t,
			loanHeader,
			[]interface{}{1, 21, 120000, 12, 10, 20588.5, 6, "2024-01-01", ""},
		)

		loans, err := ReadLoans(buf)

		require.NoError(t, err)
		assert.Equal(t, loan.StatusActive, loans[0].Status)
		assert.Equal(t, "123531.00", loans[0].RemainingBalance.StringFixed(2))
	})

	t.Run("missing end date falls back to the term", func(t *testing.T) {
		buf := workbook(t,
			loanHeader,
			[]interface{}{1, 10, 100000, 12, 10, 8791.59, 0, "2024-02-01", ""},
		)

		loans, err := ReadLoans(buf)

		require.NoError(t, err)
		require.NotNil(t, loans[0].EndDate)
		assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), *loans[0].EndDate)
	})

	t.Run("unparseable date", func(t *testing.T) {
		buf := workbook(t,
			loanHeader,
			[]interface{}{1, 10, 100000, 12, 10, 8791.59, 0, "yesterday", ""},
		)

		_, err := ReadLoans(buf)

		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "Date of Approval")
	})
}

func TestImporter(t *testing.T) {
	ctx := context.Background()

	t.Run("imports customers", func(t *testing.T) {
		customers := new(MockCustomerStore)
		loans := new(MockLoanStore)
		importer := NewImporter(customers, loans, customer.DefaultLimitPolicy, testLogger)
		customers.On("UpsertCustomers", ctx, mock.MatchedBy(func(cs []customer.Customer) bool {
			return len(cs) == 1 && cs[0].CustomerID == 300
		})).Return(1, nil).Once()

		n, err := importer.ImportCustomers(ctx, workbook(t,
			customerHeader,
			[]interface{}{300, "Aaron", "Garcia", 63, 9629317944, 9000, 1300000},
		))

		require.NoError(t, err)
		assert.Equal(t, 1, n)
		customers.AssertExpectations(t)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		customers := new(MockCustomerStore)
		loans := new(MockLoanStore)
		importer := NewImporter(customers, loans, customer.DefaultLimitPolicy, testLogger)
		storageErr := apperrors.WrapStorageError(errors.New("connection refused"), "failed to begin")
		loans.On("UpsertLoans", ctx, mock.Anything).Return(0, storageErr).Once()

		_, err := importer.ImportLoans(ctx, workbook(t,
			loanHeader,
			[]interface{}{1, 10, 100000, 12, 10, 8791.59, 0, "2024-02-01", ""},
		))

		assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	})

	t.Run("parse errors never reach the store", func(t *testing.T) {
		customers := new(MockCustomerStore)
		loans := new(MockLoanStore)
		importer := NewImporter(customers, loans, customer.DefaultLimitPolicy, testLogger)

		_, err := importer.ImportLoans(ctx, workbook(t, []interface{}{"Loan ID"}))

		require.Error(t, err)
		loans.AssertNotCalled(t, "UpsertLoans", mock.Anything, mock.Anything)
	})
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"45292", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"01/31/2024", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("parses %s", tt.raw), func(t *testing.T) {
			got, err := parseDate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseDate("")
	assert.Error(t, err)
}
