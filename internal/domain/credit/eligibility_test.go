package credit

import (
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApplyScoreTier(t *testing.T) {
	tests := []struct {
		name         string
		score        int
		requested    string
		wantApproved bool
		wantRate     string
	}{
		{"Score 51 keeps requested rate", 51, "10", true, "10"},
		{"Score 50 floors at 12", 50, "10", true, "12"},
		{"Score 50 keeps higher requested rate", 50, "14", true, "14"},
		{"Score 31 floors at 12", 31, "8", true, "12"},
		{"Score 30 floors at 16", 30, "12", true, "16"},
		{"Score 11 floors at 16", 11, "10", true, "16"},
		{"Score 11 keeps higher requested rate", 11, "18", true, "18"},
		{"Score 10 is rejected", 10, "10", false, "10"},
		{"Score 0 is rejected", 0, "20", false, "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approved, rate := ApplyScoreTier(tt.score, decimal.RequireFromString(tt.requested))
			assert.Equal(t, tt.wantApproved, approved)
			assert.Equal(t, tt.wantRate, rate.String())
		})
	}
}

func application(amount int64, rate string, term int) loan.Application {
	return loan.Application{
		CustomerID:   1,
		Amount:       decimal.NewFromInt(amount),
		InterestRate: decimal.RequireFromString(rate),
		TermMonths:   term,
	}
}

func TestDecide(t *testing.T) {
	t.Run("New customer is approved at the requested rate", func(t *testing.T) {
		snap := Snapshot{Customer: testCustomer(100000), AsOf: asOf}

		d, err := Decide(snap, application(500000, "10", 24), DefaultMaxEMIIncomeRatio)

		require.NoError(t, err)
		assert.True(t, d.Approved)
		assert.Equal(t, 100, d.CreditScore)
		assert.Equal(t, "10", d.CorrectedRate.String())
		assert.Equal(t, "23072.46", d.Installment.StringFixed(2))
		assert.Equal(t, ReasonApproved, d.Reason)
	})

	t.Run("Exposure gate rejects", func(t *testing.T) {
		snap := Snapshot{
			Customer: testCustomer(100000),
			Loans:    []loan.Loan{activeLoan(4000000, "100", day(2024, 1, 10))},
			AsOf:     asOf,
		}

		d, err := Decide(snap, application(1000, "10", 12), DefaultMaxEMIIncomeRatio)

		require.NoError(t, err)
		assert.False(t, d.Approved)
		assert.Equal(t, ReasonExposure, d.Reason)
		assert.True(t, d.Installment.IsZero())
	})

	t.Run("Affordability gate rejects", func(t *testing.T) {
		snap := Snapshot{
			Customer: testCustomer(100000),
			Loans:    []loan.Loan{activeLoan(1000000, "30000", day(2024, 1, 10))},
			AsOf:     asOf,
		}

		d, err := Decide(snap, application(500000, "10", 24), DefaultMaxEMIIncomeRatio)

		require.NoError(t, err)
		assert.False(t, d.Approved)
		assert.Equal(t, ReasonAffordability, d.Reason)
		assert.True(t, d.Installment.IsZero())
	})

	t.Run("Affordability gate allows exactly half the income", func(t *testing.T) {
		snap := Snapshot{
			Customer: testCustomer(100000),
			Loans:    []loan.Loan{activeLoan(1000000, "26927.54", day(2024, 1, 10))},
			AsOf:     asOf,
		}

		d, err := Decide(snap, application(500000, "10", 24), DefaultMaxEMIIncomeRatio)

		require.NoError(t, err)
		assert.True(t, d.Approved)
	})

	t.Run("Low score rejects", func(t *testing.T) {
		loans := make([]loan.Loan, 20)
		for i := range loans {
			loans[i] = historicLoan(1000, 0)
		}
		snap := Snapshot{Customer: testCustomer(100000), Loans: loans, AsOf: asOf}

		d, err := Decide(snap, application(100000, "10", 12), DefaultMaxEMIIncomeRatio)

		require.NoError(t, err)
		assert.False(t, d.Approved)
		assert.Equal(t, 0, d.CreditScore)
		assert.Equal(t, ReasonLowScore, d.Reason)
		assert.True(t, d.Installment.IsZero())
	})

	t.Run("Middle tier raises the rate and recomputes the installment", func(t *testing.T) {
		loans := make([]loan.Loan, 12)
		for i := range loans {
			loans[i] = historicLoan(1000, 0)
		}
		snap := Snapshot{Customer: testCustomer(100000), Loans: loans, AsOf: asOf}

		d, err := Decide(snap, application(500000, "10", 24), DefaultMaxEMIIncomeRatio)

		require.NoError(t, err)
		assert.True(t, d.Approved)
		assert.Equal(t, 40, d.CreditScore)
		assert.Equal(t, "10", d.InterestRate.String())
		assert.Equal(t, "12", d.CorrectedRate.String())
		assert.Equal(t, "23536.74", d.Installment.StringFixed(2))
		assert.Equal(t, ReasonApprovedCorrected, d.Reason)
	})

	t.Run("Idempotent over the same snapshot", func(t *testing.T) {
		snap := Snapshot{
			Customer: testCustomer(100000),
			Loans:    []loan.Loan{activeLoan(1000000, "30000", day(2024, 1, 10)), historicLoan(5000, 3)},
			AsOf:     asOf,
		}
		app := application(200000, "10", 12)

		first, err := Decide(snap, app, DefaultMaxEMIIncomeRatio)
		require.NoError(t, err)
		second, err := Decide(snap, app, DefaultMaxEMIIncomeRatio)
		require.NoError(t, err)

		assert.Equal(t, first.Approved, second.Approved)
		assert.Equal(t, first.Reason, second.Reason)
		assert.Equal(t, first.CreditScore, second.CreditScore)
		assert.Equal(t, first.CorrectedRate.String(), second.CorrectedRate.String())
		assert.Equal(t, first.Installment.String(), second.Installment.String())
	})
}

func TestEvaluator_Evaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("Validation happens before any read", func(t *testing.T) {
		s, customers, _ := newTestScorer()
		e := NewEvaluator(s, decimal.Zero, testLogger)

		_, err := e.Evaluate(ctx, application(0, "10", 12))

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		customers.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Unknown customer", func(t *testing.T) {
		s, customers, _ := newTestScorer()
		e := NewEvaluator(s, decimal.Zero, testLogger)
		customers.On("GetCustomer", ctx, int64(1)).Return(nil, customer.ErrNotFound).Once()

		_, err := e.Evaluate(ctx, application(1000, "10", 12))

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("End to end approval", func(t *testing.T) {
		s, customers, loans := newTestScorer()
		e := NewEvaluator(s, DefaultMaxEMIIncomeRatio, testLogger)
		customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(100000), nil).Once()
		loans.On("ListByCustomer", ctx, int64(1), loan.ListFilter{}).Return([]loan.Loan{}, nil).Once()

		d, err := e.Evaluate(ctx, application(500000, "10", 24))

		require.NoError(t, err)
		assert.True(t, d.Approved)
		assert.Equal(t, "23072.46", d.Installment.StringFixed(2))
	})

	t.Run("Stricter income ratio rejects", func(t *testing.T) {
		s, customers, loans := newTestScorer()
		e := NewEvaluator(s, decimal.RequireFromString("0.2"), testLogger)
		customers.On("GetCustomer", ctx, int64(1)).Return(testCustomer(100000), nil).Once()
		loans.On("ListByCustomer", ctx, int64(1), loan.ListFilter{}).Return([]loan.Loan{}, nil).Once()

		d, err := e.Evaluate(ctx, application(500000, "10", 24))

		require.NoError(t, err)
		assert.False(t, d.Approved)
		assert.Equal(t, ReasonAffordability, d.Reason)
	})
}
