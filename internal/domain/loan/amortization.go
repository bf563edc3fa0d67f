package loan

import (
	"credit-engine/internal/pkg/apperrors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	monthsPerYear = 12
	// working precision for the compound growth factor
	growthPrecision = 24
)

var (
	one                = decimal.NewFromInt(1)
	percentPerYearBase = decimal.NewFromInt(100 * monthsPerYear)
)

// Installment returns the fixed monthly payment that amortizes principal over
// termMonths at the given annual rate (in percent), rounded to two decimals
// half-up. A zero rate spreads the principal evenly.
func Installment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: principal must be positive, got %s", apperrors.ErrInvalidArgument, principal)
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: interest rate cannot be negative, got %s", apperrors.ErrInvalidArgument, annualRatePercent)
	}
	if termMonths <= 0 {
		return decimal.Zero, fmt.Errorf("%w: term must be positive, got %d months", apperrors.ErrInvalidArgument, termMonths)
	}

	n := decimal.NewFromInt(int64(termMonths))
	if annualRatePercent.IsZero() {
		return principal.Div(n).Round(2), nil
	}

	r := annualRatePercent.DivRound(percentPerYearBase, growthPrecision)
	growth, err := one.Add(r).PowInt32(int32(termMonths))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: cannot compute growth factor: %v", apperrors.ErrInvalidArgument, err)
	}
	growth = growth.Round(growthPrecision)

	numerator := principal.Mul(r).Mul(growth)
	denominator := growth.Sub(one)
	return numerator.DivRound(denominator, growthPrecision).Round(2), nil
}

// OutstandingBalance returns what is still owed after paymentsMade
// installments on the annuity schedule, P(1+r)^k - E((1+r)^k - 1)/r, rounded
// to two decimals and never below zero.
func OutstandingBalance(principal, annualRatePercent, installment decimal.Decimal, paymentsMade int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: principal must be positive, got %s", apperrors.ErrInvalidArgument, principal)
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: interest rate cannot be negative, got %s", apperrors.ErrInvalidArgument, annualRatePercent)
	}
	if installment.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: installment cannot be negative, got %s", apperrors.ErrInvalidArgument, installment)
	}
	if paymentsMade < 0 {
		return decimal.Zero, fmt.Errorf("%w: payments made cannot be negative, got %d", apperrors.ErrInvalidArgument, paymentsMade)
	}

	k := decimal.NewFromInt(int64(paymentsMade))
	var balance decimal.Decimal
	if annualRatePercent.IsZero() {
		balance = principal.Sub(installment.Mul(k))
	} else {
		r := annualRatePercent.DivRound(percentPerYearBase, growthPrecision)
		growth, err := one.Add(r).PowInt32(int32(paymentsMade))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: cannot compute growth factor: %v", apperrors.ErrInvalidArgument, err)
		}
		growth = growth.Round(growthPrecision)
		repaid := installment.Mul(growth.Sub(one)).DivRound(r, growthPrecision)
		balance = principal.Mul(growth).Sub(repaid)
	}

	balance = balance.Round(2)
	if balance.IsNegative() {
		return decimal.Zero, nil
	}
	return balance, nil
}
