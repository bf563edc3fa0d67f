package credit

import (
	"context"
	"credit-engine/internal/domain/loan"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

const (
	ReasonApproved          = "loan approved"
	ReasonApprovedCorrected = "loan approved at a corrected interest rate"
	ReasonExposure          = "exposure exceeds approved limit"
	ReasonAffordability     = "total EMI exceeds 50% of monthly income"
	ReasonLowScore          = "credit score too low"
)

var (
	floorMidTier = decimal.NewFromInt(12)
	floorLowTier = decimal.NewFromInt(16)

	DefaultMaxEMIIncomeRatio = decimal.RequireFromString("0.5")
)

// ApplyScoreTier maps a score to an approval and a rate floor:
// above 50 keeps the requested rate, 31 to 50 floors it at 12%, 11 to 30
// floors it at 16% and 10 or below is rejected.
func ApplyScoreTier(score int, requestedRate decimal.Decimal) (approved bool, rate decimal.Decimal) {
	switch {
	case score > 50:
		return true, requestedRate
	case score > 30:
		return true, decimal.Max(requestedRate, floorMidTier)
	case score > 10:
		return true, decimal.Max(requestedRate, floorLowTier)
	default:
		return false, requestedRate
	}
}

type Evaluator struct {
	scorer            *Scorer
	maxEMIIncomeRatio decimal.Decimal
	logger            *slog.Logger
}

var _ loan.Evaluator = (*Evaluator)(nil)

func NewEvaluator(scorer *Scorer, maxEMIIncomeRatio decimal.Decimal, logger *slog.Logger) *Evaluator {
	if scorer == nil {
		panic("scorer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if !maxEMIIncomeRatio.IsPositive() {
		maxEMIIncomeRatio = DefaultMaxEMIIncomeRatio
	}
	return &Evaluator{
		scorer:            scorer,
		maxEMIIncomeRatio: maxEMIIncomeRatio,
		logger:            logger.With(slog.String("component", "eligibilityEvaluator")),
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, app loan.Application) (*loan.Decision, error) {
	if err := app.Validate(); err != nil {
		return nil, err
	}

	snap, err := e.scorer.Snapshot(ctx, app.CustomerID)
	if err != nil {
		return nil, err
	}

	decision, err := Decide(*snap, app, e.maxEMIIncomeRatio)
	if err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "Eligibility evaluated",
		"customerID", app.CustomerID,
		"approved", decision.Approved,
		"score", decision.CreditScore,
		"reason", decision.Reason,
	)
	return decision, nil
}

// Decide runs the gates in order over already loaded data: exposure,
// affordability, then the score tiers.
func Decide(snap Snapshot, app loan.Application, maxEMIIncomeRatio decimal.Decimal) (*loan.Decision, error) {
	decision := &loan.Decision{
		CustomerID:    app.CustomerID,
		InterestRate:  app.InterestRate,
		CorrectedRate: app.InterestRate,
		TermMonths:    app.TermMonths,
		Installment:   decimal.Zero,
	}

	if snap.OverLimit() {
		decision.Reason = ReasonExposure
		return decision, nil
	}

	tentative, err := loan.Installment(app.Amount, app.InterestRate, app.TermMonths)
	if err != nil {
		return nil, fmt.Errorf("failed to compute tentative installment: %w", err)
	}
	budget := snap.Customer.MonthlyIncome.Mul(maxEMIIncomeRatio)
	if snap.ActiveInstallments().Add(tentative).GreaterThan(budget) {
		decision.Reason = ReasonAffordability
		return decision, nil
	}

	score := ComputeScore(snap)
	decision.CreditScore = score
	approved, rate := ApplyScoreTier(score, app.InterestRate)
	if !approved {
		decision.Reason = ReasonLowScore
		return decision, nil
	}

	installment := tentative
	if !rate.Equal(app.InterestRate) {
		installment, err = loan.Installment(app.Amount, rate, app.TermMonths)
		if err != nil {
			return nil, fmt.Errorf("failed to compute installment at corrected rate: %w", err)
		}
		decision.Reason = ReasonApprovedCorrected
	} else {
		decision.Reason = ReasonApproved
	}

	decision.Approved = true
	decision.CorrectedRate = rate
	decision.Installment = installment
	return decision, nil
}
