package customer

import (
	"credit-engine/internal/pkg/apperrors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	maxAge = 150
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// LimitPolicy derives the approved credit limit from the monthly income:
// round(Multiplier * income / BucketSize) * BucketSize.
type LimitPolicy struct {
	Multiplier int64
	BucketSize int64
}

var DefaultLimitPolicy = LimitPolicy{Multiplier: 36, BucketSize: 100000}

func (p LimitPolicy) ApprovedLimit(monthlyIncome decimal.Decimal) decimal.Decimal {
	bucket := decimal.NewFromInt(p.BucketSize)
	buckets := monthlyIncome.Mul(decimal.NewFromInt(p.Multiplier)).Div(bucket).Round(0)
	return buckets.Mul(bucket)
}

// Customer is immutable once registered.
type Customer struct {
	CustomerID    int64           `json:"customerId"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Age           int             `json:"age"`
	MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
	ApprovedLimit decimal.Decimal `json:"approvedLimit"`
	PhoneNumber   string          `json:"phoneNumber"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func NewCustomer(firstName, lastName string, age int, monthlyIncome decimal.Decimal, phoneNumber string, policy LimitPolicy) (*Customer, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	phoneNumber = strings.TrimSpace(phoneNumber)

	if firstName == "" {
		return nil, apperrors.NewValidationError("first_name", "cannot be empty")
	}
	if lastName == "" {
		return nil, apperrors.NewValidationError("last_name", "cannot be empty")
	}
	if age <= 0 || age > maxAge {
		return nil, apperrors.NewValidationError("age", "must be between 1 and 150")
	}
	if !monthlyIncome.IsPositive() {
		return nil, apperrors.NewValidationError("monthly_income", "must be positive")
	}
	if !phonePattern.MatchString(phoneNumber) {
		return nil, apperrors.NewValidationError("phone_number", "must contain 7 to 15 digits")
	}

	now := time.Now()
	return &Customer{
		FirstName:     firstName,
		LastName:      lastName,
		Age:           age,
		MonthlyIncome: monthlyIncome,
		ApprovedLimit: policy.ApprovedLimit(monthlyIncome),
		PhoneNumber:   phoneNumber,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (c *Customer) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
