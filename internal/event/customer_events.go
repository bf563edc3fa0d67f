package event

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerEventPayload struct {
	CustomerID    int64           `json:"customerId"`
	Name          string          `json:"name"`
	Age           int             `json:"age"`
	MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
	ApprovedLimit decimal.Decimal `json:"approvedLimit"`
	PhoneNumber   string          `json:"phoneNumber"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type CustomerRegisteredEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

// ExposureExceededEvent is raised by the exposure snapshot when the sum of a
// customer's active principal is above the approved limit.
type ExposureExceededEvent struct {
	Timestamp     time.Time       `json:"timestamp"`
	CustomerID    int64           `json:"customerId"`
	Exposure      decimal.Decimal `json:"exposure"`
	ApprovedLimit decimal.Decimal `json:"approvedLimit"`
	ActiveLoans   int             `json:"activeLoans"`
}
