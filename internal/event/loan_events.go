package event

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanEventPayload struct {
	LoanID           int64           `json:"loanId"`
	CustomerID       int64           `json:"customerId"`
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     decimal.Decimal `json:"interestRate"`
	TermMonths       int             `json:"termMonths"`
	Installment      decimal.Decimal `json:"installment"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	EMIsPaidOnTime   int             `json:"emisPaidOnTime"`
	Status           string          `json:"status"`
	ApprovalDate     time.Time       `json:"approvalDate"`
	EndDate          *time.Time      `json:"endDate,omitempty"`
}

type LoanCreatedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

type PaymentPostedEvent struct {
	Timestamp    time.Time        `json:"timestamp"`
	Amount       decimal.Decimal  `json:"amount"`
	OnSchedule   bool             `json:"onSchedule"`
	Restructured bool             `json:"restructured"`
	PreviousEMI  decimal.Decimal  `json:"previousInstallment"`
	Payload      LoanEventPayload `json:"payload"`
}

type LoanPaidOffEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}
