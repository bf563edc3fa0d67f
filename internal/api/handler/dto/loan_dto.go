package dto

import (
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"fmt"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// LoanApplicationRequest is shared by /check-eligibility and /create-loan.
type LoanApplicationRequest struct {
	CustomerID   int64           `json:"customer_id" example:"1"`
	LoanAmount   decimal.Decimal `json:"loan_amount" swaggertype:"string" example:"500000"`
	InterestRate decimal.Decimal `json:"interest_rate" swaggertype:"string" example:"10"`
	Tenure       int             `json:"tenure" example:"24"`
}

func (r *LoanApplicationRequest) ToDomain() loan.Application {
	return loan.Application{
		CustomerID:   r.CustomerID,
		Amount:       r.LoanAmount,
		InterestRate: r.InterestRate,
		TermMonths:   r.Tenure,
	}
}

type EligibilityResponse struct {
	CustomerID            int64  `json:"customer_id" example:"1"`
	Approval              bool   `json:"approval" example:"true"`
	InterestRate          string `json:"interest_rate" example:"10"`
	CorrectedInterestRate string `json:"corrected_interest_rate" example:"10"`
	Tenure                int    `json:"tenure" example:"24"`
	MonthlyInstallment    string `json:"monthly_installment" example:"23072.46"`
	CreditScore           int    `json:"credit_score" example:"100"`
	Message               string `json:"message" example:"loan approved"`
}

func NewEligibilityResponse(d *loan.Decision) EligibilityResponse {
	return EligibilityResponse{
		CustomerID:            d.CustomerID,
		Approval:              d.Approved,
		InterestRate:          d.InterestRate.String(),
		CorrectedInterestRate: d.CorrectedRate.String(),
		Tenure:                d.TermMonths,
		MonthlyInstallment:    formatMoney(d.Installment),
		CreditScore:           d.CreditScore,
		Message:               d.Reason,
	}
}

type CreateLoanResponse struct {
	LoanID             *int64 `json:"loan_id" example:"42"`
	CustomerID         int64  `json:"customer_id" example:"1"`
	LoanApproved       bool   `json:"loan_approved" example:"true"`
	Message            string `json:"message" example:"Loan approved"`
	MonthlyInstallment string `json:"monthly_installment" example:"23072.46"`
}

func NewCreateLoanResponse(customerID int64, result *loan.CreationResult) CreateLoanResponse {
	resp := CreateLoanResponse{
		CustomerID:         customerID,
		MonthlyInstallment: formatMoney(decimal.Zero),
	}
	d := result.Decision
	if d == nil || !d.Approved || result.Loan == nil {
		resp.Message = "Loan not approved"
		if d != nil && d.Reason != "" {
			resp.Message = fmt.Sprintf("Loan not approved: %s", d.Reason)
		}
		return resp
	}

	id := result.Loan.ID
	resp.LoanID = &id
	resp.LoanApproved = true
	resp.MonthlyInstallment = formatMoney(result.Loan.Installment)
	resp.Message = "Loan approved"
	if !d.CorrectedRate.Equal(d.InterestRate) {
		resp.Message = fmt.Sprintf("Loan approved at a corrected interest rate of %s%% due to credit score", d.CorrectedRate.String())
	}
	return resp
}

type LoanCustomerSummary struct {
	ID          int64  `json:"id" example:"1"`
	FirstName   string `json:"first_name" example:"Ada"`
	LastName    string `json:"last_name" example:"Lovelace"`
	PhoneNumber string `json:"phone_number" example:"9876543210"`
	Age         int    `json:"age" example:"36"`
}

type LoanResponse struct {
	LoanID             int64               `json:"loan_id" example:"42"`
	Customer           LoanCustomerSummary `json:"customer"`
	LoanAmount         string              `json:"loan_amount" example:"500000.00"`
	InterestRate       string              `json:"interest_rate" example:"10"`
	MonthlyInstallment string              `json:"monthly_installment" example:"23072.46"`
	Tenure             int                 `json:"tenure" example:"24"`
	RemainingBalance   string              `json:"remaining_balance" example:"500000.00"`
	EMIsPaidOnTime     int                 `json:"emis_paid_on_time" example:"0"`
	Status             string              `json:"status" example:"ACTIVE"`
	ApprovalDate       string              `json:"date_of_approval" example:"2024-01-15"`
	EndDate            string              `json:"end_date,omitempty" example:"2026-01-15"`
}

func NewLoanResponse(l *loan.Loan, cust *customer.Customer) LoanResponse {
	resp := LoanResponse{
		LoanID:             l.ID,
		LoanAmount:         formatMoney(l.Principal),
		InterestRate:       l.InterestRate.String(),
		MonthlyInstallment: formatMoney(l.Installment),
		Tenure:             l.TermMonths,
		RemainingBalance:   formatMoney(l.RemainingBalance),
		EMIsPaidOnTime:     l.EMIsPaidOnTime,
		Status:             string(l.Status),
		ApprovalDate:       l.ApprovalDate.Format(dateLayout),
	}
	if l.EndDate != nil {
		resp.EndDate = l.EndDate.Format(dateLayout)
	}
	if cust != nil {
		resp.Customer = LoanCustomerSummary{
			ID:          cust.CustomerID,
			FirstName:   cust.FirstName,
			LastName:    cust.LastName,
			PhoneNumber: cust.PhoneNumber,
			Age:         cust.Age,
		}
	} else {
		resp.Customer = LoanCustomerSummary{ID: l.CustomerID}
	}
	return resp
}

type CustomerLoanItem struct {
	LoanID             int64  `json:"loan_id" example:"42"`
	LoanAmount         string `json:"loan_amount" example:"500000.00"`
	InterestRate       string `json:"interest_rate" example:"10"`
	MonthlyInstallment string `json:"monthly_installment" example:"23072.46"`
	RepaymentsLeft     int    `json:"repayments_left" example:"24"`
}

func NewCustomerLoanItems(loans []loan.Loan) []CustomerLoanItem {
	items := make([]CustomerLoanItem, 0, len(loans))
	for _, l := range loans {
		items = append(items, CustomerLoanItem{
			LoanID:             l.ID,
			LoanAmount:         formatMoney(l.Principal),
			InterestRate:       l.InterestRate.String(),
			MonthlyInstallment: formatMoney(l.Installment),
			RepaymentsLeft:     l.RepaymentsLeft(),
		})
	}
	return items
}

type MakePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"23072.46"`
}

type PaymentResponse struct {
	Message            string `json:"message" example:"Payment successful"`
	LoanID             int64  `json:"loan_id" example:"42"`
	CustomerID         int64  `json:"customer_id" example:"1"`
	AmountPaid         string `json:"amount_paid" example:"23072.46"`
	RemainingBalance   string `json:"remaining_balance" example:"476927.54"`
	MonthlyInstallment string `json:"monthly_installment" example:"23072.46"`
	EMIsPaidOnTime     int    `json:"emis_paid_on_time" example:"1"`
	Status             string `json:"status" example:"ACTIVE"`
}

func NewPaymentResponse(res *loan.PaymentResult) PaymentResponse {
	message := "Payment successful"
	switch {
	case res.PaidOff:
		message = "Payment successful, loan fully paid"
	case res.Restructured:
		message = "Payment successful, monthly installment recalculated"
	}
	l := res.Loan
	return PaymentResponse{
		Message:            message,
		LoanID:             l.ID,
		CustomerID:         l.CustomerID,
		AmountPaid:         formatMoney(res.Amount),
		RemainingBalance:   formatMoney(l.RemainingBalance),
		MonthlyInstallment: formatMoney(l.Installment),
		EMIsPaidOnTime:     l.EMIsPaidOnTime,
		Status:             string(l.Status),
	}
}

type StatementResponse struct {
	CustomerID         int64  `json:"customer_id" example:"1"`
	LoanID             int64  `json:"loan_id" example:"42"`
	Principal          string `json:"principal" example:"500000.00"`
	InterestRate       string `json:"interest_rate" example:"10"`
	AmountPaid         string `json:"amount_paid" example:"0.00"`
	MonthlyInstallment string `json:"monthly_installment" example:"23072.46"`
	RepaymentsLeft     int    `json:"repayments_left" example:"24"`
}

func NewStatementResponse(s *loan.Statement) StatementResponse {
	return StatementResponse{
		CustomerID:         s.CustomerID,
		LoanID:             s.LoanID,
		Principal:          formatMoney(s.Principal),
		InterestRate:       s.InterestRate.String(),
		AmountPaid:         formatMoney(s.AmountPaid),
		MonthlyInstallment: formatMoney(s.Installment),
		RepaymentsLeft:     s.RepaymentsLeft,
	}
}
