package dto

import (
	"credit-engine/internal/domain/customer"
	"strings"

	"github.com/shopspring/decimal"
)

// RegisterCustomerRequest accepts monthly_income as a JSON number or a
// numeric string.
type RegisterCustomerRequest struct {
	FirstName     string          `json:"first_name" example:"Ada"`
	LastName      string          `json:"last_name" example:"Lovelace"`
	Age           int             `json:"age" example:"36"`
	MonthlyIncome decimal.Decimal `json:"monthly_income" swaggertype:"string" example:"100000"`
	PhoneNumber   string          `json:"phone_number" example:"9876543210"`
}

func (r *RegisterCustomerRequest) ToDomain() customer.RegistrationRequest {
	return customer.RegistrationRequest{
		FirstName:     strings.TrimSpace(r.FirstName),
		LastName:      strings.TrimSpace(r.LastName),
		Age:           r.Age,
		MonthlyIncome: r.MonthlyIncome,
		PhoneNumber:   strings.TrimSpace(r.PhoneNumber),
	}
}

type CustomerResponse struct {
	CustomerID    int64  `json:"customer_id" example:"1"`
	Name          string `json:"name" example:"Ada Lovelace"`
	Age           int    `json:"age" example:"36"`
	MonthlyIncome string `json:"monthly_income" example:"100000.00"`
	ApprovedLimit string `json:"approved_limit" example:"3600000.00"`
	PhoneNumber   string `json:"phone_number" example:"9876543210"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		CustomerID:    cust.CustomerID,
		Name:          cust.Name(),
		Age:           cust.Age,
		MonthlyIncome: formatMoney(cust.MonthlyIncome),
		ApprovedLimit: formatMoney(cust.ApprovedLimit),
		PhoneNumber:   cust.PhoneNumber,
	}
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
