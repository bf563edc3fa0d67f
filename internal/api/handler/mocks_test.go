package handler

import (
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CheckEligibility(ctx context.Context, app loan.Application) (*loan.Decision, error) {
	args := m.Called(ctx, app)
	if d, ok := args.Get(0).(*loan.Decision); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) CreateLoan(ctx context.Context, app loan.Application) (*loan.CreationResult, error) {
	args := m.Called(ctx, app)
	if res, ok := args.Get(0).(*loan.CreationResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, loanID)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListActiveLoans(ctx context.Context, customerID int64) ([]loan.Loan, error) {
	args := m.Called(ctx, customerID)
	if loans, ok := args.Get(0).([]loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) PostPayment(ctx context.Context, customerID, loanID int64, amount decimal.Decimal) (*loan.PaymentResult, error) {
	args := m.Called(ctx, customerID, loanID, amount)
	if res, ok := args.Get(0).(*loan.PaymentResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetStatement(ctx context.Context, customerID, loanID int64) (*loan.Statement, error) {
	args := m.Called(ctx, customerID, loanID)
	if s, ok := args.Get(0).(*loan.Statement); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) RegisterCustomer(ctx context.Context, req customer.RegistrationRequest) (*customer.Customer, error) {
	args := m.Called(ctx, req)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
