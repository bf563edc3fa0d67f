package customer

import (
	"context"
	"credit-engine/internal/event"

	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (_m *MockCustomerRepository) Save(ctx context.Context, customer *Customer) error {
	ret := _m.Called(ctx, customer)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Customer) error); ok {
		r0 = rf(ctx, customer)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, int64) *Customer); ok {
		r0 = rf(ctx, customerID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, customerID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

var _ CustomerRepository = (*MockCustomerRepository)(nil)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCustomerRegistered(ctx context.Context, evt event.CustomerRegisteredEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MockEventPublisher) PublishExposureExceeded(ctx context.Context, evt event.ExposureExceededEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MockEventPublisher) PublishLoanCreated(ctx context.Context, evt event.LoanCreatedEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MockEventPublisher) PublishPaymentPosted(ctx context.Context, evt event.PaymentPostedEvent) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MockEventPublisher) PublishLoanPaidOff(ctx context.Context, evt event.LoanPaidOffEvent) error {
	return m.Called(ctx, evt).Error(0)
}

var _ event.EventPublisher = (*MockEventPublisher)(nil)
