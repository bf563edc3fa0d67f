package customer_test

import (
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/event"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTest() (*customer.MockCustomerRepository, *customer.MockEventPublisher, customer.CustomerService) {
	mockRepo := new(customer.MockCustomerRepository)
	mockPub := new(customer.MockEventPublisher)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := customer.NewCustomerService(mockRepo, mockPub, customer.DefaultLimitPolicy, logger)
	return mockRepo, mockPub, service
}

func validRegistration() customer.RegistrationRequest {
	return customer.RegistrationRequest{
		FirstName:     "Grace",
		LastName:      "Hopper",
		Age:           45,
		MonthlyIncome: decimal.NewFromInt(100000),
		PhoneNumber:   "9123456789",
	}
}

func TestCustomerService_RegisterCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest()

		mockRepo.On("Save", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			if c.FirstName != "Grace" || !c.ApprovedLimit.Equal(decimal.NewFromInt(3600000)) {
				return false
			}
			c.CustomerID = 11
			return true
		})).Return(nil).Once()
		mockPub.On("PublishCustomerRegistered", ctx, mock.MatchedBy(func(e event.CustomerRegisteredEvent) bool {
			return e.Payload.CustomerID == 11 && e.Payload.Name == "Grace Hopper"
		})).Return(nil).Once()

		created, err := service.RegisterCustomer(ctx, validRegistration())

		assert.NoError(t, err)
		assert.Equal(t, int64(11), created.CustomerID)
		assert.Equal(t, "3600000", created.ApprovedLimit.String())
		mockRepo.AssertExpectations(t)
		mockPub.AssertExpectations(t)
	})

	t.Run("Publish failure does not fail registration", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest()

		mockRepo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil).Once()
		mockPub.On("PublishCustomerRegistered", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		created, err := service.RegisterCustomer(ctx, validRegistration())

		assert.NoError(t, err)
		assert.NotNil(t, created)
		mockPub.AssertExpectations(t)
	})

	t.Run("Error - Validation", func(t *testing.T) {
		mockRepo, mockPub, service := setupTest()
		req := validRegistration()
		req.Age = 0

		created, err := service.RegisterCustomer(ctx, req)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		mockPub.AssertNotCalled(t, "PublishCustomerRegistered", mock.Anything, mock.Anything)
	})

	t.Run("Error - Repository Save Failure", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		dbError := apperrors.WrapStorageError(errors.New("connection refused"), "failed to save customer")

		mockRepo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(dbError).Once()

		created, err := service.RegisterCustomer(ctx, validRegistration())

		assert.Nil(t, created)
		assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
		assert.Contains(t, err.Error(), "failed to save new customer")
		mockRepo.AssertExpectations(t)
	})
}

func TestCustomerService_GetCustomer(t *testing.T) {
	ctx := context.Background()
	customerID := int64(42)

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		expected := &customer.Customer{CustomerID: customerID, FirstName: "Test"}

		mockRepo.On("FindByID", ctx, customerID).Return(expected, nil).Once()

		cust, err := service.GetCustomer(ctx, customerID)

		assert.NoError(t, err)
		assert.Equal(t, expected, cust)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Not Found", func(t *testing.T) {
		mockRepo, _, service := setupTest()

		mockRepo.On("FindByID", ctx, customerID).Return(nil, customer.ErrNotFound).Once()

		cust, err := service.GetCustomer(ctx, customerID)

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, customer.ErrNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Error - Storage", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		dbError := apperrors.WrapStorageError(errors.New("timeout"), "failed to find customer")

		mockRepo.On("FindByID", ctx, customerID).Return(nil, dbError).Once()

		cust, err := service.GetCustomer(ctx, customerID)

		assert.Nil(t, cust)
		assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
		assert.False(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestNewCustomerService_PanicsOnNilRepository(t *testing.T) {
	assert.Panics(t, func() {
		customer.NewCustomerService(nil, nil, customer.DefaultLimitPolicy, nil)
	})
}
