package handler

import (
	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"net/http"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// RegisterCustomer handles POST /register
// @Summary Register a new customer
// @Description Registers a customer and derives their approved limit from monthly income.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.RegisterCustomerRequest true "Customer registration request"
// @Success 201 {object} dto.CustomerResponse "Customer successfully registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Customer already exists"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /register [post]
func (h *CustomerHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received register customer request")

	var req dto.RegisterCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, h.logger, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	registered, err := h.service.RegisterCustomer(r.Context(), req.ToDomain())
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to register customer", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	resp := dto.NewCustomerResponse(registered)
	h.logger.InfoContext(r.Context(), "Customer registered successfully", slog.Int64("customerID", resp.CustomerID))
	respondJSON(w, h.logger, http.StatusCreated, resp)
}

// GetCustomer handles GET /customers/{customerID}
// @Summary Retrieve customer details
// @Description Retrieves details for a specific customer by their ID.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDFromURL(r, "customerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	found, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get customer", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer retrieved successfully")
	respondJSON(w, h.logger, http.StatusOK, dto.NewCustomerResponse(found))
}
