package handler

import (
	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type LoanHandler struct {
	service   loan.LoanService
	customers customer.CustomerService
	logger    *slog.Logger
}

func NewLoanHandler(s loan.LoanService, cs customer.CustomerService, l *slog.Logger) *LoanHandler {
	if s == nil || cs == nil {
		panic("loan handler services cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &LoanHandler{
		service:   s,
		customers: cs,
		logger:    l.With("component", "LoanHandler"),
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code, message, field := http.StatusInternalServerError, "INTERNAL", "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.As(err, &validationError):
		status, code, message, field = http.StatusBadRequest, "VALIDATION", validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, code, message = http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status, code, message = http.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		status, code, message = http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage is temporarily unavailable."
		logger.Error("Storage failure", "error", err)
	default:
		logger.Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, logger, status, resp)
}

func getIDFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, param)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s format in URL path: %s", apperrors.ErrInvalidArgument, param, idStr)
	}
	return id, nil
}

// logLevelFor keeps expected client-side failures out of the error log.
func logLevelFor(err error) slog.Level {
	if errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrInvalidArgument) ||
		errors.Is(err, apperrors.ErrValidation) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// CheckEligibility handles POST /check-eligibility
// @Summary Check loan eligibility
// @Description Scores the customer and evaluates the requested loan without creating it.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanApplicationRequest true "Loan application"
// @Success 200 {object} dto.EligibilityResponse "Eligibility decision"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan application"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /check-eligibility [post]
func (h *LoanHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req dto.LoanApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, h.logger, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	decision, err := h.service.CheckEligibility(r.Context(), req.ToDomain())
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to check eligibility", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Eligibility checked",
		slog.Int64("customerID", req.CustomerID),
		slog.Bool("approved", decision.Approved),
	)
	respondJSON(w, h.logger, http.StatusOK, dto.NewEligibilityResponse(decision))
}

// CreateLoan handles POST /create-loan
// @Summary Create a loan
// @Description Re-runs the eligibility check and records the loan when approved.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanApplicationRequest true "Loan application"
// @Success 201 {object} dto.CreateLoanResponse "Loan created"
// @Success 200 {object} dto.CreateLoanResponse "Loan not approved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan application"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /create-loan [post]
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.LoanApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, h.logger, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	result, err := h.service.CreateLoan(r.Context(), req.ToDomain())
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to create loan", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	resp := dto.NewCreateLoanResponse(req.CustomerID, result)
	if !resp.LoanApproved {
		h.logger.InfoContext(r.Context(), "Loan not approved", slog.Int64("customerID", req.CustomerID), slog.String("message", resp.Message))
		respondJSON(w, h.logger, http.StatusOK, resp)
		return
	}
	h.logger.InfoContext(r.Context(), "Loan created successfully", slog.Int64("customerID", req.CustomerID), slog.Int64("loanID", *resp.LoanID))
	respondJSON(w, h.logger, http.StatusCreated, resp)
}

// ViewLoan handles GET /view-loan/{loanID}
// @Summary View a loan
// @Description Returns the loan with a summary of its borrower.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID" Minimum(1)
// @Success 200 {object} dto.LoanResponse "Loan details"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /view-loan/{loanID} [get]
func (h *LoanHandler) ViewLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getIDFromURL(r, "loanID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get loan ID from URL", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	l, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get loan", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	cust, err := h.customers.GetCustomer(r.Context(), l.CustomerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get loan customer", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, dto.NewLoanResponse(l, cust))
}

// ViewCustomerLoans handles GET /view-loans/{customerID}
// @Summary List a customer's active loans
// @Description Returns the loans that are active today for the customer.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.CustomerLoanItem "Active loans"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Router /view-loans/{customerID} [get]
func (h *LoanHandler) ViewCustomerLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDFromURL(r, "customerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	loans, err := h.service.ListActiveLoans(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list loans", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	items := dto.NewCustomerLoanItems(loans)
	h.logger.DebugContext(r.Context(), "Loans listed", slog.Int64("customerID", customerID), slog.Int("count", len(items)))
	respondJSON(w, h.logger, http.StatusOK, items)
}

// MakePayment handles POST /make-payment/{customerID}/{loanID}
// @Summary Post a repayment
// @Description Applies a payment to the loan. Off-schedule amounts recalculate the monthly installment.
// @Tags Loans
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param loanID path int true "Loan ID" Minimum(1)
// @Param request body dto.MakePaymentRequest true "Payment amount"
// @Success 200 {object} dto.PaymentResponse "Payment applied"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount, overpayment or loan already paid"
// @Failure 404 {object} dto.ErrorResponse "Loan not found for customer"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /make-payment/{customerID}/{loanID} [post]
func (h *LoanHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDFromURL(r, "customerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}
	loanID, err := getIDFromURL(r, "loanID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get loan ID from URL", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	var req dto.MakePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, h.logger, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	result, err := h.service.PostPayment(r.Context(), customerID, loanID, req.Amount)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to post payment",
			slog.Int64("customerID", customerID),
			slog.Int64("loanID", loanID),
			slog.Any("error", err),
		)
		respondError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Payment posted",
		slog.Int64("loanID", loanID),
		slog.String("amount", req.Amount.String()),
		slog.Bool("restructured", result.Restructured),
	)
	respondJSON(w, h.logger, http.StatusOK, dto.NewPaymentResponse(result))
}

// ViewStatement handles GET /view-statement/{customerID}/{loanID}
// @Summary View a loan statement
// @Description Returns principal, amount paid and repayments left for the loan.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param loanID path int true "Loan ID" Minimum(1)
// @Success 200 {object} dto.StatementResponse "Loan statement"
// @Failure 400 {object} dto.ErrorResponse "Invalid IDs"
// @Failure 404 {object} dto.ErrorResponse "Loan not found for customer"
// @Router /view-statement/{customerID}/{loanID} [get]
func (h *LoanHandler) ViewStatement(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDFromURL(r, "customerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}
	loanID, err := getIDFromURL(r, "loanID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get loan ID from URL", slog.Any("error", err))
		respondError(w, h.logger, err)
		return
	}

	statement, err := h.service.GetStatement(r.Context(), customerID, loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get statement",
			slog.Int64("customerID", customerID),
			slog.Int64("loanID", loanID),
			slog.Any("error", err),
		)
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, dto.NewStatementResponse(statement))
}
