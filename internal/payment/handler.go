package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/saswatsusmoy/aarogyaai-backend/internal"
	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/transport"
)

// ServiceAPI is the lifecycle surface the HTTP layer consumes.
type ServiceAPI interface {
	Create(ctx context.Context, dto *CreatePaymentDTO) (*CreatePaymentResponse, error)
	Verify(ctx context.Context, transactionID string) (string, error)
	Complete(ctx context.Context, transactionID string, settlementReference *string) (*CompletePaymentResponse, error)
}

// ReporterAPI is the read-only reporting surface the HTTP layer consumes.
type ReporterAPI interface {
	ListByDoctor(ctx context.Context, doctorID string, limit int) ([]*PaymentWithLogs, error)
	Statistics(ctx context.Context, doctorID string) (*Statistics, error)
	AppointmentWithPayment(ctx context.Context, appointmentID string) (*AppointmentPaymentView, []*paymentmodel.PaymentLog, error)
}

type Handler struct {
	transport.BaseHandler
	Service  ServiceAPI
	Reporter ReporterAPI
	Logger   *slog.Logger
}

func NewHandler(service ServiceAPI, reporter ReporterAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.BaseHandler{Logger: logger},
		Service:     service,
		Reporter:    reporter,
		Logger:      logger,
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var dto CreatePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreatePayment: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.Create(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("CreatePayment: service error", "error", err, "appointment_id", dto.AppointmentID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// VerifyPayment handles GET /api/v1/payments/{transactionID}/verify
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	status, err := h.Service.Verify(r.Context(), transactionID)
	if err != nil {
		h.Logger.Error("VerifyPayment: service error", "error", err, "transaction_id", transactionID)
		h.HandleServiceError(w, err)
		return
	}

	// success means the check itself succeeded; only FAILED reports false
	h.WriteJSON(w, http.StatusOK, VerifyPaymentResponse{
		Success: status != StatusFailed,
		Status:  status,
	})
}

// CompletePayment handles POST /api/v1/payments/{transactionID}/complete
func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	var req CompletePaymentRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.Logger.Error("CompletePayment: failed to parse request body", "error", err)
			h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
			return
		}
	}

	resp, err := h.Service.Complete(r.Context(), transactionID, req.SettlementReference)
	if err != nil {
		h.Logger.Error("CompletePayment: service error", "error", err, "transaction_id", transactionID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// DoctorPayments handles GET /api/v1/doctors/{doctorID}/payments
func (h *Handler) DoctorPayments(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.HandleError(w, errors.NewValidationError("limit must be a positive integer", errors.ErrCodeValidationFailed))
			return
		}
		limit = parsed
	}

	payments, err := h.Reporter.ListByDoctor(r.Context(), doctorID, limit)
	if err != nil {
		h.Logger.Error("DoctorPayments: service error", "error", err, "doctor_id", doctorID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"payments": payments,
	})
}

// DoctorPaymentStatistics handles GET /api/v1/doctors/{doctorID}/payments/statistics
func (h *Handler) DoctorPaymentStatistics(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")

	stats, err := h.Reporter.Statistics(r.Context(), doctorID)
	if err != nil {
		h.Logger.Error("DoctorPaymentStatistics: service error", "error", err, "doctor_id", doctorID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"statistics": stats,
	})
}

// AppointmentPayment handles GET /api/v1/appointments/{appointmentID}/payment
func (h *Handler) AppointmentPayment(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")

	view, logs, err := h.Reporter.AppointmentWithPayment(r.Context(), appointmentID)
	if err != nil {
		h.Logger.Error("AppointmentPayment: service error", "error", err, "appointment_id", appointmentID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"appointment": view,
		"logs":        logs,
	})
}
