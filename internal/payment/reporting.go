package payment

import (
	"context"
	"log/slog"

	internal "github.com/saswatsusmoy/aarogyaai-backend/internal"
	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
)

const DefaultListLimit = 50

// Reporter is the read-only aggregation layer over the payment store and
// audit trail. It never mutates state.
type Reporter struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewReporter(repo RepositoryAPI, logger *slog.Logger) *Reporter {
	return &Reporter{
		repo:   repo,
		logger: logger,
	}
}

// ListByDoctor returns up to limit most-recently-created payments for the
// doctor, excluding payments whose appointment was declined, each paired
// with its chronologically-ordered audit trail.
func (r *Reporter) ListByDoctor(ctx context.Context, doctorID string, limit int) ([]*PaymentWithLogs, error) {
	if doctorID == "" {
		return nil, internal.NewValidationError("doctor id is required", internal.ErrCodeMissingIdentifier)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	views, err := r.repo.ListByDoctor(ctx, doctorID, limit)
	if err != nil {
		r.logger.Error("failed to list payments", "error", err, "doctor_id", doctorID)
		return nil, r.storeError("payment listing failed", err)
	}

	result := make([]*PaymentWithLogs, 0, len(views))
	for _, view := range views {
		logs, err := r.repo.LogsForPayment(ctx, view.ID)
		if err != nil {
			r.logger.Error("failed to load payment logs", "error", err, "payment_id", view.ID)
			return nil, r.storeError("payment log lookup failed", err)
		}
		result = append(result, &PaymentWithLogs{Payment: *view, Logs: logs})
	}

	return result, nil
}

// Statistics aggregates counts and amounts over the doctor's payments,
// excluding declined appointments. An empty population yields all-zero
// statistics, not an error.
func (r *Reporter) Statistics(ctx context.Context, doctorID string) (*Statistics, error) {
	if doctorID == "" {
		return nil, internal.NewValidationError("doctor id is required", internal.ErrCodeMissingIdentifier)
	}

	stats, err := r.repo.Statistics(ctx, doctorID)
	if err != nil {
		r.logger.Error("failed to compute payment statistics", "error", err, "doctor_id", doctorID)
		return nil, r.storeError("payment statistics failed", err)
	}

	return stats, nil
}

// AppointmentWithPayment returns the appointment, its (optional) payment
// and the payment's ordered audit trail.
func (r *Reporter) AppointmentWithPayment(ctx context.Context, appointmentID string) (*AppointmentPaymentView, []*paymentmodel.PaymentLog, error) {
	if appointmentID == "" {
		return nil, nil, internal.NewValidationError("appointment id is required", internal.ErrCodeMissingIdentifier)
	}

	view, err := r.repo.AppointmentWithPayment(ctx, appointmentID)
	if err != nil {
		r.logger.Error("failed to load appointment with payment", "error", err, "appointment_id", appointmentID)
		return nil, nil, r.storeError("appointment lookup failed", err)
	}

	var logs []*paymentmodel.PaymentLog
	if view.Payment != nil {
		logs, err = r.repo.LogsForPayment(ctx, view.Payment.ID)
		if err != nil {
			r.logger.Error("failed to load payment logs", "error", err, "payment_id", view.Payment.ID)
			return nil, nil, r.storeError("payment log lookup failed", err)
		}
	}

	return view, logs, nil
}

func (r *Reporter) storeError(message string, err error) error {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	return internal.NewUnavailableError(message, err)
}
