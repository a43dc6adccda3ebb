package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appointmentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/appointment"
	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
)

// Payment status machine: PENDING → PROCESSING → COMPLETED | FAILED.
// COMPLETED and FAILED are terminal; status never moves backwards.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

const (
	MethodUPI = "UPI"

	ActionCreated   = "created"
	ActionInitiated = "initiated"
	ActionCompleted = "completed"
)

// CanTransition reports whether the state machine permits moving from one
// status to another. Terminal states absorb every request.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// NewTransactionID builds an externally-visible correlation identifier.
// The timestamp component keeps ids roughly sortable; the random suffix
// keeps concurrent creations from colliding.
func NewTransactionID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("TXN_%d_%s", now.Unix(), suffix)
}

// CompleteOutcome reports what a compare-and-swap completion observed.
type CompleteOutcome struct {
	Payment          *paymentmodel.Payment
	AlreadyCompleted bool
}

// DoctorPaymentView is one payment row denormalized with the display
// fields reporting callers need.
type DoctorPaymentView struct {
	paymentmodel.Payment
	PatientUsername   string    `json:"patient_username" gorm:"column:patient_username"`
	DoctorUsername    string    `json:"doctor_username" gorm:"column:doctor_username"`
	AppointmentDate   time.Time `json:"appointment_date" gorm:"column:appointment_date"`
	AppointmentReason string    `json:"appointment_reason" gorm:"column:appointment_reason"`
	AppointmentStatus string    `json:"appointment_status" gorm:"column:appointment_status"`
}

// PaymentWithLogs pairs a payment with its full audit trail, logs in
// ascending created_at order.
type PaymentWithLogs struct {
	Payment DoctorPaymentView          `json:"payment"`
	Logs    []*paymentmodel.PaymentLog `json:"logs"`
}

type Statistics struct {
	TotalPayments      int64   `json:"total_payments" gorm:"column:total_payments"`
	TotalAmount        float64 `json:"total_amount" gorm:"column:total_amount"`
	SuccessfulPayments int64   `json:"successful_payments" gorm:"column:successful_payments"`
	FailedPayments     int64   `json:"failed_payments" gorm:"column:failed_payments"`
	AverageAmount      float64 `json:"average_amount" gorm:"column:average_amount"`
}

// AppointmentPaymentView is an appointment with its (optional) payment and
// the denormalized display fields, for callers that already know the
// appointment.
type AppointmentPaymentView struct {
	Appointment     appointmentmodel.Appointment `json:"appointment"`
	PatientUsername string                       `json:"patient_username"`
	DoctorUsername  string                       `json:"doctor_username"`
	Payment         *paymentmodel.Payment        `json:"payment,omitempty"`
}

// RepositoryAPI is the durable store behind the lifecycle engine and the
// reporting layer. Every mutating method commits as a single transaction;
// partial application is the primary correctness risk (status updated but
// log missing, or payment completed but appointment not advanced).
type RepositoryAPI interface {
	// CreateInitiated atomically inserts the PENDING payment with its
	// created log, attaches the instruction artifacts, advances the row to
	// PROCESSING and appends the initiated log.
	CreateInitiated(ctx context.Context, p *paymentmodel.Payment, upiID string, gatewayResponse []byte, created, initiated *paymentmodel.PaymentLog) error

	GetByTransactionID(ctx context.Context, transactionID string) (*paymentmodel.Payment, error)

	// Complete performs the compare-and-swap completion: re-checks status
	// inside the transaction, sets COMPLETED and paid_at, optionally
	// overwrites transaction_id with the settlement reference, advances the
	// owning appointment to ACCEPTED and appends the completed log. Safe to
	// race: at most one caller appends the log.
	Complete(ctx context.Context, paymentID string, settlementReference *string, paidAt time.Time) (*CompleteOutcome, error)

	ListByDoctor(ctx context.Context, doctorID string, limit int) ([]*DoctorPaymentView, error)
	LogsForPayment(ctx context.Context, paymentID string) ([]*paymentmodel.PaymentLog, error)
	Statistics(ctx context.Context, doctorID string) (*Statistics, error)
	AppointmentWithPayment(ctx context.Context, appointmentID string) (*AppointmentPaymentView, error)

	// ListProcessingBefore returns PROCESSING payments created at or before
	// the cutoff, oldest first, for the reconciler sweep.
	ListProcessingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*paymentmodel.Payment, error)
}
