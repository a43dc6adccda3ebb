package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	internal "github.com/saswatsusmoy/aarogyaai-backend/internal"
	appointmentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/appointment"
	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
	paymentpkg "github.com/saswatsusmoy/aarogyaai-backend/internal/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) paymentpkg.RepositoryAPI {
	return &PaymentRepository{
		db: db,
	}
}

// CreateInitiated inserts the payment and both lifecycle logs in one
// transaction. The row is committed already in PROCESSING with its
// instruction artifacts attached; a failure anywhere rolls everything back.
func (r *PaymentRepository) CreateInitiated(ctx context.Context, p *paymentmodel.Payment, upiID string, gatewayResponse []byte, created, initiated *paymentmodel.PaymentLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if err := tx.Create(created).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":           paymentpkg.StatusProcessing,
			"upi_id":           upiID,
			"gateway_response": json.RawMessage(gatewayResponse),
		}
		if err := tx.Model(&paymentmodel.Payment{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Create(initiated).Error
	})
	if err != nil {
		return err
	}

	p.Status = paymentpkg.StatusProcessing
	p.UPIID = &upiID
	p.GatewayResponse = gatewayResponse
	return nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*paymentmodel.Payment, error) {
	var p paymentmodel.Payment
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Complete is the compare-and-swap completion. The guarded UPDATE re-checks
// the status in the same statement that changes it, so of any number of
// racing callers exactly one advances the row, updates the appointment and
// appends the completed log. The losers observe the terminal row instead.
func (r *PaymentRepository) Complete(ctx context.Context, paymentID string, settlementReference *string, paidAt time.Time) (*paymentpkg.CompleteOutcome, error) {
	var outcome paymentpkg.CompleteOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p paymentmodel.Payment
		if err := tx.Where("id = ?", paymentID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrPaymentNotFound
			}
			return err
		}

		updates := map[string]interface{}{
			"status":  paymentpkg.StatusCompleted,
			"paid_at": paidAt,
		}
		finalTransactionID := p.TransactionID
		if settlementReference != nil && *settlementReference != "" {
			finalTransactionID = *settlementReference
			updates["transaction_id"] = finalTransactionID
		}

		res := tx.Model(&paymentmodel.Payment{}).
			Where("id = ? AND status NOT IN ?", paymentID, []string{paymentpkg.StatusCompleted, paymentpkg.StatusFailed}).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Lost the race or the payment was already terminal.
			if err := tx.Where("id = ?", paymentID).First(&p).Error; err != nil {
				return err
			}
			if p.Status == paymentpkg.StatusFailed {
				return internal.ErrPaymentAlreadyFailed
			}
			outcome = paymentpkg.CompleteOutcome{Payment: &p, AlreadyCompleted: true}
			return nil
		}

		if err := tx.Model(&appointmentmodel.Appointment{}).
			Where("id = ?", p.AppointmentID).
			Update("status", appointmentmodel.StatusAccepted).Error; err != nil {
			return err
		}

		metadata, _ := json.Marshal(map[string]interface{}{
			"transaction_id":          finalTransactionID,
			"original_transaction_id": p.TransactionID,
			"settlement_reference":    settlementReference,
			"appointment_status":      appointmentmodel.StatusAccepted,
		})
		amount := p.Amount
		completedLog := &paymentmodel.PaymentLog{
			ID:        uuid.New().String(),
			PaymentID: p.ID,
			Action:    paymentpkg.ActionCompleted,
			Status:    paymentpkg.StatusCompleted,
			Amount:    &amount,
			Metadata:  metadata,
			CreatedAt: paidAt,
		}
		if err := tx.Create(completedLog).Error; err != nil {
			return err
		}

		p.Status = paymentpkg.StatusCompleted
		p.TransactionID = finalTransactionID
		p.PaidAt = &paidAt
		outcome = paymentpkg.CompleteOutcome{Payment: &p}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &outcome, nil
}

func (r *PaymentRepository) ListByDoctor(ctx context.Context, doctorID string, limit int) ([]*paymentpkg.DoctorPaymentView, error) {
	var views []*paymentpkg.DoctorPaymentView
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.*,
		       pu.username AS patient_username,
		       du.username AS doctor_username,
		       a.scheduled_at AS appointment_date,
		       a.reason AS appointment_reason,
		       a.status AS appointment_status
		FROM payments p
		JOIN appointments a ON a.id = p.appointment_id
		JOIN users pu ON pu.id = p.patient_id
		JOIN users du ON du.id = p.doctor_id
		WHERE p.doctor_id = ? AND a.status <> ?
		ORDER BY p.created_at DESC
		LIMIT ?`,
		doctorID, appointmentmodel.StatusDeclined, limit,
	).Scan(&views).Error
	return views, err
}

func (r *PaymentRepository) LogsForPayment(ctx context.Context, paymentID string) ([]*paymentmodel.PaymentLog, error) {
	var logs []*paymentmodel.PaymentLog
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (r *PaymentRepository) Statistics(ctx context.Context, doctorID string) (*paymentpkg.Statistics, error) {
	var stats paymentpkg.Statistics
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(p.id) AS total_payments,
		       COALESCE(SUM(CASE WHEN p.status = ? THEN p.amount ELSE 0 END), 0) AS total_amount,
		       COALESCE(SUM(CASE WHEN p.status = ? THEN 1 ELSE 0 END), 0) AS successful_payments,
		       COALESCE(SUM(CASE WHEN p.status = ? THEN 1 ELSE 0 END), 0) AS failed_payments,
		       COALESCE(AVG(CASE WHEN p.status = ? THEN p.amount END), 0) AS average_amount
		FROM payments p
		JOIN appointments a ON a.id = p.appointment_id
		WHERE p.doctor_id = ? AND a.status <> ?`,
		paymentpkg.StatusCompleted, paymentpkg.StatusCompleted,
		paymentpkg.StatusFailed, paymentpkg.StatusCompleted,
		doctorID, appointmentmodel.StatusDeclined,
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *PaymentRepository) AppointmentWithPayment(ctx context.Context, appointmentID string) (*paymentpkg.AppointmentPaymentView, error) {
	db := r.db.WithContext(ctx)

	var appt appointmentmodel.Appointment
	if err := db.Where("id = ?", appointmentID).First(&appt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAppointmentNotFound
		}
		return nil, err
	}

	view := &paymentpkg.AppointmentPaymentView{Appointment: appt}

	var names struct {
		PatientUsername string `gorm:"column:patient_username"`
		DoctorUsername  string `gorm:"column:doctor_username"`
	}
	err := db.Raw(`
		SELECT pu.username AS patient_username,
		       du.username AS doctor_username
		FROM appointments a
		JOIN users pu ON pu.id = a.patient_id
		JOIN users du ON du.id = a.doctor_id
		WHERE a.id = ?`, appointmentID,
	).Scan(&names).Error
	if err != nil {
		return nil, err
	}
	view.PatientUsername = names.PatientUsername
	view.DoctorUsername = names.DoctorUsername

	var p paymentmodel.Payment
	err = db.Where("appointment_id = ?", appointmentID).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view, nil
		}
		return nil, err
	}
	view.Payment = &p

	return view, nil
}

func (r *PaymentRepository) ListProcessingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*paymentmodel.Payment, error) {
	var payments []*paymentmodel.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at <= ?", paymentpkg.StatusProcessing, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}
