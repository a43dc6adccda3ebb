package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	internal "github.com/saswatsusmoy/aarogyaai-backend/internal"
	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/core/events"
)

// Service is the payment lifecycle engine: the only component that mutates
// the payment store or appends to the audit trail. All state transitions
// flow through here under the rules in CanTransition.
type Service struct {
	repo     RepositoryAPI
	merchant internal.MerchantConfig
	oracle   SettlementOracle
	eventBus *events.EventBus
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, merchant internal.MerchantConfig, oracle SettlementOracle, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		merchant: merchant,
		oracle:   oracle,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Create inserts a new payment intent, generates its UPI instruction and
// drives the row PENDING → PROCESSING, all in one store transaction. A
// store failure means no payment was created, never an ambiguous state.
func (s *Service) Create(ctx context.Context, dto *CreatePaymentDTO) (*CreatePaymentResponse, error) {
	if dto.Method == "" {
		dto.Method = MethodUPI
	}
	if err := dto.Validate(); err != nil {
		s.logger.Error("payment validation failed", "error", err, "appointment_id", dto.AppointmentID)
		return nil, err
	}

	now := s.now()
	transactionID := NewTransactionID(now)
	paymentID := uuid.New().String()

	instruction, err := GenerateInstruction(s.merchant, dto.Amount, transactionID)
	if err != nil {
		return nil, err
	}

	upiID := s.merchant.UPIID
	if dto.UPIID != nil && *dto.UPIID != "" {
		upiID = *dto.UPIID
	}

	gatewayResponse, err := json.Marshal(instruction)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode instruction artifacts", err)
	}

	p := &paymentmodel.Payment{
		ID:            paymentID,
		AppointmentID: dto.AppointmentID,
		PatientID:     dto.PatientID,
		DoctorID:      dto.DoctorID,
		Amount:        dto.Amount,
		Currency:      "INR",
		Status:        StatusPending,
		Method:        dto.Method,
		TransactionID: transactionID,
		CreatedAt:     now,
	}

	amount := dto.Amount
	created := s.newLog(paymentID, ActionCreated, StatusPending, &amount, nil)

	initiatedMeta, _ := json.Marshal(map[string]interface{}{
		"method":  dto.Method,
		"upi_url": instruction.URI,
		"qr_code": instruction.QRPayload,
	})
	initiated := s.newLog(paymentID, ActionInitiated, StatusProcessing, &amount, initiatedMeta)

	if err := s.repo.CreateInitiated(ctx, p, upiID, gatewayResponse, created, initiated); err != nil {
		s.logger.Error("failed to create payment",
			"error", err,
			"appointment_id", dto.AppointmentID,
			"transaction_id", transactionID)
		return nil, s.storeError("payment creation failed", err)
	}

	s.eventBus.Publish(ctx, events.NewPaymentInitiatedEvent(
		paymentID, dto.AppointmentID, transactionID, dto.Amount, instruction.URI))

	s.logger.Info("payment created",
		"payment_id", paymentID,
		"appointment_id", dto.AppointmentID,
		"transaction_id", transactionID,
		"amount", dto.Amount,
		"status", StatusProcessing)

	return &CreatePaymentResponse{
		Success:       true,
		TransactionID: transactionID,
		PaymentURL:    instruction.URI,
		QRCode:        instruction.QRPayload,
	}, nil
}

// Verify reports the current status of a payment. Terminal states return
// idempotently. A PROCESSING payment the settlement oracle considers
// settled is driven to COMPLETED through the same compare-and-swap path as
// an explicit completion, so concurrent verifies complete at most once.
func (s *Service) Verify(ctx context.Context, transactionID string) (string, error) {
	if transactionID == "" {
		return "", internal.NewValidationError("transaction id is required", internal.ErrCodeMissingIdentifier)
	}

	p, err := s.repo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return "", s.storeError("payment lookup failed", err)
	}

	switch p.Status {
	case StatusCompleted, StatusFailed:
		return p.Status, nil
	case StatusProcessing:
		settled, err := s.oracle.Settled(ctx, p)
		if err != nil {
			s.logger.Error("settlement oracle failed", "error", err, "transaction_id", transactionID)
			return "", internal.NewInternalError("settlement check failed", err)
		}
		if !settled {
			return StatusProcessing, nil
		}

		if _, err := s.complete(ctx, p, nil); err != nil {
			return "", err
		}
		return StatusCompleted, nil
	default:
		return p.Status, nil
	}
}

// Complete marks a payment settled. Idempotent: completing an already
// COMPLETED payment reports success without appending a duplicate log.
// Completing a FAILED payment is a conflict, never silently ignored.
func (s *Service) Complete(ctx context.Context, transactionID string, settlementReference *string) (*CompletePaymentResponse, error) {
	if transactionID == "" {
		return nil, internal.NewValidationError("transaction id is required", internal.ErrCodeMissingIdentifier)
	}

	p, err := s.repo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, s.storeError("payment lookup failed", err)
	}

	if p.Status == StatusFailed {
		return nil, internal.ErrPaymentAlreadyFailed
	}
	if p.Status == StatusCompleted {
		return &CompletePaymentResponse{
			Success: true,
			Status:  StatusCompleted,
			Message: "Payment already completed",
		}, nil
	}

	outcome, err := s.complete(ctx, p, settlementReference)
	if err != nil {
		return nil, err
	}
	if outcome.AlreadyCompleted {
		return &CompletePaymentResponse{
			Success: true,
			Status:  StatusCompleted,
			Message: "Payment already completed",
		}, nil
	}

	return &CompletePaymentResponse{
		Success: true,
		Status:  StatusCompleted,
		Message: "Payment completed successfully",
	}, nil
}

// complete drives the transactional compare-and-swap completion and
// publishes the completed event when this caller won the swap.
func (s *Service) complete(ctx context.Context, p *paymentmodel.Payment, settlementReference *string) (*CompleteOutcome, error) {
	outcome, err := s.repo.Complete(ctx, p.ID, settlementReference, s.now())
	if err != nil {
		s.logger.Error("failed to complete payment",
			"error", err,
			"payment_id", p.ID,
			"transaction_id", p.TransactionID)
		return nil, s.storeError("payment completion failed", err)
	}

	if !outcome.AlreadyCompleted {
		finalTxnID := p.TransactionID
		ref := ""
		if settlementReference != nil && *settlementReference != "" {
			finalTxnID = *settlementReference
			ref = *settlementReference
		}

		s.eventBus.Publish(ctx, events.NewPaymentCompletedEvent(
			p.ID, p.AppointmentID, finalTxnID, ref, p.Amount))

		s.logger.Info("payment completed",
			"payment_id", p.ID,
			"appointment_id", p.AppointmentID,
			"transaction_id", finalTxnID,
			"amount", p.Amount)
	}

	return outcome, nil
}

func (s *Service) newLog(paymentID, action, status string, amount *float64, metadata []byte) *paymentmodel.PaymentLog {
	return &paymentmodel.PaymentLog{
		ID:        uuid.New().String(),
		PaymentID: paymentID,
		Action:    action,
		Status:    status,
		Amount:    amount,
		Metadata:  metadata,
		CreatedAt: s.now(),
	}
}

// storeError passes semantic errors through and classifies everything else
// as a transient store failure.
func (s *Service) storeError(message string, err error) error {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	return internal.NewUnavailableError(message, err)
}
