package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentInitiated = "payment.initiated"
	EventTypePaymentCompleted = "payment.completed"
	EventTypePaymentFailed    = "payment.failed"
)

type PaymentInitiatedEvent struct {
	BaseEvent
	PaymentID      string  `json:"payment_id"`
	AppointmentID  string  `json:"appointment_id"`
	TransactionID  string  `json:"transaction_id"`
	Amount         float64 `json:"amount"`
	InstructionURI string  `json:"instruction_uri"`
}

func NewPaymentInitiatedEvent(paymentID, appointmentID, transactionID string, amount float64, instructionURI string) *PaymentInitiatedEvent {
	return &PaymentInitiatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentInitiated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":      paymentID,
				"appointment_id":  appointmentID,
				"transaction_id":  transactionID,
				"amount":          amount,
				"instruction_uri": instructionURI,
			},
		},
		PaymentID:      paymentID,
		AppointmentID:  appointmentID,
		TransactionID:  transactionID,
		Amount:         amount,
		InstructionURI: instructionURI,
	}
}

type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID           string  `json:"payment_id"`
	AppointmentID       string  `json:"appointment_id"`
	TransactionID       string  `json:"transaction_id"`
	SettlementReference string  `json:"settlement_reference,omitempty"`
	Amount              float64 `json:"amount"`
}

func NewPaymentCompletedEvent(paymentID, appointmentID, transactionID, settlementReference string, amount float64) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":           paymentID,
				"appointment_id":       appointmentID,
				"transaction_id":       transactionID,
				"settlement_reference": settlementReference,
				"amount":               amount,
			},
		},
		PaymentID:           paymentID,
		AppointmentID:       appointmentID,
		TransactionID:       transactionID,
		SettlementReference: settlementReference,
		Amount:              amount,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	PaymentID     string  `json:"payment_id"`
	AppointmentID string  `json:"appointment_id"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason"`
}

func NewPaymentFailedEvent(paymentID, appointmentID, transactionID string, amount float64, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"appointment_id": appointmentID,
				"transaction_id": transactionID,
				"amount":         amount,
				"reason":         reason,
			},
		},
		PaymentID:     paymentID,
		AppointmentID: appointmentID,
		TransactionID: transactionID,
		Amount:        amount,
		Reason:        reason,
	}
}
