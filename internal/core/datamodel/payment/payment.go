package payment

import (
	"encoding/json"
	"time"
)

// Payment is the ledger of record: one row per payment intent. Rows are
// created once, advanced through the status machine by the lifecycle
// service, and never deleted.
type Payment struct {
	ID              string          `json:"id" gorm:"primaryKey;column:id"`
	AppointmentID   string          `json:"appointment_id" gorm:"column:appointment_id;not null"`
	PatientID       string          `json:"patient_id" gorm:"column:patient_id;not null"`
	DoctorID        string          `json:"doctor_id" gorm:"column:doctor_id;not null"`
	Amount          float64         `json:"amount" gorm:"column:amount;not null"`
	Currency        string          `json:"currency" gorm:"column:currency;default:INR"`
	Status          string          `json:"status" gorm:"column:status;default:PENDING"`
	Method          string          `json:"method" gorm:"column:method;default:UPI"`
	TransactionID   string          `json:"transaction_id" gorm:"column:transaction_id;not null;uniqueIndex"`
	UPIID           *string         `json:"upi_id,omitempty" gorm:"column:upi_id"`
	GatewayResponse json.RawMessage `json:"gateway_response,omitempty" gorm:"column:gateway_response;type:jsonb"`
	PaidAt          *time.Time      `json:"paid_at,omitempty" gorm:"column:paid_at"`
	CreatedAt       time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Payment) TableName() string {
	return "payments"
}

// PaymentLog is the append-only audit trail: one row per observed state
// transition of a payment. Rows are immutable once written.
type PaymentLog struct {
	ID        string          `json:"id" gorm:"primaryKey;column:id"`
	PaymentID string          `json:"payment_id" gorm:"column:payment_id;not null;index"`
	Action    string          `json:"action" gorm:"column:action;not null"`
	Status    string          `json:"status" gorm:"column:status;not null"`
	Amount    *float64        `json:"amount,omitempty" gorm:"column:amount"`
	Metadata  json.RawMessage `json:"metadata,omitempty" gorm:"column:metadata;type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (PaymentLog) TableName() string {
	return "payment_logs"
}
