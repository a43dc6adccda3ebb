package payment

import (
	errors "github.com/saswatsusmoy/aarogyaai-backend/internal"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/core/common/validation"
)

// CreatePaymentDTO is the request payload for creating a payment intent.
type CreatePaymentDTO struct {
	AppointmentID string  `json:"appointment_id" validate:"required"`
	PatientID     string  `json:"patient_id" validate:"required"`
	DoctorID      string  `json:"doctor_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Method        string  `json:"method,omitempty"`
	UPIID         *string `json:"upi_id,omitempty"`
}

func (dto *CreatePaymentDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("appointment_id", dto.AppointmentID).Required()
	validator.Field("patient_id", dto.PatientID).Required()
	validator.Field("doctor_id", dto.DoctorID).Required()
	validator.Field("amount", dto.Amount).Required().Positive(errors.ErrCodeInvalidAmount)
	validator.Field("method", dto.Method).OneOf([]string{MethodUPI}, errors.ErrCodeValidationFailed)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// CreatePaymentResponse carries the artifacts the payer needs to pay.
type CreatePaymentResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	PaymentURL    string `json:"payment_url"`
	QRCode        string `json:"qr_code,omitempty"`
}

type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// CompletePaymentRequest optionally carries the settlement network's own
// reference; when present it replaces the locally-generated transaction id.
type CompletePaymentRequest struct {
	SettlementReference *string `json:"settlement_reference,omitempty"`
}

type CompletePaymentResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
