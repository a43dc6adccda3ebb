package payment

import (
	"context"
	"time"

	internal "github.com/saswatsusmoy/aarogyaai-backend/internal"
	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
)

// UnconfiguredRepository stands in when no database source was provided.
// Every call fails with an explicit STORE_UNCONFIGURED error so deployments
// missing a store are visible at the API surface instead of answering with
// empty results.
type UnconfiguredRepository struct{}

func NewUnconfiguredRepository() RepositoryAPI {
	return UnconfiguredRepository{}
}

func (UnconfiguredRepository) CreateInitiated(context.Context, *paymentmodel.Payment, string, []byte, *paymentmodel.PaymentLog, *paymentmodel.PaymentLog) error {
	return internal.ErrStoreUnconfigured
}

func (UnconfiguredRepository) GetByTransactionID(context.Context, string) (*paymentmodel.Payment, error) {
	return nil, internal.ErrStoreUnconfigured
}

func (UnconfiguredRepository) Complete(context.Context, string, *string, time.Time) (*CompleteOutcome, error) {
	return nil, internal.ErrStoreUnconfigured
}

func (UnconfiguredRepository) ListByDoctor(context.Context, string, int) ([]*DoctorPaymentView, error) {
	return nil, internal.ErrStoreUnconfigured
}

func (UnconfiguredRepository) LogsForPayment(context.Context, string) ([]*paymentmodel.PaymentLog, error) {
	return nil, internal.ErrStoreUnconfigured
}

func (UnconfiguredRepository) Statistics(context.Context, string) (*Statistics, error) {
	return nil, internal.ErrStoreUnconfigured
}

func (UnconfiguredRepository) AppointmentWithPayment(context.Context, string) (*AppointmentPaymentView, error) {
	return nil, internal.ErrStoreUnconfigured
}

func (UnconfiguredRepository) ListProcessingBefore(context.Context, time.Time, int) ([]*paymentmodel.Payment, error) {
	return nil, internal.ErrStoreUnconfigured
}
