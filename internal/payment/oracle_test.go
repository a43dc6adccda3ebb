package payment_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
	paymentpkg "github.com/saswatsusmoy/aarogyaai-backend/internal/payment"
)

var _ = Describe("AgingOracle", func() {
	var (
		oracle *paymentpkg.AgingOracle
		now    time.Time
	)

	BeforeEach(func() {
		now = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		oracle = paymentpkg.NewAgingOracle(5 * time.Second)
		oracle.Now = func() time.Time { return now }
	})

	It("should not settle a freshly created PROCESSING payment", func() {
		p := &paymentmodel.Payment{
			Status:    paymentpkg.StatusProcessing,
			CreatedAt: now.Add(-2 * time.Second),
		}
		settled, err := oracle.Settled(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())
		Expect(settled).To(BeFalse())
	})

	It("should settle a PROCESSING payment older than the threshold", func() {
		p := &paymentmodel.Payment{
			Status:    paymentpkg.StatusProcessing,
			CreatedAt: now.Add(-6 * time.Second),
		}
		settled, err := oracle.Settled(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())
		Expect(settled).To(BeTrue())
	})

	It("should not settle a payment exactly at the threshold", func() {
		p := &paymentmodel.Payment{
			Status:    paymentpkg.StatusProcessing,
			CreatedAt: now.Add(-5 * time.Second),
		}
		settled, err := oracle.Settled(context.Background(), p)
		Expect(err).NotTo(HaveOccurred())
		Expect(settled).To(BeFalse())
	})

	It("should never settle a non-PROCESSING payment", func() {
		for _, status := range []string{paymentpkg.StatusPending, paymentpkg.StatusCompleted, paymentpkg.StatusFailed} {
			p := &paymentmodel.Payment{
				Status:    status,
				CreatedAt: now.Add(-time.Hour),
			}
			settled, err := oracle.Settled(context.Background(), p)
			Expect(err).NotTo(HaveOccurred())
			Expect(settled).To(BeFalse())
		}
	})
})
