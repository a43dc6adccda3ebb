package internal_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saswatsusmoy/aarogyaai-backend/internal"
)

var _ = Describe("Config", func() {
	Describe("LoadConfigFromEnv", func() {
		It("should carry sane defaults", func() {
			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Server.Port).To(Equal(8080))
			Expect(cfg.Merchant.UPIID).To(Equal("saswatsusmoy@upi"))
			Expect(cfg.Merchant.Name).To(Equal("AarogyaAI"))
			Expect(cfg.Merchant.Currency).To(Equal("INR"))
			Expect(cfg.Settlement.AgingThreshold).To(Equal(5 * time.Second))
		})

		It("should honor environment overrides", func() {
			GinkgoT().Setenv("MERCHANT_UPI_ID", "clinic@icici")
			GinkgoT().Setenv("SETTLEMENT_AGING_THRESHOLD", "30s")

			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Merchant.UPIID).To(Equal("clinic@icici"))
			Expect(cfg.Settlement.AgingThreshold).To(Equal(30 * time.Second))
		})
	})

	Describe("MerchantConfig.Validate", func() {
		It("should accept a valid merchant", func() {
			m := internal.MerchantConfig{UPIID: "clinic@upi", Name: "AarogyaAI", Currency: "INR"}
			Expect(m.Validate()).To(Succeed())
		})

		It("should reject a UPI id without an @ separator", func() {
			m := internal.MerchantConfig{UPIID: "clinic", Name: "AarogyaAI"}
			Expect(m.Validate()).To(HaveOccurred())
		})

		It("should reject a missing name", func() {
			m := internal.MerchantConfig{UPIID: "clinic@upi"}
			Expect(m.Validate()).To(HaveOccurred())
		})

		It("should reject unsupported currencies", func() {
			m := internal.MerchantConfig{UPIID: "clinic@upi", Name: "AarogyaAI", Currency: "USD"}
			Expect(m.Validate()).To(HaveOccurred())
		})
	})

	Describe("SettlementConfig.Validate", func() {
		It("should require a positive aging threshold", func() {
			s := internal.SettlementConfig{AgingThreshold: 0}
			Expect(s.Validate()).To(HaveOccurred())

			s.AgingThreshold = 5 * time.Second
			Expect(s.Validate()).To(Succeed())
		})
	})

	Describe("DatabaseConfig.IsConfigured", func() {
		It("should treat a blank source as unconfigured", func() {
			Expect((&internal.DatabaseConfig{Source: ""}).IsConfigured()).To(BeFalse())
			Expect((&internal.DatabaseConfig{Source: "   "}).IsConfigured()).To(BeFalse())
			Expect((&internal.DatabaseConfig{Source: "postgres://localhost/db"}).IsConfigured()).To(BeTrue())
		})
	})
})

var _ = Describe("AppError", func() {
	It("should map each error type to its status code", func() {
		Expect(internal.ErrPaymentNotFound.StatusCode).To(Equal(404))
		Expect(internal.ErrAppointmentNotFound.StatusCode).To(Equal(404))
		Expect(internal.ErrPaymentAlreadyFailed.StatusCode).To(Equal(409))
		Expect(internal.ErrStoreUnconfigured.StatusCode).To(Equal(503))
	})

	It("should keep the status code out of the JSON body", func() {
		appErr := internal.NewValidationError("bad input", internal.ErrCodeValidationFailed)
		status, body := appErr.ToHTTPResponse()
		Expect(status).To(Equal(400))

		resp, ok := body.(internal.Response)
		Expect(ok).To(BeTrue())
		Expect(resp.Error).To(Equal(appErr))
	})

	It("should surface the first validation detail in Error()", func() {
		appErr := internal.NewValidationFieldError("amount", "amount must be positive", internal.ErrCodeInvalidAmount)
		Expect(appErr.Error()).To(Equal("amount must be positive"))
	})
})
