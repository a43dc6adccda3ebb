package payment_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saswatsusmoy/aarogyaai-backend/internal"
	appointmentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/appointment"
	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
	paymentpkg "github.com/saswatsusmoy/aarogyaai-backend/internal/payment"
)

var _ = Describe("Reporter", func() {
	var (
		repo     *mockPaymentRepository
		reporter *paymentpkg.Reporter
		ctx      context.Context
		base     time.Time
	)

	addPayment := func(id, txn, appointmentID, status string, amount float64, createdAt time.Time) *paymentmodel.Payment {
		p := &paymentmodel.Payment{
			ID:            id,
			AppointmentID: appointmentID,
			PatientID:     "patient-1",
			DoctorID:      "doctor-1",
			Amount:        amount,
			Currency:      "INR",
			Status:        status,
			Method:        paymentpkg.MethodUPI,
			TransactionID: txn,
			CreatedAt:     createdAt,
		}
		repo.payments[id] = p
		repo.byTxn[txn] = id
		return p
	}

	BeforeEach(func() {
		repo = newMockPaymentRepository()
		reporter = paymentpkg.NewReporter(repo, testLogger())
		ctx = context.Background()
		base = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

		repo.usernames["patient-1"] = "anita_rao"
		repo.usernames["doctor-1"] = "dr_mehta"

		repo.appointments["appt-1"] = &appointmentmodel.Appointment{
			ID:          "appt-1",
			PatientID:   "patient-1",
			DoctorID:    "doctor-1",
			ScheduledAt: base.Add(48 * time.Hour),
			Reason:      "General consultation",
			Status:      appointmentmodel.StatusPending,
		}
		repo.appointments["appt-2"] = &appointmentmodel.Appointment{
			ID:        "appt-2",
			PatientID: "patient-1",
			DoctorID:  "doctor-1",
			Status:    appointmentmodel.StatusDeclined,
		}
	})

	Describe("ListByDoctor", func() {
		BeforeEach(func() {
			p1 := addPayment("pay-1", "TXN_1_AAAAAAAA", "appt-1", paymentpkg.StatusCompleted, 500, base)
			addPayment("pay-2", "TXN_2_BBBBBBBB", "appt-1", paymentpkg.StatusProcessing, 750, base.Add(time.Minute))
			addPayment("pay-3", "TXN_3_CCCCCCCC", "appt-2", paymentpkg.StatusProcessing, 300, base.Add(2*time.Minute))

			repo.logs[p1.ID] = []*paymentmodel.PaymentLog{
				{ID: "log-1", PaymentID: p1.ID, Action: paymentpkg.ActionCreated, Status: paymentpkg.StatusPending, CreatedAt: base},
				{ID: "log-2", PaymentID: p1.ID, Action: paymentpkg.ActionInitiated, Status: paymentpkg.StatusProcessing, CreatedAt: base},
			}
		})

		It("should reject an empty doctor id", func() {
			_, err := reporter.ListByDoctor(ctx, "", 10)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should exclude payments whose appointment was declined", func() {
			result, err := reporter.ListByDoctor(ctx, "doctor-1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(2))
			for _, entry := range result {
				Expect(entry.Payment.AppointmentID).NotTo(Equal("appt-2"))
			}
		})

		It("should order newest first", func() {
			result, err := reporter.ListByDoctor(ctx, "doctor-1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(result[0].Payment.ID).To(Equal("pay-2"))
			Expect(result[1].Payment.ID).To(Equal("pay-1"))
		})

		It("should attach the audit trail to each payment", func() {
			result, err := reporter.ListByDoctor(ctx, "doctor-1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(result[1].Logs).To(HaveLen(2))
			Expect(result[1].Logs[0].Action).To(Equal(paymentpkg.ActionCreated))
		})

		It("should apply the default limit when none was given", func() {
			result, err := reporter.ListByDoctor(ctx, "doctor-1", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(2))
		})

		It("should honor an explicit limit", func() {
			result, err := reporter.ListByDoctor(ctx, "doctor-1", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(1))
			Expect(result[0].Payment.ID).To(Equal("pay-2"))
		})

		It("should classify a store failure as unavailable", func() {
			repo.listError = errors.New("connection reset")
			_, err := reporter.ListByDoctor(ctx, "doctor-1", 10)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeUnavailable))
		})
	})

	Describe("Statistics", func() {
		BeforeEach(func() {
			addPayment("pay-1", "TXN_1_AAAAAAAA", "appt-1", paymentpkg.StatusCompleted, 500, base)
			addPayment("pay-2", "TXN_2_BBBBBBBB", "appt-1", paymentpkg.StatusFailed, 750, base.Add(time.Minute))
			addPayment("pay-3", "TXN_3_CCCCCCCC", "appt-1", paymentpkg.StatusProcessing, 250, base.Add(2*time.Minute))
			addPayment("pay-4", "TXN_4_DDDDDDDD", "appt-2", paymentpkg.StatusCompleted, 900, base.Add(3*time.Minute))
		})

		It("should reject an empty doctor id", func() {
			_, err := reporter.Statistics(ctx, "")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should count every payment but sum only completed amounts", func() {
			stats, err := reporter.Statistics(ctx, "doctor-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalPayments).To(Equal(int64(3)))
			Expect(stats.TotalAmount).To(Equal(500.0))
			Expect(stats.SuccessfulPayments).To(Equal(int64(1)))
			Expect(stats.FailedPayments).To(Equal(int64(1)))
			Expect(stats.AverageAmount).To(Equal(500.0))
		})

		It("should return all-zero statistics for an unknown doctor", func() {
			stats, err := reporter.Statistics(ctx, "doctor-unknown")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalPayments).To(Equal(int64(0)))
			Expect(stats.TotalAmount).To(Equal(0.0))
			Expect(stats.AverageAmount).To(Equal(0.0))
		})
	})

	Describe("AppointmentWithPayment", func() {
		It("should reject an empty appointment id", func() {
			_, _, err := reporter.AppointmentWithPayment(ctx, "")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should report not found for an unknown appointment", func() {
			_, _, err := reporter.AppointmentWithPayment(ctx, "appt-unknown")
			Expect(err).To(Equal(internal.ErrAppointmentNotFound))
		})

		It("should return the appointment without payment when none exists", func() {
			view, logs, err := reporter.AppointmentWithPayment(ctx, "appt-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Appointment.ID).To(Equal("appt-1"))
			Expect(view.PatientUsername).To(Equal("anita_rao"))
			Expect(view.DoctorUsername).To(Equal("dr_mehta"))
			Expect(view.Payment).To(BeNil())
			Expect(logs).To(BeEmpty())
		})

		It("should return the latest payment with its audit trail", func() {
			addPayment("pay-1", "TXN_1_AAAAAAAA", "appt-1", paymentpkg.StatusFailed, 500, base)
			p2 := addPayment("pay-2", "TXN_2_BBBBBBBB", "appt-1", paymentpkg.StatusCompleted, 500, base.Add(time.Hour))
			repo.logs[p2.ID] = []*paymentmodel.PaymentLog{
				{ID: "log-1", PaymentID: p2.ID, Action: paymentpkg.ActionCreated, Status: paymentpkg.StatusPending, CreatedAt: base},
			}

			view, logs, err := reporter.AppointmentWithPayment(ctx, "appt-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Payment).NotTo(BeNil())
			Expect(view.Payment.ID).To(Equal("pay-2"))
			Expect(logs).To(HaveLen(1))
		})
	})
})
