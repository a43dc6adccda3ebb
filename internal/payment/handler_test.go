package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saswatsusmoy/aarogyaai-backend/internal"
	paymentmodel "github.com/saswatsusmoy/aarogyaai-backend/internal/core/datamodel/payment"
	paymentpkg "github.com/saswatsusmoy/aarogyaai-backend/internal/payment"
)

type mockService struct {
	createResponse   *paymentpkg.CreatePaymentResponse
	createError      error
	verifyStatus     string
	verifyError      error
	completeResponse *paymentpkg.CompletePaymentResponse
	completeError    error

	completeReference *string
}

func (m *mockService) Create(_ context.Context, dto *paymentpkg.CreatePaymentDTO) (*paymentpkg.CreatePaymentResponse, error) {
	if m.createError != nil {
		return nil, m.createError
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return m.createResponse, nil
}

func (m *mockService) Verify(_ context.Context, transactionID string) (string, error) {
	if m.verifyError != nil {
		return "", m.verifyError
	}
	return m.verifyStatus, nil
}

func (m *mockService) Complete(_ context.Context, transactionID string, settlementReference *string) (*paymentpkg.CompletePaymentResponse, error) {
	m.completeReference = settlementReference
	if m.completeError != nil {
		return nil, m.completeError
	}
	return m.completeResponse, nil
}

type mockReporter struct {
	payments   []*paymentpkg.PaymentWithLogs
	statistics *paymentpkg.Statistics
	view       *paymentpkg.AppointmentPaymentView
	logs       []*paymentmodel.PaymentLog
	err        error
}

func (m *mockReporter) ListByDoctor(_ context.Context, doctorID string, limit int) ([]*paymentpkg.PaymentWithLogs, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.payments, nil
}

func (m *mockReporter) Statistics(_ context.Context, doctorID string) (*paymentpkg.Statistics, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.statistics, nil
}

func (m *mockReporter) AppointmentWithPayment(_ context.Context, appointmentID string) (*paymentpkg.AppointmentPaymentView, []*paymentmodel.PaymentLog, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.view, m.logs, nil
}

func requestWithParams(method, target string, body []byte, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var _ = Describe("PaymentHandler", func() {
	var (
		service  *mockService
		reporter *mockReporter
		handler  *paymentpkg.Handler
		recorder *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		service = &mockService{}
		reporter = &mockReporter{}
		logger := testLogger()
		handler = paymentpkg.NewHandler(service, reporter, logger)
		recorder = httptest.NewRecorder()
	})

	Describe("CreatePayment", func() {
		It("should create a payment and return 201", func() {
			service.createResponse = &paymentpkg.CreatePaymentResponse{
				Success:       true,
				TransactionID: "TXN_1_AAAAAAAA",
				PaymentURL:    "upi://pay?pa=saswatsusmoy@upi",
				QRCode:        "upi://pay?pa=saswatsusmoy@upi",
			}
			body, _ := json.Marshal(map[string]interface{}{
				"appointment_id": "appt-1",
				"patient_id":     "patient-1",
				"doctor_id":      "doctor-1",
				"amount":         500.0,
			})
			req := requestWithParams("POST", "/api/v1/payments", body, nil)

			handler.CreatePayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusCreated))
			var response map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response["success"]).To(BeTrue())
			Expect(response["transaction_id"]).To(Equal("TXN_1_AAAAAAAA"))
		})

		It("should return bad request for invalid JSON", func() {
			req := requestWithParams("POST", "/api/v1/payments", []byte("not json"), nil)

			handler.CreatePayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return validation error for a missing amount", func() {
			body, _ := json.Marshal(map[string]interface{}{
				"appointment_id": "appt-1",
				"patient_id":     "patient-1",
				"doctor_id":      "doctor-1",
			})
			req := requestWithParams("POST", "/api/v1/payments", body, nil)

			handler.CreatePayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("should map an unconfigured store to 503", func() {
			service.createError = internal.ErrStoreUnconfigured
			body, _ := json.Marshal(map[string]interface{}{
				"appointment_id": "appt-1",
				"patient_id":     "patient-1",
				"doctor_id":      "doctor-1",
				"amount":         500.0,
			})
			req := requestWithParams("POST", "/api/v1/payments", body, nil)

			handler.CreatePayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
			var response map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			errBody := response["error"].(map[string]interface{})
			Expect(errBody["code"]).To(Equal("STORE_UNCONFIGURED"))
		})
	})

	Describe("VerifyPayment", func() {
		It("should report a completed payment as success", func() {
			service.verifyStatus = paymentpkg.StatusCompleted
			req := requestWithParams("GET", "/api/v1/payments/TXN_1_AAAAAAAA/verify", nil,
				map[string]string{"transactionID": "TXN_1_AAAAAAAA"})

			handler.VerifyPayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var response paymentpkg.VerifyPaymentResponse
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Success).To(BeTrue())
			Expect(response.Status).To(Equal(paymentpkg.StatusCompleted))
		})

		It("should report a processing payment as a successful check", func() {
			service.verifyStatus = paymentpkg.StatusProcessing
			req := requestWithParams("GET", "/api/v1/payments/TXN_1_AAAAAAAA/verify", nil,
				map[string]string{"transactionID": "TXN_1_AAAAAAAA"})

			handler.VerifyPayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var response paymentpkg.VerifyPaymentResponse
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Success).To(BeTrue())
			Expect(response.Status).To(Equal(paymentpkg.StatusProcessing))
		})

		It("should report a failed payment with success false", func() {
			service.verifyStatus = paymentpkg.StatusFailed
			req := requestWithParams("GET", "/api/v1/payments/TXN_1_AAAAAAAA/verify", nil,
				map[string]string{"transactionID": "TXN_1_AAAAAAAA"})

			handler.VerifyPayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var response paymentpkg.VerifyPaymentResponse
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Success).To(BeFalse())
			Expect(response.Status).To(Equal(paymentpkg.StatusFailed))
		})

		It("should map an unknown transaction to 404", func() {
			service.verifyError = internal.ErrPaymentNotFound
			req := requestWithParams("GET", "/api/v1/payments/TXN_0_DEADBEEF/verify", nil,
				map[string]string{"transactionID": "TXN_0_DEADBEEF"})

			handler.VerifyPayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("CompletePayment", func() {
		It("should complete a payment", func() {
			service.completeResponse = &paymentpkg.CompletePaymentResponse{
				Success: true,
				Status:  paymentpkg.StatusCompleted,
				Message: "Payment completed successfully",
			}
			req := requestWithParams("POST", "/api/v1/payments/TXN_1_AAAAAAAA/complete", nil,
				map[string]string{"transactionID": "TXN_1_AAAAAAAA"})

			handler.CompletePayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(service.completeReference).To(BeNil())
		})

		It("should forward the settlement reference", func() {
			service.completeResponse = &paymentpkg.CompletePaymentResponse{
				Success: true,
				Status:  paymentpkg.StatusCompleted,
			}
			body, _ := json.Marshal(map[string]interface{}{
				"settlement_reference": "UPI-REF-12345",
			})
			req := requestWithParams("POST", "/api/v1/payments/TXN_1_AAAAAAAA/complete", body,
				map[string]string{"transactionID": "TXN_1_AAAAAAAA"})

			handler.CompletePayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(service.completeReference).NotTo(BeNil())
			Expect(*service.completeReference).To(Equal("UPI-REF-12345"))
		})

		It("should map a FAILED payment to 409", func() {
			service.completeError = internal.ErrPaymentAlreadyFailed
			req := requestWithParams("POST", "/api/v1/payments/TXN_1_AAAAAAAA/complete", nil,
				map[string]string{"transactionID": "TXN_1_AAAAAAAA"})

			handler.CompletePayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("DoctorPayments", func() {
		It("should list payments for a doctor", func() {
			reporter.payments = []*paymentpkg.PaymentWithLogs{{}}
			req := requestWithParams("GET", "/api/v1/doctors/doctor-1/payments", nil,
				map[string]string{"doctorID": "doctor-1"})

			handler.DoctorPayments(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var response map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response["success"]).To(BeTrue())
			Expect(response["payments"]).To(HaveLen(1))
		})

		It("should reject a non-numeric limit", func() {
			req := requestWithParams("GET", "/api/v1/doctors/doctor-1/payments?limit=abc", nil,
				map[string]string{"doctorID": "doctor-1"})

			handler.DoctorPayments(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a negative limit", func() {
			req := requestWithParams("GET", "/api/v1/doctors/doctor-1/payments?limit=-1", nil,
				map[string]string{"doctorID": "doctor-1"})

			handler.DoctorPayments(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DoctorPaymentStatistics", func() {
		It("should return the aggregated statistics", func() {
			reporter.statistics = &paymentpkg.Statistics{
				TotalPayments:      3,
				TotalAmount:        1500,
				SuccessfulPayments: 1,
				FailedPayments:     1,
				AverageAmount:      500,
			}
			req := requestWithParams("GET", "/api/v1/doctors/doctor-1/payments/statistics", nil,
				map[string]string{"doctorID": "doctor-1"})

			handler.DoctorPaymentStatistics(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var response map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			stats := response["statistics"].(map[string]interface{})
			Expect(stats["total_payments"]).To(Equal(3.0))
			Expect(stats["average_amount"]).To(Equal(500.0))
		})
	})

	Describe("AppointmentPayment", func() {
		It("should return the appointment with its payment and logs", func() {
			reporter.view = &paymentpkg.AppointmentPaymentView{
				PatientUsername: "anita_rao",
				DoctorUsername:  "dr_mehta",
			}
			reporter.logs = []*paymentmodel.PaymentLog{{ID: "log-1"}}
			req := requestWithParams("GET", "/api/v1/appointments/appt-1/payment", nil,
				map[string]string{"appointmentID": "appt-1"})

			handler.AppointmentPayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			var response map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response["success"]).To(BeTrue())
			Expect(response["logs"]).To(HaveLen(1))
		})

		It("should map an unknown appointment to 404", func() {
			reporter.err = internal.ErrAppointmentNotFound
			req := requestWithParams("GET", "/api/v1/appointments/appt-unknown/payment", nil,
				map[string]string{"appointmentID": "appt-unknown"})

			handler.AppointmentPayment(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})
})
