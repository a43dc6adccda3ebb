package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/saswatsusmoy/aarogyaai-backend/internal/payment"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/transport/middleware"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, paymentHandler *payment.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if paymentHandler != nil {
			r.Route("/payments", func(pr chi.Router) {
				pr.Post("/", paymentHandler.CreatePayment)                           // POST /payments
				pr.Get("/{transactionID}/verify", paymentHandler.VerifyPayment)      // GET /payments/:txn/verify
				pr.Post("/{transactionID}/complete", paymentHandler.CompletePayment) // POST /payments/:txn/complete
			})

			r.Route("/doctors/{doctorID}/payments", func(dr chi.Router) {
				dr.Get("/", paymentHandler.DoctorPayments)                    // GET /doctors/:id/payments
				dr.Get("/statistics", paymentHandler.DoctorPaymentStatistics) // GET /doctors/:id/payments/statistics
			})

			r.Get("/appointments/{appointmentID}/payment", paymentHandler.AppointmentPayment)
		}
	})
}
