// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	adminController "helmetkiosk_backend/internals/features/admin/controller"
	paymentController "helmetkiosk_backend/internals/features/payments/controller"
	paymentService "helmetkiosk_backend/internals/features/payments/service"
	ratingController "helmetkiosk_backend/internals/features/sanitization/controller"
	statsController "helmetkiosk_backend/internals/features/stats/controller"
	statsService "helmetkiosk_backend/internals/features/stats/service"
	"helmetkiosk_backend/internals/middlewares"
)

var startTime time.Time

// SanitizerMode diisi main saat boot ("gpio" / "simulation"), dibaca /health.
var SanitizerMode = "simulation"

func SetupRoutes(
	app *fiber.App,
	db *gorm.DB,
	machine *paymentService.StateMachine,
	store paymentService.PaymentStore,
	stats *statsService.StatsService,
) {
	startTime = time.Now()

	payments := paymentController.NewPaymentController(db, machine, store)
	paymentsAdmin := paymentController.NewPaymentAdminController(db, machine)
	ratings := ratingController.NewRatingController(db, stats)
	statsAdmin := statsController.NewStatsAdminController(db, stats)
	adminAuth := adminController.NewAdminAuthController()

	// ===================== BASE =====================
	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	// ===================== WEBHOOK (tanpa rate limit) =====================
	log.Println("[INFO] Setting up webhook routes...")
	app.Post("/webhooks/paymongo", payments.Webhook)

	// ===================== KIOSK API =====================
	log.Println("[INFO] Setting up kiosk API group...")
	api := app.Group("/api", middlewares.GlobalRateLimiter())

	api.Post("/payments/qrph", payments.CreateQRPayment)
	api.Post("/payments/cash", payments.SimulateCash)
	api.Post("/payments/solana", payments.CreateSolanaPayment)
	api.Post("/payments/solana/confirm", payments.ConfirmSolanaPayment)
	api.Get("/payments/:reference", payments.CheckPayment)

	api.Post("/ratings", ratings.SubmitRating)

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group...")
	api.Post("/admin/login", middlewares.LoginRateLimiter(), adminAuth.Login)
	api.Post("/admin/logout", adminAuth.Logout)

	admin := api.Group("/admin", middlewares.AdminOnly())
	admin.Get("/payments", paymentsAdmin.ListPayments)
	admin.Post("/payments/:reference/mark-paid", paymentsAdmin.ForceMarkPaid)
	admin.Get("/gateway-events", paymentsAdmin.ListGatewayEvents)
	admin.Get("/dashboard", statsAdmin.Dashboard)
	admin.Get("/analytics", statsAdmin.Analytics)
}
