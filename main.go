package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"

	"helmetkiosk_backend/internals/configs"
	database "helmetkiosk_backend/internals/databases"
	paymentService "helmetkiosk_backend/internals/features/payments/service"
	statsService "helmetkiosk_backend/internals/features/stats/service"
	"helmetkiosk_backend/internals/hardware"
	middlewares "helmetkiosk_backend/internals/middlewares"
	routes "helmetkiosk_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	sanitizeDuration := configs.SanitizeDuration()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + timing (observability ringan)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// guard timeout HTTP; harus lebih lama dari satu siklus sanitasi
		// karena jalur paid menahan response sampai hardware selesai
		ctx, cancel := context.WithTimeout(c.Context(), sanitizeDuration+15*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrate + warm-up
	database.ConnectDB()
	database.TunePool()
	database.Migrate()
	database.WarmUpQueries()

	// ✅ PayMongo
	paymentService.InitPayMongo(configs.PayMongoSecretKey)

	// 🧼 hardware sanitizer: GPIO kalau ada, simulasi kalau tidak
	sanitizer := hardware.Detect(configs.SanitizerGPIOPin())
	if _, ok := sanitizer.(*hardware.GPIOSanitizer); ok {
		routes.SanitizerMode = "gpio"
	}
	exclusive := hardware.NewExclusive(sanitizer)

	// wiring inti: store → state machine → routes
	paymentStore := paymentService.NewGormPaymentStore(database.DB)
	sessionStore := paymentService.NewGormSessionStore(database.DB)
	stats := statsService.NewStatsService(database.DB)
	machine := paymentService.NewStateMachine(paymentStore, sessionStore, exclusive, stats, sanitizeDuration)

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, machine, paymentStore, stats)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = sanitizeDuration + 20*time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	// beri waktu siklus sanitasi yang sedang jalan untuk selesai
	ctx, cancel := context.WithTimeout(context.Background(), sanitizeDuration+5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
