// file: internals/features/stats/controller/stats_admin_controller.go
package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	paymentModel "helmetkiosk_backend/internals/features/payments/model"
	sanitizationModel "helmetkiosk_backend/internals/features/sanitization/model"
	"helmetkiosk_backend/internals/features/stats/model"
	"helmetkiosk_backend/internals/features/stats/service"
	helper "helmetkiosk_backend/internals/helpers"
)

type StatsAdminController struct {
	DB    *gorm.DB
	Stats *service.StatsService
}

func NewStatsAdminController(db *gorm.DB, stats *service.StatsService) *StatsAdminController {
	return &StatsAdminController{DB: db, Stats: stats}
}

/* =======================================================================
   GET /api/admin/dashboard
   Ringkasan: hari ini, 7 hari, all-time, aktivitas terbaru
======================================================================= */

func (h *StatsAdminController) Dashboard(c *fiber.Ctx) error {
	now := time.Now()

	// pastikan rollup hari ini fresh sebelum dibaca
	today, err := h.Stats.Refresh(now)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	weekStart := today.DailyStatDate.AddDate(0, 0, -6)
	var week struct {
		TotalPayments           int64
		TotalRevenueCentavos    int64
		SuccessfulSanitizations int64
	}
	if err := h.DB.Model(&model.DailyStatModel{}).
		Select("COALESCE(SUM(total_payments),0) AS total_payments, COALESCE(SUM(total_revenue_centavos),0) AS total_revenue_centavos, COALESCE(SUM(successful_sanitizations),0) AS successful_sanitizations").
		Where("daily_stat_date >= ?", weekStart).
		Scan(&week).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var allTime struct {
		TotalPayments        int64
		TotalRevenueCentavos int64
	}
	if err := h.DB.Model(&paymentModel.PaymentModel{}).
		Select("COUNT(*) AS total_payments, COALESCE(SUM(payment_amount_centavos),0) AS total_revenue_centavos").
		Where("payment_status = ?", paymentModel.PaymentStatusPaid).
		Scan(&allTime).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var totalSessions int64
	if err := h.DB.Model(&sanitizationModel.SanitizationSessionModel{}).
		Where("session_completed_at IS NOT NULL").
		Count(&totalSessions).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var recentPayments []paymentModel.PaymentModel
	if err := h.DB.Order("payment_created_at DESC").Limit(10).Find(&recentPayments).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var recentRatings []sanitizationModel.RatingModel
	if err := h.DB.Order("rating_created_at DESC").Limit(10).Find(&recentRatings).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "OK", fiber.Map{
		"today": today,
		"week": fiber.Map{
			"total_payments":           week.TotalPayments,
			"total_revenue_centavos":   week.TotalRevenueCentavos,
			"successful_sanitizations": week.SuccessfulSanitizations,
		},
		"all_time": fiber.Map{
			"total_payments":           allTime.TotalPayments,
			"total_revenue_centavos":   allTime.TotalRevenueCentavos,
			"successful_sanitizations": totalSessions,
		},
		"recent_payments": recentPayments,
		"recent_ratings":  recentRatings,
	})
}

/* =======================================================================
   GET /api/admin/analytics?days=7
   Deret harian + breakdown metode + distribusi rating & jam
======================================================================= */

func (h *StatsAdminController) Analytics(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(strings.TrimSpace(c.Query("days", "7")))
	if days < 1 {
		days = 7
	}
	if days > 90 {
		days = 90
	}

	now := time.Now()
	if _, err := h.Stats.Refresh(now); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(days - 1))

	var daily []model.DailyStatModel
	if err := h.DB.
		Where("daily_stat_date >= ?", since).
		Order("daily_stat_date ASC").
		Find(&daily).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	type methodRow struct {
		Method string
		Count  int64
		Total  int64
	}
	var methods []methodRow
	if err := h.DB.Model(&paymentModel.PaymentModel{}).
		Select("payment_method AS method, COUNT(*) AS count, COALESCE(SUM(payment_amount_centavos),0) AS total").
		Where("payment_status = ? AND payment_created_at >= ?", paymentModel.PaymentStatusPaid, since).
		Group("payment_method").
		Scan(&methods).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	type scoreRow struct {
		Score int
		Count int64
	}
	var scores []scoreRow
	if err := h.DB.Model(&sanitizationModel.RatingModel{}).
		Select("rating_score AS score, COUNT(*) AS count").
		Where("rating_created_at >= ?", since).
		Group("rating_score").
		Order("rating_score ASC").
		Scan(&scores).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	type hourRow struct {
		Hour  int
		Count int64
	}
	var hours []hourRow
	if err := h.DB.Model(&paymentModel.PaymentModel{}).
		Select("EXTRACT(HOUR FROM payment_created_at)::int AS hour, COUNT(*) AS count").
		Where("payment_status = ? AND payment_created_at >= ?", paymentModel.PaymentStatusPaid, since).
		Group("hour").
		Order("hour ASC").
		Scan(&hours).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "OK", fiber.Map{
		"days":                days,
		"daily":               daily,
		"methods":             methods,
		"rating_distribution": scores,
		"hourly_distribution": hours,
	})
}
