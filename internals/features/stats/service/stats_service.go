// file: internals/features/stats/service/stats_service.go
package service

import (
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	paymentModel "helmetkiosk_backend/internals/features/payments/model"
	sanitizationModel "helmetkiosk_backend/internals/features/sanitization/model"
	"helmetkiosk_backend/internals/features/stats/model"
)

/* =======================================================================
   daily_stats aggregator
   Recompute PENUH per tanggal dari tabel sumber, lalu replace-on-conflict.
   Idempotent: refresh dua kali tanpa data baru = baris yang sama.
======================================================================= */

type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// computeDailyStat merangkum baris-baris sumber satu hari jadi satu rollup.
// Dipisah dari query supaya bisa diuji tanpa DB.
func computeDailyStat(date time.Time, paid []paymentModel.PaymentModel, completedSessions int64, scores []int) model.DailyStatModel {
	stat := model.DailyStatModel{
		DailyStatDate:           truncateToDay(date),
		SuccessfulSanitizations: completedSessions,
	}

	for _, p := range paid {
		stat.TotalPayments++
		stat.TotalRevenueCentavos += p.PaymentAmountCentavos
		switch p.PaymentMethod {
		case paymentModel.PaymentMethodQRPH:
			stat.QRPHPayments++
		case paymentModel.PaymentMethodSolana:
			stat.SolanaPayments++
		case paymentModel.PaymentMethodCash:
			stat.CashPayments++
		}
	}

	if len(scores) > 0 {
		var sum int
		for _, s := range scores {
			sum += s
		}
		stat.AverageRating = float64(sum) / float64(len(scores))
	}

	return stat
}

// Refresh menghitung ulang rollup untuk tanggal tertentu lalu upsert.
func (s *StatsService) Refresh(date time.Time) (*model.DailyStatModel, error) {
	dayStart := truncateToDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var paid []paymentModel.PaymentModel
	if err := paidPaymentsOfDay(s.DB, dayStart, dayEnd).Find(&paid).Error; err != nil {
		return nil, err
	}

	var completedSessions int64
	if err := completedSessionsOfDay(s.DB, dayStart, dayEnd).Count(&completedSessions).Error; err != nil {
		return nil, err
	}

	var scores []int
	if err := s.DB.Model(&sanitizationModel.RatingModel{}).
		Where("rating_created_at >= ? AND rating_created_at < ?", dayStart, dayEnd).
		Pluck("rating_score", &scores).Error; err != nil {
		return nil, err
	}

	stat := computeDailyStat(dayStart, paid, completedSessions, scores)

	// replace-on-conflict di daily_stat_date: recompute menang atas baris lama
	if err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "daily_stat_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_payments",
			"total_revenue_centavos",
			"successful_sanitizations",
			"average_rating",
			"qrph_payments",
			"solana_payments",
			"cash_payments",
		}),
	}).Create(&stat).Error; err != nil {
		return nil, err
	}

	log.Printf("📊 [STATS] refreshed %s: payments=%d revenue=%d",
		dayStart.Format("2006-01-02"), stat.TotalPayments, stat.TotalRevenueCentavos)
	return &stat, nil
}

// RefreshDay = Refresh tanpa hasil, untuk caller yang cuma butuh side effect.
func (s *StatsService) RefreshDay(date time.Time) error {
	_, err := s.Refresh(date)
	return err
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

/* =======================================================================
   Day-window queries
   Basis tanggal = created_at/started_at, BUKAN paid_at/completed_at:
   payment yang dibuat 23:59 dan paid 00:01 tetap milik hari pembuatannya.
======================================================================= */

func paidPaymentsOfDay(db *gorm.DB, dayStart, dayEnd time.Time) *gorm.DB {
	return db.Model(&paymentModel.PaymentModel{}).
		Where("payment_status = ? AND payment_created_at >= ? AND payment_created_at < ?",
			paymentModel.PaymentStatusPaid, dayStart, dayEnd)
}

func completedSessionsOfDay(db *gorm.DB, dayStart, dayEnd time.Time) *gorm.DB {
	return db.Model(&sanitizationModel.SanitizationSessionModel{}).
		Where("session_completed_at IS NOT NULL AND session_started_at >= ? AND session_started_at < ?",
			dayStart, dayEnd)
}
