// file: internals/features/stats/model/daily_stat_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/*
  daily_stats = rollup turunan, BUKAN source of truth.
  Di-recompute penuh per tanggal (replace-on-conflict), bukan counter berjalan.
*/

type DailyStatModel struct {
	DailyStatID uuid.UUID `json:"daily_stat_id" gorm:"column:daily_stat_id;type:uuid;default:gen_random_uuid();primaryKey"`

	DailyStatDate time.Time `json:"daily_stat_date" gorm:"column:daily_stat_date;type:date;not null;uniqueIndex"`

	TotalPayments           int64   `json:"total_payments" gorm:"column:total_payments;not null;default:0"`
	TotalRevenueCentavos    int64   `json:"total_revenue_centavos" gorm:"column:total_revenue_centavos;not null;default:0"`
	SuccessfulSanitizations int64   `json:"successful_sanitizations" gorm:"column:successful_sanitizations;not null;default:0"`
	AverageRating           float64 `json:"average_rating" gorm:"column:average_rating;not null;default:0"`

	QRPHPayments   int64 `json:"qrph_payments" gorm:"column:qrph_payments;not null;default:0"`
	SolanaPayments int64 `json:"solana_payments" gorm:"column:solana_payments;not null;default:0"`
	CashPayments   int64 `json:"cash_payments" gorm:"column:cash_payments;not null;default:0"`
}

func (DailyStatModel) TableName() string { return "daily_stats" }
