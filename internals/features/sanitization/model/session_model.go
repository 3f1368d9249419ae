// file: internals/features/sanitization/model/session_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* ================================
   MODEL: sanitization_sessions
   - dibuat HANYA setelah payment PAID
   - maksimal satu sesi aktif (completed_at NULL) per payment
================================ */

type SanitizationSessionModel struct {
	SessionID uuid.UUID `json:"session_id" gorm:"column:session_id;type:uuid;default:gen_random_uuid();primaryKey"`

	SessionPaymentID uuid.UUID `json:"session_payment_id" gorm:"column:session_payment_id;type:uuid;not null;index"`

	SessionStartedAt       time.Time  `json:"session_started_at" gorm:"column:session_started_at;not null;autoCreateTime"`
	SessionCompletedAt     *time.Time `json:"session_completed_at" gorm:"column:session_completed_at"`
	SessionDurationSeconds int        `json:"session_duration_seconds" gorm:"column:session_duration_seconds;not null;default:10"`
}

func (SanitizationSessionModel) TableName() string { return "sanitization_sessions" }
