// file: internals/features/sanitization/model/rating_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type RatingModel struct {
	RatingID uuid.UUID `json:"rating_id" gorm:"column:rating_id;type:uuid;default:gen_random_uuid();primaryKey"`

	RatingSessionID uuid.UUID `json:"rating_session_id" gorm:"column:rating_session_id;type:uuid;not null;index"`

	// skor 1..5, dijaga juga di DB
	RatingScore    int     `json:"rating_score" gorm:"column:rating_score;not null;check:rating_score >= 1 AND rating_score <= 5"`
	RatingFeedback *string `json:"rating_feedback" gorm:"column:rating_feedback;type:text"`

	RatingCreatedAt time.Time `json:"rating_created_at" gorm:"column:rating_created_at;not null;autoCreateTime;index"`
}

func (RatingModel) TableName() string { return "ratings" }
