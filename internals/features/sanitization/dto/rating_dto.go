// file: internals/features/sanitization/dto/rating_dto.go
package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type SubmitRatingRequest struct {
	SessionID string  `json:"session_id" validate:"required,uuid4"`
	Score     int     `json:"score" validate:"required,min=1,max=5"`
	Feedback  *string `json:"feedback" validate:"omitempty,max=1000"`
}

func (r *SubmitRatingRequest) Validate() error {
	if r.Feedback != nil {
		trimmed := strings.TrimSpace(*r.Feedback)
		if trimmed == "" {
			r.Feedback = nil
		} else {
			r.Feedback = &trimmed
		}
	}
	return validate.Struct(r)
}

type SubmitRatingResponse struct {
	Success  bool   `json:"success"`
	RatingID string `json:"rating_id"`
	Message  string `json:"message"`
}
