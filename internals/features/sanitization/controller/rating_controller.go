// file: internals/features/sanitization/controller/rating_controller.go
package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	paymentService "helmetkiosk_backend/internals/features/payments/service"
	"helmetkiosk_backend/internals/features/sanitization/dto"
	"helmetkiosk_backend/internals/features/sanitization/model"
	helper "helmetkiosk_backend/internals/helpers"
)

// StatsRefresher menghindari import cycle ke package stats.
type StatsRefresher interface {
	RefreshDay(date time.Time) error
}

type RatingController struct {
	DB    *gorm.DB
	Stats StatsRefresher
}

func NewRatingController(db *gorm.DB, stats StatsRefresher) *RatingController {
	return &RatingController{DB: db, Stats: stats}
}

/* =======================================================================
   POST /api/ratings — rating 1..5 setelah sesi sanitasi
======================================================================= */

func (h *RatingController) SubmitRating(c *fiber.Ctx) error {
	var req dto.SubmitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if req.Score < 1 || req.Score > 5 {
		return helper.Error(c, fiber.StatusBadRequest, paymentService.ErrInvalidScore.Error())
	}
	if err := req.Validate(); err != nil {
		return helper.ValidationError(c, err)
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid session_id")
	}

	// sesi harus ada (rating tanpa sesi = ditolak)
	var session model.SanitizationSessionModel
	if err := h.DB.First(&session, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Session not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	rating := model.RatingModel{
		RatingSessionID: sessionID,
		RatingScore:     req.Score,
		RatingFeedback:  req.Feedback,
	}
	if err := h.DB.Create(&rating).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	log.Printf("⭐ [RATING] session=%s score=%d", sessionID, req.Score)

	// rating mempengaruhi average_rating hari ini
	if h.Stats != nil {
		if err := h.Stats.RefreshDay(time.Now()); err != nil {
			log.Printf("⚠️ [RATING] stats refresh gagal: %v", err)
		}
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Rating recorded", dto.SubmitRatingResponse{
		Success:  true,
		RatingID: rating.RatingID.String(),
		Message:  "Thank you for your feedback",
	})
}
