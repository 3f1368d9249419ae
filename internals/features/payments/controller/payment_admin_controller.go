// file: internals/features/payments/controller/payment_admin_controller.go
package controller

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"helmetkiosk_backend/internals/features/payments/dto"
	"helmetkiosk_backend/internals/features/payments/model"
	"helmetkiosk_backend/internals/features/payments/service"
	helper "helmetkiosk_backend/internals/helpers"
)

type PaymentAdminController struct {
	DB      *gorm.DB
	Machine *service.StateMachine
}

func NewPaymentAdminController(db *gorm.DB, machine *service.StateMachine) *PaymentAdminController {
	return &PaymentAdminController{DB: db, Machine: machine}
}

/* =======================================================================
   GET /api/admin/payments
   Query: status, method, date_from, date_to (YYYY-MM-DD), page, limit
======================================================================= */

func (h *PaymentAdminController) ListPayments(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := h.DB.Model(&model.PaymentModel{})

	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		q = q.Where("payment_status = ?", status)
	}
	if method := strings.ToUpper(strings.TrimSpace(c.Query("method"))); method != "" {
		q = q.Where("payment_method = ?", method)
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			q = q.Where("payment_created_at >= ?", t)
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			q = q.Where("payment_created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var payments []model.PaymentModel
	if err := q.
		Order("payment_created_at DESC").
		Limit(paging.Limit).
		Offset(paging.Offset).
		Find(&payments).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "OK", fiber.Map{
		"payments":   payments,
		"pagination": helper.BuildPagination(paging, total),
	})
}

/* =======================================================================
   GET /api/admin/gateway-events
   Query: status, reference, low_confidence, page, limit
======================================================================= */

func (h *PaymentAdminController) ListGatewayEvents(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := h.DB.Model(&model.PaymentGatewayEventModel{})

	if status := strings.ToLower(strings.TrimSpace(c.Query("status"))); status != "" {
		q = q.Where("gateway_event_status = ?", status)
	}
	if ref := strings.TrimSpace(c.Query("reference")); ref != "" {
		q = q.Where("gateway_event_resolved_reference = ?", ref)
	}
	if c.Query("low_confidence") == "true" {
		q = q.Where("gateway_event_low_confidence = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var events []model.PaymentGatewayEventModel
	if err := q.
		Order("gateway_event_received_at DESC").
		Limit(paging.Limit).
		Offset(paging.Offset).
		Find(&events).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "OK", fiber.Map{
		"events":     events,
		"pagination": helper.BuildPagination(paging, total),
	})
}

/* =======================================================================
   POST /api/admin/payments/:reference/mark-paid
   Override manual (rekonsiliasi). Idempotent via state machine.
======================================================================= */

func (h *PaymentAdminController) ForceMarkPaid(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return helper.Error(c, fiber.StatusBadRequest, "missing reference")
	}

	sessID, err := h.Machine.MarkPaid(c.UserContext(), reference, service.MarkPaidOptions{})
	if err != nil {
		return mapStateError(c, err)
	}

	log.Printf("🛠️ [ADMIN] manual mark paid: %s", reference)
	return c.JSON(dto.MarkPaidResponse{
		Success:   true,
		Status:    model.PaymentStatusPaid,
		SessionID: sessID.String(),
		Message:   "Payment marked as paid",
	})
}
