// file: internals/features/payments/controller/payment_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"helmetkiosk_backend/internals/configs"
	"helmetkiosk_backend/internals/features/payments/dto"
	"helmetkiosk_backend/internals/features/payments/model"
	"helmetkiosk_backend/internals/features/payments/service"
	helper "helmetkiosk_backend/internals/helpers"
)

type PaymentController struct {
	DB      *gorm.DB
	Machine *service.StateMachine
	Store   service.PaymentStore
	Events  service.GatewayEventStore
}

func NewPaymentController(db *gorm.DB, machine *service.StateMachine, store service.PaymentStore) *PaymentController {
	return &PaymentController{
		DB:      db,
		Machine: machine,
		Store:   store,
		Events:  service.NewGormGatewayEventStore(db),
	}
}

/* =======================================================================
   POST /api/payments/qrph — buat pembayaran QRPh PENDING
======================================================================= */

func (h *PaymentController) CreateQRPayment(c *fiber.Ctx) error {
	amount := configs.PaymentAmountCentavos()
	reference := helper.GenerateReference("")

	qr, err := service.GenerateQRPH(reference, amount)
	if err != nil {
		if errors.Is(err, service.ErrGatewayUnavailable) {
			return helper.Error(c, fiber.StatusBadGateway, "Payment gateway error")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	in := service.CreatePendingInput{
		Reference:      reference,
		Method:         model.PaymentMethodQRPH,
		AmountCentavos: amount,
		GatewayID:      &qr.GatewayID,
		ExternalRef:    &qr.ExternalRef,
		QRImage:        &qr.QRImageB64,
	}
	if _, err := h.Machine.CreatePending(in); err != nil {
		// tabrakan referensi (harusnya tidak terjadi): generate ulang sekali
		if errors.Is(err, service.ErrDuplicateReference) {
			in.Reference = helper.GenerateReference("")
			if _, err := h.Machine.CreatePending(in); err != nil {
				return helper.Error(c, fiber.StatusInternalServerError, err.Error())
			}
			reference = in.Reference
		} else {
			return helper.Error(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	log.Printf("✅ [PAYMENT] QRPh payment created: %s", reference)

	return c.JSON(dto.CreateQRPaymentResponse{
		Success:     true,
		Reference:   reference,
		QRImage:     qr.QRImageB64,
		Amount:      dto.FormatCentavos(amount),
		ReferenceID: qr.ExternalRef,
		Gateway:     "PayMongo QRPh",
		QRPHID:      qr.GatewayID,
	})
}

/* =======================================================================
   GET /api/payments/:reference — polling status layar kiosk
   ?test=true memaksa mark paid (hanya non-production)
======================================================================= */

func (h *PaymentController) CheckPayment(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return helper.Error(c, fiber.StatusBadRequest, "missing reference")
	}

	status, sessionID, err := h.Machine.CheckStatus(reference)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "NOT_FOUND"})
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	// hook testing: tandai paid lewat query param (jalur state machine yang sama)
	if status == model.PaymentStatusPending && c.Query("test") == "true" && !configs.IsProduction() {
		log.Printf("🧪 [PAYMENT] test mode: manually marking %s as PAID", reference)
		return h.markPaidResponse(c, reference)
	}

	resp := dto.CheckStatusResponse{Status: status}
	if sessionID != nil {
		s := sessionID.String()
		resp.SessionID = &s
	}
	return c.JSON(resp)
}

/* =======================================================================
   POST /api/payments/cash — pembayaran cash (drop koin/bill acceptor)
======================================================================= */

func (h *PaymentController) SimulateCash(c *fiber.Ctx) error {
	reference := helper.GenerateReference("cash")
	amount := configs.PaymentAmountCentavos()

	if _, err := h.Machine.CreatePending(service.CreatePendingInput{
		Reference:      reference,
		Method:         model.PaymentMethodCash,
		AmountCentavos: amount,
	}); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	log.Printf("💵 [PAYMENT] cash payment: %s", reference)
	return h.markPaidResponse(c, reference)
}

/* =======================================================================
   Solana Pay
======================================================================= */

func (h *PaymentController) CreateSolanaPayment(c *fiber.Ctx) error {
	reference := helper.GenerateReference("sol")

	if _, err := h.Machine.CreatePending(service.CreatePendingInput{
		Reference:      reference,
		Method:         model.PaymentMethodSolana,
		AmountCentavos: configs.PaymentAmountCentavos(),
	}); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	solanaURL := service.BuildSolanaPayURL(reference)
	log.Printf("✅ [PAYMENT] solana payment created: %s", reference)

	return c.JSON(dto.CreateSolanaPaymentResponse{
		Success:   true,
		Reference: reference,
		SolanaURL: solanaURL,
		Amount:    configs.SolanaAmount + " SOL",
		Recipient: configs.SolanaRecipientAddress,
		Network:   configs.SolanaNetwork,
	})
}

func (h *PaymentController) ConfirmSolanaPayment(c *fiber.Ctx) error {
	var req dto.ConfirmSolanaRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return helper.ValidationError(c, err)
	}

	var gatewayID *string
	if req.Signature != "" {
		gatewayID = &req.Signature
	}

	sessID, err := h.Machine.MarkPaid(c.UserContext(), req.Reference, service.MarkPaidOptions{GatewayID: gatewayID})
	if err != nil {
		return mapStateError(c, err)
	}

	log.Printf("🟣 [PAYMENT] solana payment confirmed: %s", req.Reference)
	return c.JSON(dto.MarkPaidResponse{
		Success:   true,
		Status:    model.PaymentStatusPaid,
		SessionID: sessID.String(),
		Message:   "Payment confirmed",
	})
}

/* =======================================================================
   POST /webhooks/paymongo — notifikasi gateway
   Kontrak: SELALU 200 {received:true}, apapun hasil internalnya.
======================================================================= */

func (h *PaymentController) Webhook(c *fiber.Ctx) error {
	outcome := service.HandleGatewayWebhook(
		c.UserContext(),
		h.Events,
		h.Machine,
		h.Store,
		c.Body(),
		c.Get("Paymongo-Signature"),
	)

	resp := fiber.Map{"received": true}
	if outcome.Processed {
		resp["reference"] = outcome.Reference
		if outcome.SessionID != uuid.Nil {
			resp["session_id"] = outcome.SessionID.String()
		}
	}
	return c.JSON(resp)
}

/* =======================================================================
   Shared
======================================================================= */

func (h *PaymentController) markPaidResponse(c *fiber.Ctx, reference string) error {
	sessID, err := h.Machine.MarkPaid(c.UserContext(), reference, service.MarkPaidOptions{})
	if err != nil {
		return mapStateError(c, err)
	}
	return c.JSON(dto.MarkPaidResponse{
		Success:   true,
		Status:    model.PaymentStatusPaid,
		SessionID: sessID.String(),
	})
}

func mapStateError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Payment not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return helper.Error(c, fiber.StatusConflict, "Payment already failed")
	default:
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
}
