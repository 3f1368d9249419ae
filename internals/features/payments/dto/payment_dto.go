// file: internals/features/payments/dto/payment_dto.go
package dto

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"helmetkiosk_backend/internals/features/payments/model"
)

var validate = validator.New()

/* ================================
   Responses (layar kiosk)
================================ */

type CreateQRPaymentResponse struct {
	Success     bool   `json:"success"`
	Reference   string `json:"reference"`
	QRImage     string `json:"qr_image"`
	Amount      string `json:"amount"`
	ReferenceID string `json:"reference_id,omitempty"`
	Gateway     string `json:"gateway"`
	QRPHID      string `json:"qrph_id,omitempty"`
}

type CreateSolanaPaymentResponse struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
	SolanaURL string `json:"solana_url"`
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
	Network   string `json:"network"`
}

type CheckStatusResponse struct {
	Status    model.PaymentStatus `json:"status"`
	SessionID *string             `json:"session_id,omitempty"`
}

type MarkPaidResponse struct {
	Success   bool                `json:"success"`
	Status    model.PaymentStatus `json:"status"`
	SessionID string              `json:"session_id"`
	Message   string              `json:"message,omitempty"`
}

/* ================================
   Requests
================================ */

type ConfirmSolanaRequest struct {
	Reference string `json:"reference" validate:"required"`
	Signature string `json:"signature"`
}

func (r *ConfirmSolanaRequest) Validate() error { return validate.Struct(r) }

/* ================================
   Helpers
================================ */

// FormatCentavos: 100 → "₱1.00" (pakai decimal, jangan float)
func FormatCentavos(centavos int64) string {
	return "₱" + decimal.NewFromInt(centavos).Div(decimal.NewFromInt(100)).StringFixed(2)
}
