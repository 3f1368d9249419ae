// file: internals/features/payments/model/payment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* ================================
   ENUM mirror (harus cocok dgn DB)
================================ */

type PaymentStatus string
type PaymentMethod string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

const (
	PaymentMethodQRPH   PaymentMethod = "QRPH"
	PaymentMethodSolana PaymentMethod = "SOLANA"
	PaymentMethodCash   PaymentMethod = "CASH"
)

// IsTerminal: PAID dan FAILED final, tidak boleh ditimpa.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

/* ================================
   MODEL: payments
================================ */

type PaymentModel struct {
	PaymentID uuid.UUID `json:"payment_id" gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey"`

	// Referensi lokal (helmet-<unix>-<hex>), identitas utama end-to-end
	PaymentReference string `json:"payment_reference" gorm:"column:payment_reference;type:text;not null;uniqueIndex"`

	PaymentMethod PaymentMethod `json:"payment_method" gorm:"column:payment_method;type:varchar(16);not null"`

	// Nominal dalam minor unit (centavo)
	PaymentAmountCentavos int64  `json:"payment_amount_centavos" gorm:"column:payment_amount_centavos;type:bigint;not null;check:payment_amount_centavos>=0"`
	PaymentCurrency       string `json:"payment_currency" gorm:"column:payment_currency;type:varchar(8);not null;default:PHP"`

	PaymentStatus PaymentStatus `json:"payment_status" gorm:"column:payment_status;type:varchar(16);not null;default:'PENDING';index"`

	// Info gateway (NULL untuk cash)
	PaymentGatewayID   *string `json:"payment_gateway_id" gorm:"column:payment_gateway_id;type:text;index"`
	PaymentExternalRef *string `json:"payment_external_ref" gorm:"column:payment_external_ref;type:text;index"`
	PaymentQRImage     *string `json:"payment_qr_image,omitempty" gorm:"column:payment_qr_image;type:text"`

	PaymentCreatedAt time.Time  `json:"payment_created_at" gorm:"column:payment_created_at;not null;autoCreateTime;index"`
	PaymentPaidAt    *time.Time `json:"payment_paid_at" gorm:"column:payment_paid_at"`
}

func (PaymentModel) TableName() string { return "payments" }
