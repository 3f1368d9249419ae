// file: internals/features/payments/model/gateway_event_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GatewayEventStatus string

const (
	GatewayEventStatusReceived GatewayEventStatus = "received"
	GatewayEventStatusSuccess  GatewayEventStatus = "success"
	GatewayEventStatusFailed   GatewayEventStatus = "failed"
)

/*
  payment_gateway_events = LOG WEBHOOK / CALLBACK PAYMENT GATEWAY
  - Bisa banyak row per 1 payment (tiap notifikasi)
  - Nyimpen raw payload + hasil resolusi referensi (strategi mana yang kena)
*/

type PaymentGatewayEventModel struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"gateway_event_id"`

	GatewayEventProvider   string  `gorm:"column:gateway_event_provider;type:varchar(32);not null;default:'paymongo'" json:"gateway_event_provider"`
	GatewayEventType       *string `gorm:"column:gateway_event_type" json:"gateway_event_type"`
	GatewayEventExternalID *string `gorm:"column:gateway_event_external_id" json:"gateway_event_external_id"`

	// Raw data (buat debug / replay)
	GatewayEventPayload   datatypes.JSON `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload"`
	GatewayEventSignature *string        `gorm:"column:gateway_event_signature" json:"gateway_event_signature"`

	// Hasil resolusi cascade
	GatewayEventResolvedReference *string `gorm:"column:gateway_event_resolved_reference;index" json:"gateway_event_resolved_reference"`
	GatewayEventResolveStrategy   *string `gorm:"column:gateway_event_resolve_strategy" json:"gateway_event_resolve_strategy"`
	GatewayEventLowConfidence     bool    `gorm:"column:gateway_event_low_confidence;not null;default:false" json:"gateway_event_low_confidence"`

	// Status processing internal
	GatewayEventStatus GatewayEventStatus `gorm:"column:gateway_event_status;type:varchar(16);not null;default:'received'" json:"gateway_event_status"`
	GatewayEventError  *string            `gorm:"column:gateway_event_error" json:"gateway_event_error"`

	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;not null;autoCreateTime;index" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at"`
}

func (PaymentGatewayEventModel) TableName() string {
	return "payment_gateway_events"
}
