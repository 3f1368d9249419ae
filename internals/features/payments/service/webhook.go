// file: internals/features/payments/service/webhook.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"helmetkiosk_backend/internals/features/payments/model"
)

/* =========================================================
   Webhook intake
   Kontrak: SELALU ack ke gateway apapun yang terjadi di dalam
   (biar PayMongo tidak retry storm). Error internal cuma di-log
   dan dicatat di row payment_gateway_events.
========================================================= */

// event type yang dikenal dari PayMongo (beberapa alias kelihatan di praktik)
var (
	paidEventTypes    = map[string]bool{"payment.paid": true, "payment.success": true, "payment_success": true}
	failedEventTypes  = map[string]bool{"payment.failed": true, "payment.failure": true}
	expiredEventTypes = map[string]bool{"qrpayment.expired": true, "qr.expired": true}
)

type WebhookOutcome struct {
	EventID   uuid.UUID
	Reference string
	SessionID uuid.UUID
	Processed bool
}

// HandleGatewayWebhook memproses satu notifikasi PayMongo.
func HandleGatewayWebhook(ctx context.Context, events GatewayEventStore, machine *StateMachine, store PaymentStore, raw []byte, signature string) *WebhookOutcome {
	log.Printf("📩 [WEBHOOK] diterima %d bytes", len(raw))

	event := &model.PaymentGatewayEventModel{
		GatewayEventProvider: "paymongo",
		GatewayEventStatus:   model.GatewayEventStatusReceived,
	}
	if sonic.Valid(raw) {
		event.GatewayEventPayload = datatypes.JSON(raw)
	} else {
		event.GatewayEventPayload = datatypes.JSON([]byte(`{}`))
	}
	if signature != "" {
		event.GatewayEventSignature = &signature
	}

	n := NormalizeNotification(raw)
	if n.EventType != "" {
		event.GatewayEventType = &n.EventType
	}
	if n.GatewayPaymentID != "" {
		event.GatewayEventExternalID = &n.GatewayPaymentID
	} else if n.SourceID != "" {
		event.GatewayEventExternalID = &n.SourceID
	}

	if err := events.CreateEvent(event); err != nil {
		// log webhook gagal kesimpan bukan alasan menolak notifikasi
		log.Printf("⚠️ [WEBHOOK] gagal simpan event row: %v", err)
	}

	outcome := &WebhookOutcome{EventID: event.GatewayEventID}

	switch {
	case expiredEventTypes[n.EventType]:
		log.Printf("⏰ [WEBHOOK] QR expired event, ack saja")
		finishEvent(events, event, model.GatewayEventStatusSuccess, nil)
		return outcome

	case failedEventTypes[n.EventType]:
		processFailed(events, machine, store, event, n, outcome)
		return outcome

	default:
		// payment.paid dan event tak dikenal: coba proses sebagai pembayaran
		// (perilaku yang sama dengan gateway yang ganti-ganti nama event)
		if n.EventType != "" && !paidEventTypes[n.EventType] {
			log.Printf("⚠️ [WEBHOOK] event type tak dikenal: %s, coba proses", n.EventType)
		}
		processPaid(ctx, events, machine, store, event, n, outcome)
		return outcome
	}
}

func processPaid(ctx context.Context, events GatewayEventStore, machine *StateMachine, store PaymentStore, event *model.PaymentGatewayEventModel, n Notification, outcome *WebhookOutcome) {
	res, ok := Resolve(n, LookupsFromStore(store))
	if !ok {
		log.Printf("❌ [WEBHOOK] %v", ErrUnresolvedNotification)
		finishEvent(events, event, model.GatewayEventStatusFailed, ErrUnresolvedNotification)
		return
	}
	recordResolution(event, res)

	log.Printf("🎯 [WEBHOOK] resolved ref=%s strategy=%s", res.Reference, res.Strategy)

	var gatewayID *string
	if id := firstNonEmpty(n.GatewayPaymentID, n.SourceID); id != "" {
		gatewayID = &id
	}

	sessID, err := machine.MarkPaid(ctx, res.Reference, MarkPaidOptions{
		GatewayID:              gatewayID,
		Backfill:               true,
		BackfillMethod:         model.PaymentMethodQRPH,
		BackfillAmountCentavos: n.AmountCentavos,
	})
	if err != nil {
		// ditelan: jalur notifikasi tidak boleh bikin gateway retry
		log.Printf("❌ [WEBHOOK] markPaid gagal untuk %s: %v", res.Reference, err)
		finishEvent(events, event, model.GatewayEventStatusFailed, err)
		return
	}

	outcome.Reference = res.Reference
	outcome.SessionID = sessID
	outcome.Processed = true
	finishEvent(events, event, model.GatewayEventStatusSuccess, nil)
}

func processFailed(events GatewayEventStore, machine *StateMachine, store PaymentStore, event *model.PaymentGatewayEventModel, n Notification, outcome *WebhookOutcome) {
	res, ok := Resolve(n, LookupsFromStore(store))
	if !ok {
		// failed event tanpa referensi: cukup dicatat
		finishEvent(events, event, model.GatewayEventStatusFailed, ErrUnresolvedNotification)
		return
	}
	recordResolution(event, res)

	if err := machine.MarkFailed(res.Reference); err != nil {
		log.Printf("⚠️ [WEBHOOK] markFailed %s: %v", res.Reference, err)
		finishEvent(events, event, model.GatewayEventStatusFailed, err)
		return
	}

	outcome.Reference = res.Reference
	outcome.Processed = true
	finishEvent(events, event, model.GatewayEventStatusSuccess, nil)
}

func recordResolution(event *model.PaymentGatewayEventModel, res Resolution) {
	ref := res.Reference
	strategy := string(res.Strategy)
	event.GatewayEventResolvedReference = &ref
	event.GatewayEventResolveStrategy = &strategy
	event.GatewayEventLowConfidence = res.LowConfidence
}

func finishEvent(events GatewayEventStore, event *model.PaymentGatewayEventModel, status model.GatewayEventStatus, procErr error) {
	now := time.Now()
	event.GatewayEventStatus = status
	event.GatewayEventProcessedAt = &now
	if procErr != nil {
		msg := procErr.Error()
		event.GatewayEventError = &msg
	}
	if event.GatewayEventID == uuid.Nil {
		return // row awal gagal kesimpan, jangan nulis lagi
	}
	if err := events.SaveEvent(event); err != nil {
		log.Printf("⚠️ [WEBHOOK] gagal update event row: %v", err)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
