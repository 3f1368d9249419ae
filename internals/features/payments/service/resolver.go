// file: internals/features/payments/service/resolver.go
package service

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"helmetkiosk_backend/internals/features/payments/model"
	helper "helmetkiosk_backend/internals/helpers"
)

/* =========================================================
   Notification = bentuk ternormalisasi dari payload webhook.
   PayMongo ngirim beberapa bentuk (event wrapper, event di dalam
   event, attributes langsung); NormalizeNotification yang sniffing,
   Resolve tinggal jalan di atas bentuk yang sudah rapi.
========================================================= */

type Notification struct {
	EventType   string
	Status      string
	Description string

	// Nominal dalam centavo (0 = tidak diketahui)
	AmountCentavos int64

	Metadata map[string]interface{}
	Billing  map[string]interface{}

	// id objek payment di gateway (dari event wrapper)
	GatewayPaymentID string
	// id source/qrph (payload.source.id)
	SourceID string
	// reference pendek terbitan gateway
	ExternalRef string
}

/* =========================================================
   Strategi resolusi (urutan = precedence)
========================================================= */

type ResolveStrategy string

const (
	StrategyMetadata    ResolveStrategy = "metadata"
	StrategyBilling     ResolveStrategy = "billing"
	StrategyDescription ResolveStrategy = "description"
	StrategyGatewayID   ResolveStrategy = "gateway_id"
	StrategyExternalRef ResolveStrategy = "external_ref"
	StrategyAmount      ResolveStrategy = "amount"
)

type Resolution struct {
	Reference string
	Strategy  ResolveStrategy
	// true hanya untuk strategi amount: bisa salah match kalau ada
	// dua pembayaran pending dengan nominal sama (lihat DESIGN.md)
	LowConfidence bool
}

// StoreLookups = callback ke Payment Store untuk strategi 4-6.
// Dipisah supaya cascade bisa dites tanpa DB.
type StoreLookups struct {
	ByGatewayID           func(gatewayID string) (string, error)
	ByExternalRef         func(externalRef string) (string, error)
	RecentPendingByAmount func(method model.PaymentMethod, amountCentavos int64) (string, error)
}

// LookupsFromStore mengikat StoreLookups ke PaymentStore beneran.
func LookupsFromStore(store PaymentStore) StoreLookups {
	byRef := func(get func() (*model.PaymentModel, error)) (string, error) {
		p, err := get()
		if err != nil {
			return "", err
		}
		return p.PaymentReference, nil
	}
	return StoreLookups{
		ByGatewayID: func(id string) (string, error) {
			return byRef(func() (*model.PaymentModel, error) { return store.GetByGatewayID(id) })
		},
		ByExternalRef: func(id string) (string, error) {
			return byRef(func() (*model.PaymentModel, error) { return store.GetByExternalRef(id) })
		},
		RecentPendingByAmount: func(m model.PaymentMethod, amt int64) (string, error) {
			return byRef(func() (*model.PaymentModel, error) {
				return store.FindRecentPendingByMethodAndAmount(m, amt)
			})
		},
	}
}

/* =========================================================
   Normalisasi payload
========================================================= */

// decoder khusus webhook: angka dipertahankan sebagai json.Number supaya
// literal "1" (centavo) dan "1.00" (peso) masih bisa dibedakan di normalizeAmount.
var webhookJSON = sonic.Config{UseNumber: true}.Froze()

// NormalizeNotification tidak pernah gagal: payload rusak → Notification kosong.
func NormalizeNotification(raw []byte) Notification {
	var n Notification

	var data map[string]interface{}
	if err := webhookJSON.Unmarshal(raw, &data); err != nil {
		return n
	}

	// event type bisa di top-level ("type"/"event") atau nested di attributes
	n.EventType, _ = data["type"].(string)
	if n.EventType == "" {
		n.EventType, _ = data["event"].(string)
	}

	var paymentData map[string]interface{}

	if inner, ok := data["data"].(map[string]interface{}); ok {
		attrs, _ := inner["attributes"].(map[string]interface{})
		if n.EventType == "" && attrs != nil {
			n.EventType, _ = attrs["type"].(string)
		}

		// bentuk event wrapper: payment sesungguhnya ada di attrs.data
		if eventData, ok := attrs["data"].(map[string]interface{}); ok {
			n.GatewayPaymentID, _ = eventData["id"].(string)
			paymentData, _ = eventData["attributes"].(map[string]interface{})
		} else if attrs != nil {
			paymentData = attrs
		}
	} else if attrs, ok := data["attributes"].(map[string]interface{}); ok {
		paymentData = attrs
	}

	if paymentData == nil {
		return n
	}

	n.Status, _ = paymentData["status"].(string)
	n.Description, _ = paymentData["description"].(string)
	n.Metadata, _ = paymentData["metadata"].(map[string]interface{})
	n.Billing, _ = paymentData["billing"].(map[string]interface{})
	n.AmountCentavos = normalizeAmount(paymentData["amount"])

	if src, ok := paymentData["source"].(map[string]interface{}); ok {
		n.SourceID, _ = src["id"].(string)
	}

	if v, ok := paymentData["external_reference_number"].(string); ok && v != "" {
		n.ExternalRef = v
	} else if v, ok := paymentData["reference_id"].(string); ok && v != "" {
		n.ExternalRef = v
	}

	return n
}

// normalizeAmount: literal angka bulat = centavo, literal pecahan = peso.
// json.Number menyimpan literal aslinya, jadi "1.00" (satu peso) tidak
// kececer jadi 1 centavo. Pakai decimal supaya 1.00 peso tidak jadi
// 99 centavo gara-gara float.
func normalizeAmount(v interface{}) int64 {
	var (
		d     decimal.Decimal
		pesos bool
	)
	switch a := v.(type) {
	case json.Number:
		parsed, err := decimal.NewFromString(a.String())
		if err != nil {
			return 0
		}
		d = parsed
		pesos = strings.ContainsAny(a.String(), ".eE")
	case float64:
		d = decimal.NewFromFloat(a)
		pesos = !d.IsInteger()
	case string:
		parsed, err := decimal.NewFromString(a)
		if err != nil {
			return 0
		}
		d = parsed
		pesos = strings.ContainsAny(a, ".eE")
	default:
		return 0
	}

	if d.IsNegative() {
		return 0
	}
	if pesos {
		return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	}
	return d.IntPart()
}

/* =========================================================
   Cascade
========================================================= */

// Resolve menjalankan cascade strategi sesuai precedence; strategi berikutnya
// hanya dicoba kalau yang sebelumnya gagal. Return ok=false kalau semua habis.
func Resolve(n Notification, lk StoreLookups) (Resolution, bool) {
	// 1. Metadata dari create_payment (paling terpercaya)
	if ref := stringField(n.Metadata, "reference_number"); ref != "" {
		return Resolution{Reference: ref, Strategy: StrategyMetadata}, true
	}

	// 2. Field reference di sub-objek billing
	if ref := stringField(n.Billing, "reference_number"); ref != "" {
		return Resolution{Reference: ref, Strategy: StrategyBilling}, true
	}
	if ref := stringField(n.Billing, "reference"); ref != "" {
		return Resolution{Reference: ref, Strategy: StrategyBilling}, true
	}

	// 3. Pattern match di description (first match wins)
	if n.Description != "" {
		if ref := helper.ReferencePattern.FindString(n.Description); ref != "" {
			return Resolution{Reference: ref, Strategy: StrategyDescription}, true
		}
	}

	// 4. Reverse lookup via id gateway (source/qrph id, lalu id payment event)
	if lk.ByGatewayID != nil {
		for _, id := range []string{n.SourceID, n.GatewayPaymentID} {
			if id == "" {
				continue
			}
			if ref, err := lk.ByGatewayID(id); err == nil && ref != "" {
				return Resolution{Reference: ref, Strategy: StrategyGatewayID}, true
			}
		}
	}

	// 5. Reverse lookup via external reference gateway
	if lk.ByExternalRef != nil && n.ExternalRef != "" {
		if ref, err := lk.ByExternalRef(n.ExternalRef); err == nil && ref != "" {
			return Resolution{Reference: ref, Strategy: StrategyExternalRef}, true
		}
	}

	// 6. LAST RESORT: match nominal ke pending QRPH terbaru.
	// Heuristik lossy — bisa salah attach kalau ada dua pembayaran
	// pending nominal sama; selalu ditandai low-confidence.
	if lk.RecentPendingByAmount != nil && n.AmountCentavos > 0 {
		if ref, err := lk.RecentPendingByAmount(model.PaymentMethodQRPH, n.AmountCentavos); err == nil && ref != "" {
			log.Printf("⚠️ [RESOLVER] low-confidence amount match: ref=%s amount=%d centavos", ref, n.AmountCentavos)
			return Resolution{Reference: ref, Strategy: StrategyAmount, LowConfidence: true}, true
		}
	}

	return Resolution{}, false
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
