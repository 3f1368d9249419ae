// file: internals/features/payments/service/paymongo.go
package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

/* =========================================================
   PayMongo QRPh Client
   - API JSON biasa, auth basic pakai secret key (password kosong)
========================================================= */

const payMongoBaseURL = "https://api.paymongo.com/v1"

var payMongoClient *resty.Client

// InitPayMongo harus dipanggil saat bootstrap app.
func InitPayMongo(secretKey string) {
	payMongoClient = resty.New().
		SetBaseURL(payMongoBaseURL).
		SetBasicAuth(secretKey, "").
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
}

// SetPayMongoClient untuk test (inject client ke httpmock/base URL lain).
func SetPayMongoClient(c *resty.Client) { payMongoClient = c }

type QRPHResult struct {
	GatewayID   string // id objek qrph di PayMongo
	ExternalRef string // reference_id terbitan gateway
	QRImageB64  string // PNG base64, siap ditampilkan layar kiosk
}

type qrphResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			QRImage     string `json:"qr_image"`
			ReferenceID string `json:"reference_id"`
		} `json:"attributes"`
	} `json:"data"`
}

// GenerateQRPH membuat QRPh in-store di PayMongo untuk satu referensi kiosk.
// Referensi lokal ditanam di metadata + description supaya resolver webhook
// bisa nemu balik (strategi 1 dan 3).
func GenerateQRPH(reference string, amountCentavos int64) (*QRPHResult, error) {
	if payMongoClient == nil {
		return nil, fmt.Errorf("%w: client belum di-init", ErrGatewayUnavailable)
	}

	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"attributes": map[string]interface{}{
				"kind":             "instore",
				"amount":           amountCentavos,
				"currency":         "PHP",
				"reference_number": reference,
				"description":      fmt.Sprintf("Helmet Sanitization - Ref: %s", reference),
				"metadata": map[string]interface{}{
					"reference_number": reference,
					"product":          "helmet_sanitization",
					"kiosk_id":         "helmet_kiosk_001",
				},
			},
		},
	}

	log.Printf("🔵 [PAYMONGO] create QRPh amount=%d centavos ref=%s", amountCentavos, reference)

	var out qrphResponse
	resp, err := payMongoClient.R().
		SetBody(payload).
		SetResult(&out).
		Post("/qrph/generate")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		log.Printf("❌ [PAYMONGO] error status=%d body=%s", resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode())
	}

	qrImage := out.Data.Attributes.QRImage
	if qrImage == "" {
		return nil, fmt.Errorf("%w: tidak ada qr_image di response", ErrGatewayUnavailable)
	}
	// gateway kadang kirim data URI penuh
	if idx := strings.Index(qrImage, "base64,"); idx >= 0 {
		qrImage = qrImage[idx+len("base64,"):]
	}

	log.Printf("✅ [PAYMONGO] QRPh created id=%s reference_id=%s", out.Data.ID, out.Data.Attributes.ReferenceID)

	return &QRPHResult{
		GatewayID:   out.Data.ID,
		ExternalRef: out.Data.Attributes.ReferenceID,
		QRImageB64:  qrImage,
	}, nil
}
