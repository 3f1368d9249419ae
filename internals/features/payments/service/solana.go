// file: internals/features/payments/service/solana.go
package service

import (
	"fmt"
	"net/url"

	"helmetkiosk_backend/internals/configs"
)

// BuildSolanaPayURL menyusun URL Solana Pay untuk satu referensi kiosk.
// Encoding QR jadi urusan layar kiosk; backend cuma kasih URL mentah.
func BuildSolanaPayURL(reference string) string {
	params := url.Values{}
	params.Set("recipient", configs.SolanaRecipientAddress)
	params.Set("amount", configs.SolanaAmount)
	params.Set("label", configs.SolanaLabel)
	params.Set("message", configs.SolanaMessage)
	params.Set("reference", reference)
	params.Set("memo", fmt.Sprintf("Helmet-%s", reference))

	return fmt.Sprintf("solana:%s?%s", configs.SolanaRecipientAddress, params.Encode())
}
