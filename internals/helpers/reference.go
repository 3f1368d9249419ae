// file: internals/helpers/reference.go
package helper

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// Format referensi kiosk: helmet-<unix>-<hex>, contoh helmet-1700000000-ab12cd.
// Varian cash/solana menambah infix: helmet-cash-..., helmet-sol-...
// ReferencePattern dipakai resolver webhook untuk scan field description.
var ReferencePattern = regexp.MustCompile(`helmet-\d+-[a-f0-9]+`)

// GenerateReference membuat referensi pembayaran baru.
// infix kosong untuk QRPH, "cash"/"sol" untuk metode lain.
func GenerateReference(infix string) string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)

	if infix == "" {
		return fmt.Sprintf("helmet-%d-%s", time.Now().Unix(), hex.EncodeToString(buf))
	}
	return fmt.Sprintf("helmet-%s-%d-%s", infix, time.Now().Unix(), hex.EncodeToString(buf))
}
