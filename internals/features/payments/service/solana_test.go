// file: internals/features/payments/service/solana_test.go
package service

import (
	"net/url"
	"strings"
	"testing"

	"helmetkiosk_backend/internals/configs"
)

func TestBuildSolanaPayURL(t *testing.T) {
	configs.SolanaRecipientAddress = "FakeRecipient11111111111111111111111111111"
	configs.SolanaAmount = "0.001"

	ref := "helmet-sol-1700000000-aabbcc"
	raw := BuildSolanaPayURL(ref)

	if !strings.HasPrefix(raw, "solana:"+configs.SolanaRecipientAddress+"?") {
		t.Fatalf("url = %q, harus prefix solana:<recipient>?", raw)
	}

	query := raw[strings.Index(raw, "?")+1:]
	params, err := url.ParseQuery(query)
	if err != nil {
		t.Fatalf("query tidak bisa diparse: %v", err)
	}

	want := map[string]string{
		"recipient": configs.SolanaRecipientAddress,
		"amount":    "0.001",
		"label":     configs.SolanaLabel,
		"message":   configs.SolanaMessage,
		"reference": ref,
		"memo":      "Helmet-" + ref,
	}
	for k, v := range want {
		if got := params.Get(k); got != v {
			t.Errorf("param %s = %q, want %q", k, got, v)
		}
	}
}
