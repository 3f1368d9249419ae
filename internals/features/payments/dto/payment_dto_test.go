// file: internals/features/payments/dto/payment_dto_test.go
package dto

import "testing"

func TestFormatCentavos(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{100, "₱1.00"},
		{1, "₱0.01"},
		{0, "₱0.00"},
		{12345, "₱123.45"},
		{50, "₱0.50"},
	}
	for _, tc := range cases {
		if got := FormatCentavos(tc.in); got != tc.want {
			t.Errorf("FormatCentavos(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConfirmSolanaRequest_Validate(t *testing.T) {
	t.Run("reference wajib", func(t *testing.T) {
		req := ConfirmSolanaRequest{Signature: "sig"}
		if err := req.Validate(); err == nil {
			t.Error("reference kosong harus ditolak")
		}
	})

	t.Run("signature opsional", func(t *testing.T) {
		req := ConfirmSolanaRequest{Reference: "helmet-sol-1-aa"}
		if err := req.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})
}
