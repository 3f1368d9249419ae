// file: internals/features/payments/service/resolver_test.go
package service

import (
	"encoding/json"
	"errors"
	"testing"

	"helmetkiosk_backend/internals/features/payments/model"
)

func emptyLookups() StoreLookups { return StoreLookups{} }

func TestNormalizeNotification(t *testing.T) {
	t.Run("event wrapper bentuk standar PayMongo", func(t *testing.T) {
		raw := []byte(`{
			"data": {
				"attributes": {
					"type": "payment.paid",
					"data": {
						"id": "pay_abc123",
						"attributes": {
							"status": "paid",
							"amount": 100,
							"description": "Helmet helmet-1700000000-a1b2c3",
							"metadata": {"reference_number": "helmet-1700000000-a1b2c3"},
							"source": {"id": "src_xyz"},
							"external_reference_number": "EXT-001"
						}
					}
				}
			}
		}`)

		n := NormalizeNotification(raw)
		if n.EventType != "payment.paid" {
			t.Errorf("EventType = %q, want payment.paid", n.EventType)
		}
		if n.GatewayPaymentID != "pay_abc123" {
			t.Errorf("GatewayPaymentID = %q", n.GatewayPaymentID)
		}
		if n.SourceID != "src_xyz" {
			t.Errorf("SourceID = %q", n.SourceID)
		}
		if n.ExternalRef != "EXT-001" {
			t.Errorf("ExternalRef = %q", n.ExternalRef)
		}
		if n.AmountCentavos != 100 {
			t.Errorf("AmountCentavos = %d, want 100", n.AmountCentavos)
		}
		if got := n.Metadata["reference_number"]; got != "helmet-1700000000-a1b2c3" {
			t.Errorf("metadata reference = %v", got)
		}
	})

	t.Run("attributes langsung tanpa wrapper", func(t *testing.T) {
		raw := []byte(`{"type":"payment_success","attributes":{"status":"paid","amount":50,"description":"x"}}`)
		n := NormalizeNotification(raw)
		if n.EventType != "payment_success" {
			t.Errorf("EventType = %q", n.EventType)
		}
		if n.AmountCentavos != 50 {
			t.Errorf("AmountCentavos = %d", n.AmountCentavos)
		}
	})

	t.Run("amount pecahan di payload = peso", func(t *testing.T) {
		// literal "1.00" = satu peso, bukan satu centavo
		raw := []byte(`{"type":"payment.paid","attributes":{"status":"paid","amount":1.00}}`)
		n := NormalizeNotification(raw)
		if n.AmountCentavos != 100 {
			t.Errorf("AmountCentavos = %d, want 100", n.AmountCentavos)
		}
	})

	t.Run("payload rusak tidak panic", func(t *testing.T) {
		for _, raw := range [][]byte{
			[]byte(`not json`),
			[]byte(`{}`),
			[]byte(`{"data": "string bukan objek"}`),
			[]byte(`[]`),
			nil,
		} {
			n := NormalizeNotification(raw)
			if n.EventType != "" || n.AmountCentavos != 0 {
				t.Errorf("payload %q harusnya notification kosong, dapat %+v", raw, n)
			}
		}
	})
}

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want int64
	}{
		{"literal bulat = centavo", json.Number("100"), 100},
		{"literal pecahan = peso dikali 100", json.Number("1.5"), 150},
		{"satu peso pas", json.Number("1.00"), 100},
		{"satu centavo", json.Number("1"), 1},
		{"literal eksponen = peso", json.Number("1e2"), 10000},
		{"float bulat = centavo", float64(100), 100},
		{"float pecahan = peso dikali 100", float64(1.5), 150},
		{"string bulat", "250", 250},
		{"string pecahan", "2.50", 250},
		{"string rusak", "abc", 0},
		{"negatif ditolak", float64(-5), 0},
		{"nil", nil, 0},
		{"tipe lain", true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeAmount(tc.in); got != tc.want {
				t.Errorf("normalizeAmount(%v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestResolve_Precedence(t *testing.T) {
	// metadata harus menang meskipun SEMUA strategi lain bisa jawab
	n := Notification{
		Description:      "bayar helmet-1700000000-ffffff",
		Metadata:         map[string]interface{}{"reference_number": "helmet-1-meta"},
		Billing:          map[string]interface{}{"reference_number": "helmet-2-bill"},
		SourceID:         "src_1",
		ExternalRef:      "EXT-1",
		AmountCentavos:   100,
		GatewayPaymentID: "pay_1",
	}
	lk := StoreLookups{
		ByGatewayID:   func(string) (string, error) { return "helmet-3-gw", nil },
		ByExternalRef: func(string) (string, error) { return "helmet-4-ext", nil },
		RecentPendingByAmount: func(model.PaymentMethod, int64) (string, error) {
			return "helmet-5-amt", nil
		},
	}

	res, ok := Resolve(n, lk)
	if !ok {
		t.Fatal("Resolve gagal")
	}
	if res.Strategy != StrategyMetadata || res.Reference != "helmet-1-meta" {
		t.Errorf("got %+v, want metadata/helmet-1-meta", res)
	}
	if res.LowConfidence {
		t.Error("metadata match tidak boleh low-confidence")
	}
}

func TestResolve_EachStrategy(t *testing.T) {
	notFound := func(string) (string, error) { return "", errors.New("not found") }

	t.Run("billing reference_number", func(t *testing.T) {
		n := Notification{Billing: map[string]interface{}{"reference_number": "helmet-9-b"}}
		res, ok := Resolve(n, emptyLookups())
		if !ok || res.Strategy != StrategyBilling || res.Reference != "helmet-9-b" {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("billing fallback key reference", func(t *testing.T) {
		n := Notification{Billing: map[string]interface{}{"reference": "helmet-9-c"}}
		res, ok := Resolve(n, emptyLookups())
		if !ok || res.Strategy != StrategyBilling {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("regex di description, first match wins", func(t *testing.T) {
		n := Notification{Description: "paid helmet-1700000001-aabb01 dan helmet-1700000002-ccdd02"}
		res, ok := Resolve(n, emptyLookups())
		if !ok || res.Strategy != StrategyDescription {
			t.Fatalf("got %+v", res)
		}
		if res.Reference != "helmet-1700000001-aabb01" {
			t.Errorf("Reference = %q, want first match", res.Reference)
		}
	})

	t.Run("gateway id: source id dicoba sebelum payment id", func(t *testing.T) {
		var asked []string
		lk := StoreLookups{ByGatewayID: func(id string) (string, error) {
			asked = append(asked, id)
			if id == "src_1" {
				return "helmet-7-src", nil
			}
			return "", errors.New("not found")
		}}
		n := Notification{SourceID: "src_1", GatewayPaymentID: "pay_1"}
		res, ok := Resolve(n, lk)
		if !ok || res.Strategy != StrategyGatewayID || res.Reference != "helmet-7-src" {
			t.Fatalf("got %+v", res)
		}
		if len(asked) != 1 || asked[0] != "src_1" {
			t.Errorf("lookup order = %v", asked)
		}
	})

	t.Run("gateway id: fallback ke payment id", func(t *testing.T) {
		lk := StoreLookups{ByGatewayID: func(id string) (string, error) {
			if id == "pay_1" {
				return "helmet-7-pay", nil
			}
			return "", errors.New("not found")
		}}
		n := Notification{SourceID: "src_miss", GatewayPaymentID: "pay_1"}
		res, ok := Resolve(n, lk)
		if !ok || res.Reference != "helmet-7-pay" {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("external ref lookup", func(t *testing.T) {
		lk := StoreLookups{
			ByGatewayID:   notFound,
			ByExternalRef: func(string) (string, error) { return "helmet-8-ext", nil },
		}
		n := Notification{ExternalRef: "EXT-9"}
		res, ok := Resolve(n, lk)
		if !ok || res.Strategy != StrategyExternalRef {
			t.Errorf("got %+v", res)
		}
	})

	t.Run("amount last resort selalu low-confidence", func(t *testing.T) {
		var askedMethod model.PaymentMethod
		var askedAmount int64
		lk := StoreLookups{
			ByGatewayID:   notFound,
			ByExternalRef: notFound,
			RecentPendingByAmount: func(m model.PaymentMethod, amt int64) (string, error) {
				askedMethod, askedAmount = m, amt
				return "helmet-6-amt", nil
			},
		}
		n := Notification{SourceID: "src_x", ExternalRef: "EXT-x", AmountCentavos: 100}
		res, ok := Resolve(n, lk)
		if !ok || res.Strategy != StrategyAmount {
			t.Fatalf("got %+v", res)
		}
		if !res.LowConfidence {
			t.Error("amount match harus LowConfidence")
		}
		if askedMethod != model.PaymentMethodQRPH || askedAmount != 100 {
			t.Errorf("lookup pakai method=%s amount=%d", askedMethod, askedAmount)
		}
	})

	t.Run("amount nol tidak dipakai", func(t *testing.T) {
		called := false
		lk := StoreLookups{RecentPendingByAmount: func(model.PaymentMethod, int64) (string, error) {
			called = true
			return "helmet-x", nil
		}}
		if _, ok := Resolve(Notification{AmountCentavos: 0}, lk); ok {
			t.Error("harusnya unresolved")
		}
		if called {
			t.Error("amount lookup tidak boleh dipanggil untuk amount 0")
		}
	})
}

func TestResolve_Unresolved(t *testing.T) {
	notFound := func(string) (string, error) { return "", errors.New("not found") }
	lk := StoreLookups{
		ByGatewayID:   notFound,
		ByExternalRef: notFound,
		RecentPendingByAmount: func(model.PaymentMethod, int64) (string, error) {
			return "", errors.New("not found")
		},
	}
	n := Notification{
		Description:    "tidak ada reference di sini",
		SourceID:       "src_miss",
		ExternalRef:    "EXT-miss",
		AmountCentavos: 100,
	}
	if res, ok := Resolve(n, lk); ok {
		t.Errorf("harusnya unresolved, dapat %+v", res)
	}
}
