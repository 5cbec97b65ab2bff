//go:build !integration

package vnpay

import (
	"strings"
	"testing"
)

func TestEncodeParams(t *testing.T) {
	t.Run("should sort keys byte-wise ascending", func(t *testing.T) {
		got := EncodeParams(Params{
			"vnp_TxnRef":  "123",
			"vnp_Amount":  "4900000",
			"vnp_Command": "pay",
		})
		want := "vnp_Amount=4900000&vnp_Command=pay&vnp_TxnRef=123"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("should be independent of insertion order", func(t *testing.T) {
		a := Params{}
		a["b"] = "2"
		a["a"] = "1"
		a["c"] = "3"

		b := Params{}
		b["c"] = "3"
		b["a"] = "1"
		b["b"] = "2"

		if EncodeParams(a) != EncodeParams(b) {
			t.Errorf("same logical set encoded differently: %q vs %q", EncodeParams(a), EncodeParams(b))
		}
	})

	t.Run("should encode space as %20, never +", func(t *testing.T) {
		got := EncodeParams(Params{"vnp_OrderInfo": "Thanh toan cho ma GD: 123"})
		if strings.Contains(got, "+") {
			t.Errorf("encoding must not contain '+': %q", got)
		}
		want := "vnp_OrderInfo=Thanh%20toan%20cho%20ma%20GD%3A%20123"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("should keep keys with empty values", func(t *testing.T) {
		got := EncodeParams(Params{"vnp_BankCode": "", "vnp_TxnRef": "9"})
		want := "vnp_BankCode=&vnp_TxnRef=9"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("should return empty string for empty set", func(t *testing.T) {
		if got := EncodeParams(nil); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}
