package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
)

type lineRequest struct {
	VariantID int64  `json:"variantId" validate:"required,gt=0"`
	Name      string `json:"name" validate:"notblank,max=8"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

func postJSON(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
	return typed
}

func TestDecodeJSONBodyValidatesWithJSONFieldNames(t *testing.T) {
	var dest lineRequest
	err := DecodeJSONBody(postJSON(`{"variantId":0,"name":"   ","quantity":0}`), &dest)
	typed := requireCode(t, err, pkgerrors.CodeValidation)

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", typed.Details())
	}
	want := map[string]string{
		"variantId": "is required",
		"name":      "is required",
		"quantity":  "must be at least 1",
	}
	for field, msg := range want {
		if details[field] != msg {
			t.Fatalf("field %s: expected %q, got %q", field, msg, details[field])
		}
	}
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var dest lineRequest
	if err := DecodeJSONBody(postJSON(`{"variantId":11,"name":"Tee","quantity":2}`), &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.VariantID != 11 || dest.Quantity != 2 {
		t.Fatalf("unexpected decode %+v", dest)
	}
}

func TestDecodeJSONRejectsUnknownFieldsWithoutValidating(t *testing.T) {
	var dest lineRequest
	err := DecodeJSON(postJSON(`{"variantId":1,"coupon":"X"}`), &dest)
	requireCode(t, err, pkgerrors.CodeValidation)

	if err := DecodeJSON(postJSON(`{"variantId":0}`), &dest); err != nil {
		t.Fatalf("DecodeJSON must not run struct validation: %v", err)
	}
}

func TestParseQueryID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?variant_id=42&bad=-3", nil)
	if id, err := ParseQueryID(req, "variant_id"); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	if _, err := ParseQueryID(req, "bad"); err == nil {
		t.Fatal("expected negative id to fail")
	}
	if _, err := ParseQueryID(req, "missing"); err == nil {
		t.Fatal("expected missing id to fail")
	}
	if _, err := ParsePathID(" 7 ", "productID"); err != nil {
		t.Fatalf("expected trimmed path id to parse: %v", err)
	}
}

func TestParseQueryDecimal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?price=24.99&neg=-1&junk=abc", nil)
	value, ok, err := ParseQueryDecimal(req, "price")
	if err != nil || !ok || !value.Equal(decimal.RequireFromString("24.99")) {
		t.Fatalf("expected 24.99, got %s ok=%v err=%v", value, ok, err)
	}
	if _, ok, err := ParseQueryDecimal(req, "absent"); ok || err != nil {
		t.Fatalf("absent parameter should be ok=false without error")
	}
	for _, key := range []string{"neg", "junk"} {
		if _, _, err := ParseQueryDecimal(req, key); err == nil {
			t.Fatalf("%s: expected validation error", key)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{in: "  SUMMER10 ", maxLen: 64, want: "SUMMER10"},
		{in: "SUM\x00MER\t10", maxLen: 64, want: "SUMMER10"},
		{in: "ÉTÉ2024", maxLen: 3, want: "ÉTÉ"},
		{in: " keep all ", maxLen: 0, want: "keep all"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.maxLen); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d): expected %q, got %q", tc.in, tc.maxLen, tc.want, got)
		}
	}
}
