package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
)

// ParseQueryID reads a required positive integer identifier.
func ParseQueryID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	return parseID(raw, key)
}

// ParsePathID converts a route parameter into a positive identifier.
func ParsePathID(raw, key string) (int64, error) {
	return parseID(strings.TrimSpace(raw), key)
}

func parseID(raw, key string) (int64, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "identifier must be a positive integer").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryDecimal reads an optional non-negative amount. ok is false when
// the parameter is absent.
func ParseQueryDecimal(r *http.Request, key string) (value decimal.Decimal, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return decimal.Zero, false, nil
	}
	value, err = decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.Zero, false, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a non-negative amount").WithDetails(map[string]any{"field": key})
	}
	return value, true, nil
}
