package pricing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sunkissed-southern/storefront/pkg/enums"
	"github.com/sunkissed-southern/storefront/pkg/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func price(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func percentSale(id int64, value string, variants ...int64) Sale {
	return Sale{ID: id, DiscountType: enums.SaleDiscountPercent, DiscountValue: dec(value), VariantIDs: variants}
}

func amountSale(id int64, value string, variants ...int64) Sale {
	return Sale{ID: id, DiscountType: enums.SaleDiscountAmount, DiscountValue: dec(value), VariantIDs: variants}
}

func TestDiscountedPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		variant Variant
		sales   []Sale
		want    string
	}{
		{name: "no sales", variant: Variant{ID: 1, Price: price("25.00")}, want: "25.00"},
		{name: "sale for another variant", variant: Variant{ID: 1, Price: price("25.00")}, sales: []Sale{percentSale(1, "50", 2)}, want: "25.00"},
		{name: "percent", variant: Variant{ID: 1, Price: price("25.00")}, sales: []Sale{percentSale(1, "20", 1)}, want: "20.00"},
		{name: "percent rounds to cents", variant: Variant{ID: 1, Price: price("19.99")}, sales: []Sale{percentSale(1, "15", 1)}, want: "16.99"},
		{name: "percent rounds half cent away from zero", variant: Variant{ID: 1, Price: price("0.05")}, sales: []Sale{percentSale(1, "50", 1)}, want: "0.03"},
		{name: "percent 100 is free", variant: Variant{ID: 1, Price: price("9.99")}, sales: []Sale{percentSale(1, "100", 1)}, want: "0"},
		{name: "amount", variant: Variant{ID: 1, Price: price("25.00")}, sales: []Sale{amountSale(1, "5.5", 1)}, want: "19.50"},
		{name: "amount clamps at zero", variant: Variant{ID: 1, Price: price("4.00")}, sales: []Sale{amountSale(1, "10", 1)}, want: "0"},
		{name: "missing price is free", variant: Variant{ID: 1}, sales: []Sale{amountSale(1, "1", 1)}, want: "0"},
		{name: "unknown type keeps base", variant: Variant{ID: 1, Price: price("12.00")}, sales: []Sale{{DiscountType: "bogo", DiscountValue: dec("50"), VariantIDs: []int64{1}}}, want: "12.00"},
		{name: "percent over 100 keeps base", variant: Variant{ID: 1, Price: price("12.00")}, sales: []Sale{percentSale(1, "150", 1)}, want: "12.00"},
		{name: "negative amount keeps base", variant: Variant{ID: 1, Price: price("12.00")}, sales: []Sale{amountSale(1, "-3", 1)}, want: "12.00"},
		{
			name:    "first match wins over better discount",
			variant: Variant{ID: 7, Price: price("40.00")},
			sales:   []Sale{percentSale(1, "10", 3, 7), percentSale(2, "50", 7)},
			want:    "36.00",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DiscountedPrice(tt.variant, tt.sales)
			if !got.Equal(dec(tt.want)) {
				t.Fatalf("expected %s got %s", tt.want, got)
			}
		})
	}
}

func TestPercentSaleNeverExceedsBase(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"0.01", "0.99", "1.00", "17.35", "250.00"} {
		for pct := 0; pct <= 100; pct += 5 {
			sale := percentSale(1, decimal.NewFromInt(int64(pct)).String(), 1)
			got := DiscountedPrice(Variant{ID: 1, Price: price(base)}, []Sale{sale})
			if got.GreaterThan(dec(base)) {
				t.Fatalf("base %s pct %d produced %s above base", base, pct, got)
			}
			if got.IsNegative() {
				t.Fatalf("base %s pct %d produced negative %s", base, pct, got)
			}
		}
	}
}

func TestResolveSaleReturnsFirstMatch(t *testing.T) {
	t.Parallel()

	sales := []Sale{amountSale(10, "1", 4), percentSale(11, "5", 5), amountSale(12, "2", 5)}
	got := ResolveSale(5, sales)
	if got == nil || got.ID != 11 {
		t.Fatalf("expected sale 11, got %+v", got)
	}
	if ResolveSale(99, sales) != nil {
		t.Fatal("expected no sale for unknown variant")
	}
	if ResolveSale(5, nil) != nil {
		t.Fatal("expected no sale for empty list")
	}
}

func TestSaleActiveAt(t *testing.T) {
	t.Parallel()

	start := types.Timestamp{Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	end := types.Timestamp{Time: time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)}
	windowed := Sale{StartDate: &start, EndDate: &end}

	cases := []struct {
		at   time.Time
		sale Sale
		want bool
	}{
		{at: start.Time.Add(-time.Second), sale: windowed, want: false},
		{at: start.Time, sale: windowed, want: true},
		{at: end.Time, sale: windowed, want: true},
		{at: end.Time.Add(time.Second), sale: windowed, want: false},
		{at: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), sale: Sale{EndDate: &end}, want: true},
		{at: time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), sale: Sale{StartDate: &start}, want: true},
		{at: time.Now(), sale: Sale{}, want: true},
	}
	for i, tc := range cases {
		if got := tc.sale.ActiveAt(tc.at); got != tc.want {
			t.Fatalf("case %d: expected %v got %v", i, tc.want, got)
		}
	}

	filtered := ActiveSales([]Sale{{ID: 1, EndDate: &start}, {ID: 2}, {ID: 3, StartDate: &end}}, start.Time.Add(time.Hour))
	if len(filtered) != 1 || filtered[0].ID != 2 {
		t.Fatalf("expected only sale 2 active, got %+v", filtered)
	}
}

func TestSaleDecodesAPIPayload(t *testing.T) {
	t.Parallel()

	raw := `[{"id":3,"title":"Summer","discount_type":"percent","discount_value":25.0,
		"category":null,"start_date":"2025-06-01T00:00:00","end_date":null,"variant_ids":[11,12]}]`
	var sales []Sale
	if err := json.Unmarshal([]byte(raw), &sales); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected one sale, got %d", len(sales))
	}
	sale := sales[0]
	if sale.DisplayName() != "Summer" || sale.EndDate != nil || !sale.Targets(12) {
		t.Fatalf("unexpected sale %+v", sale)
	}
	if got := DiscountedPrice(Variant{ID: 12, Price: price("30")}, sales); !got.Equal(dec("22.50")) {
		t.Fatalf("expected 22.50 got %s", got)
	}
}

func TestResolverQuote(t *testing.T) {
	t.Parallel()

	sales := []Sale{{ID: 4, Name: "Flash", DiscountType: enums.SaleDiscountAmount, DiscountValue: dec("5"), VariantIDs: []int64{2}}}
	r := NewResolver(sales)
	sales[0].VariantIDs = nil

	q := r.Quote(Variant{ID: 2, Price: price("30")})
	if !q.OnSale || q.SaleID == nil || *q.SaleID != 4 || q.SaleName != "Flash" {
		t.Fatalf("expected on-sale quote, got %+v", q)
	}
	if !q.Price.Equal(dec("25")) || !q.OriginalPrice.Equal(dec("30")) {
		t.Fatalf("unexpected prices %+v", q)
	}

	plain := r.Quote(Variant{ID: 3, Price: price("30")})
	if plain.OnSale || !plain.Price.Equal(dec("30")) {
		t.Fatalf("expected regular price quote, got %+v", plain)
	}

	var nilResolver *Resolver
	if got := nilResolver.Price(Variant{ID: 2, Price: price("30")}); !got.Equal(dec("30")) {
		t.Fatalf("nil resolver should price at base, got %s", got)
	}
}
