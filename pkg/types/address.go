package types

import "strings"

// Address is the postal address collected at checkout.
type Address struct {
	FullName string `json:"full_name" validate:"notblank"`
	Street   string `json:"street" validate:"notblank"`
	City     string `json:"city" validate:"notblank"`
	State    string `json:"state" validate:"notblank"`
	ZipCode  string `json:"zip_code" validate:"notblank"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (a Address) Trimmed() Address {
	return Address{
		FullName: strings.TrimSpace(a.FullName),
		Street:   strings.TrimSpace(a.Street),
		City:     strings.TrimSpace(a.City),
		State:    strings.TrimSpace(a.State),
		ZipCode:  strings.TrimSpace(a.ZipCode),
	}
}

// PaymentInfo carries the card fields forwarded to the order endpoint.
type PaymentInfo struct {
	CardNumber     string `json:"card_number" validate:"notblank"`
	ExpirationDate string `json:"expiration_date" validate:"notblank"`
	CVV            string `json:"cvv" validate:"notblank"`
}
