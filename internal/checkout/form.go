package checkout

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
	"github.com/sunkissed-southern/storefront/pkg/types"
)

// IncompleteFormMessage is the single message shown for any missing field.
const IncompleteFormMessage = "Please complete all required fields before placing your order."

// Form is what the shopper fills in at checkout. BillingAddress is only
// read when BillingSameAsShipping is false.
type Form struct {
	ShippingAddress       types.Address     `json:"shipping_address"`
	BillingSameAsShipping bool              `json:"billing_same_as_shipping"`
	BillingAddress        *types.Address    `json:"billing_address" validate:"-"`
	PaymentInfo           types.PaymentInfo `json:"payment_info"`
}

// Billing returns the address billed for the order.
func (f Form) Billing() types.Address {
	if f.BillingSameAsShipping || f.BillingAddress == nil {
		return f.ShippingAddress
	}
	return *f.BillingAddress
}

var formValidate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// ValidateForm checks the whole form at once. Any gap yields one
// VALIDATION_ERROR listing every missing field.
func ValidateForm(f Form) error {
	missing := map[string]string{}
	collectMissing(missing, "", formValidate.Struct(f))
	if !f.BillingSameAsShipping {
		if f.BillingAddress == nil {
			missing["billing_address"] = "is required"
		} else {
			collectMissing(missing, "billing_address.", formValidate.Struct(f.BillingAddress))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, IncompleteFormMessage).WithDetails(missing)
}

func collectMissing(into map[string]string, prefix string, err error) {
	if err == nil {
		return
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		into["form"] = err.Error()
		return
	}
	for _, fe := range errs {
		field := fe.Namespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		into[prefix+field] = "is required"
	}
}
