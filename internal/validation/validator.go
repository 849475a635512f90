package validation

import (
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

var (
	expiryMonthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	expiryYearPattern  = regexp.MustCompile(`^20\d{2}$`)
)

// messages maps a JSON field to its message per failed tag. The "" entry is
// used for any tag without its own message. Blank strings read as missing.
var messages = map[string]map[string]string{
	"cardNumber": {
		"required": "Card number is required.",
		"notblank": "Card number is required.",
		"":         "Card number should be 16 digits.",
	},
	"expiryMonth": {
		"required": "Expiry month is required.",
		"notblank": "Expiry month is required.",
		"":         "Expiry month should be MM format.",
	},
	"expiryYear": {
		"required": "Expiry year is required.",
		"notblank": "Expiry year is required.",
		"":         "Expiry year should be YYYY format.",
	},
	"cvv": {
		"required": "CVV is required.",
		"notblank": "CVV is required.",
		"":         "CVV should be 3 or 4 digits.",
	},
	"amount": {
		"required": "Amount is required.",
		"":         "Amount should be positive.",
	},
	"currency": {
		"required": "Currency is required.",
		"notblank": "Currency is required.",
	},
	"idempotencyKey": {
		"required": "Idempotency Key is required.",
		"notblank": "Idempotency Key is required.",
	},
}

// New returns a validator that reports fields by their JSON name and knows
// the card expiry formats and decimal amounts.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// compare decimals numerically so gt=0 works on amounts
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	// registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("expiry_month", matches(expiryMonthPattern))
	_ = v.RegisterValidation("expiry_year", matches(expiryYearPattern))

	return v
}

func matches(re *regexp.Regexp) validatorv10.Func {
	return func(fl validatorv10.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func messageFor(fe validatorv10.FieldError) string {
	byTag, ok := messages[fe.Field()]
	if !ok {
		return fe.Error()
	}
	if msg, ok := byTag[fe.Tag()]; ok {
		return msg
	}
	if msg, ok := byTag[""]; ok {
		return msg
	}
	return fe.Error()
}
