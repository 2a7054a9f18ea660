package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	priceMaxDigits     = 5
	priceDecimalPlaces = 2
)

// Price parse errors. Their text is shown to API clients verbatim.
var (
	ErrPriceInvalid       = errors.New("A valid number is required.")
	ErrPriceDigits        = errors.New("Ensure that there are no more than 5 digits in total.")
	ErrPriceDecimalPlaces = errors.New("Ensure that there are no more than 2 decimal places.")
	ErrPriceWholeDigits   = errors.New("Ensure that there are no more than 3 digits before the decimal point.")
	ErrPriceNegative      = errors.New("Ensure this value is greater than or equal to 0.")
)

// Price is a non-negative amount with two decimal places held in cents.
// It is stored as decimal(5,2) and serialized as a string such as "5.00".
type Price int64

// ParsePrice parses a decimal literal enforcing decimal(5,2) bounds.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrPriceInvalid
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrPriceInvalid
	}
	return priceFromDecimal(d)
}

func priceFromDecimal(d decimal.Decimal) (Price, error) {
	coeff := d.Coefficient()
	coeff.Abs(coeff)
	ndigits := len(coeff.String())
	exp := int(d.Exponent())

	var digits, decimals int
	switch {
	case exp >= 0:
		digits, decimals = ndigits+exp, 0
	case -exp > ndigits:
		digits, decimals = -exp, -exp
	default:
		digits, decimals = ndigits, -exp
	}

	if digits > priceMaxDigits {
		return 0, ErrPriceDigits
	}
	if decimals > priceDecimalPlaces {
		return 0, ErrPriceDecimalPlaces
	}
	if digits-decimals > priceMaxDigits-priceDecimalPlaces {
		return 0, ErrPriceWholeDigits
	}
	if d.IsNegative() {
		return 0, ErrPriceNegative
	}
	return Price(d.Shift(priceDecimalPlaces).IntPart()), nil
}

// Decimal returns p as a decimal with two places.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -priceDecimalPlaces)
}

func (p Price) String() string {
	return p.Decimal().StringFixed(priceDecimalPlaces)
}

// MarshalJSON renders the price as a quoted fixed-point string.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrPriceInvalid
	}

	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrPriceInvalid
		}
	}

	v, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Value implements driver.Valuer.
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner for the numeric representations drivers return.
func (p *Price) Scan(value any) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case nil:
		*p = 0
		return nil
	case int64:
		d = decimal.NewFromInt(v)
	case float64:
		d = decimal.NewFromFloat(v)
	case []byte:
		parsed, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("scan price %q: %w", v, err)
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("scan price %q: %w", v, err)
		}
		d = parsed
	default:
		return fmt.Errorf("scan price: unsupported type %T", value)
	}
	*p = Price(d.Round(priceDecimalPlaces).Shift(priceDecimalPlaces).IntPart())
	return nil
}

// PriceFromCents builds a Price from an integer amount of cents.
func PriceFromCents(cents int64) Price {
	return Price(cents)
}

// Cents returns the amount in cents.
func (p Price) Cents() int64 {
	return int64(p)
}
