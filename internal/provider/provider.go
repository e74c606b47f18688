package provider

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// SourceTag names where a quote came from.
type SourceTag string

const (
	SourceGame      SourceTag = "game"
	SourceReal      SourceTag = "real"
	SourceReference SourceTag = "reference"
)

// ErrSourceUnavailable marks a single source that produced no usable price.
// It never leaves an Adapter; callers see an absent quote instead.
var ErrSourceUnavailable = errors.New("price source unavailable")

// Price is an optional decimal. The zero value is absent.
type Price struct {
	value   decimal.Decimal
	present bool
}

func Present(v decimal.Decimal) Price { return Price{value: v, present: true} }

func Absent() Price { return Price{} }

func (p Price) IsPresent() bool { return p.present }

// Value returns the decimal and whether it is present.
func (p Price) Value() (decimal.Decimal, bool) { return p.value, p.present }

// Or returns p when present, otherwise fallback.
func (p Price) Or(fallback Price) Price {
	if p.present {
		return p
	}
	return fallback
}

// Round rounds a present price to places decimals; absent stays absent.
func (p Price) Round(places int32) Price {
	if !p.present {
		return p
	}
	return Present(p.value.Round(places))
}

func (p Price) String() string {
	if !p.present {
		return "absent"
	}
	return p.value.String()
}

// MarshalJSON writes a bare JSON number, or null when absent.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.present {
		return []byte("null"), nil
	}
	return []byte(p.value.String()), nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*p = Absent()
		return nil
	}
	v, err := decimal.NewFromString(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*p = Present(v)
	return nil
}

// Quote is a price tagged with the source that produced it.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  Price     `json:"price"`
	Source SourceTag `json:"source"`
}

// Source yields one quote per ticker. A non-nil error is a fault the caller
// must surface; an unavailable price is reported as an absent Quote.
type Source interface {
	Name() string
	Quote(ctx context.Context, ticker string) (Quote, error)
}

// Fetcher is a raw network lookup that may fail for any reason.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, ticker string) (decimal.Decimal, error)
}

var numericPrefix = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+))([eE][+-]?\d+)?`)

// ParseDecimal reads the leading numeric part of s, ignoring trailing junk
// ("12.5abc" -> 12.5, "1e1x" -> 10). It reports false when s does not start
// with a number.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	m := numericPrefix.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return decimal.Zero, false
	}
	mantissa := strings.TrimSuffix(strings.TrimPrefix(m[1], "+"), ".")
	v, err := decimal.NewFromString(mantissa + m[2])
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

var priceNoise = regexp.MustCompile(`[^0-9.\-]+`)

// ParsePriceText strips currency symbols, separators and anything that is not
// a digit, '.' or '-' before parsing. Unparseable text is absent, not an error.
func ParsePriceText(s string) Price {
	if s == "" {
		return Absent()
	}
	v, ok := ParseDecimal(priceNoise.ReplaceAllString(s, ""))
	if !ok {
		return Absent()
	}
	return Present(v)
}
