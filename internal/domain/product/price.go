package product

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/inputerr"
)

// priceRe matches a non-negative amount with optional thousands separators
// and at most two fractional digits after the currency symbol is removed.
var priceRe = regexp.MustCompile(`^(\d{1,3}(,\d{3})+|\d+)(\.\d{1,2})?$`)

// ParsePrice parses a displayed price such as "$1,299.99" into an exact
// decimal. It never returns a silent zero: anything that is not a plain
// non-negative amount is reported as a FormatError.
func ParsePrice(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, inputerr.Format("price", text, "price is empty")
	}
	if !priceRe.MatchString(s) {
		return decimal.Zero, inputerr.Format("price", text, "")
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, inputerr.Format("price", text, "")
	}
	return d, nil
}

// FormatPrice renders an amount the way it is displayed: a dollar sign and
// exactly two fractional digits. Rounding happens only here.
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
