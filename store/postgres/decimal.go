package postgres

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// parseDecimal reads NUMERIC columns selected as ::text.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad numeric %q: %w", s, err)
	}
	return d, nil
}
