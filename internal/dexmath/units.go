package dexmath

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// NotAvailable is reported when a derived value is undefined.
	NotAvailable = "N/A"

	// LPDecimals is the precision assumed for Uniswap V2 LP tokens.
	LPDecimals uint8 = 18

	priceRatioPlaces = 6
)

// ErrPrecisionLoss is returned by ParseUnits when the value has more
// fractional digits than the token precision allows.
var ErrPrecisionLoss = errors.New("value exceeds token precision")

// FormatUnits renders a raw on-chain integer as a decimal string using the
// token precision. The result is exact and always carries a fractional part,
// e.g. 1500000 with 6 decimals is "1.5" and 10^18 with 18 decimals is "1.0".
func FormatUnits(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0.0"
	}

	s := decimal.NewFromBigInt(value, -int32(decimals)).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseUnits is the inverse of FormatUnits.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrap(err, "decimal.NewFromString")
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, errors.Wrapf(ErrPrecisionLoss, "%s with %d decimals", s, decimals)
	}

	return shifted.BigInt(), nil
}

// PriceRatio returns reserve1/reserve0 of two formatted reserves rounded to
// six fractional digits. The ratio is NotAvailable when reserve0 is zero.
func PriceRatio(formattedReserve0, formattedReserve1 string) string {
	r0, err := decimal.NewFromString(formattedReserve0)
	if err != nil || r0.IsZero() {
		return NotAvailable
	}
	r1, err := decimal.NewFromString(formattedReserve1)
	if err != nil {
		return NotAvailable
	}

	return r1.DivRound(r0, priceRatioPlaces).StringFixed(priceRatioPlaces)
}
