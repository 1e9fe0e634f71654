package dto

import "github.com/fleshka4/pair-explorer/internal/dexmath"

// TokenRecord holds ERC20 metadata of one pair token. Name and Symbol are
// "N/A" and Decimals is 18 when the token did not return them.
type TokenRecord struct {
	Address  string
	Name     string
	Symbol   string
	Decimals uint8
}

// ReserveRecord holds raw and decimal-normalized reserves.
type ReserveRecord struct {
	Reserve0          string
	Reserve1          string
	FormattedReserve0 string
	FormattedReserve1 string
}

// PairRecord is the result of one successful pair fetch.
type PairRecord struct {
	PairAddress string
	Token0      TokenRecord
	Token1      TokenRecord
	Reserves    ReserveRecord
	// TotalSupply is the LP supply formatted with 18 decimals.
	TotalSupply string
	// BlockNumber is the block the pair batch was read at, empty if unknown.
	BlockNumber string
}

// Price returns how many token1 one token0 is worth, or "N/A" when the
// token0 reserve is empty.
func (r *PairRecord) Price() string {
	if r == nil {
		return dexmath.NotAvailable
	}
	return dexmath.PriceRatio(r.Reserves.FormattedReserve0, r.Reserves.FormattedReserve1)
}
