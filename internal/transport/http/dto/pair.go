package dto

import (
	sdto "github.com/fleshka4/pair-explorer/internal/service/dto"
	"github.com/fleshka4/pair-explorer/internal/session"
)

// AddressQuery is the parsed address query parameter.
type AddressQuery struct {
	Address string
	Present bool
}

// PairRequest represents a parsed HTTP request for the /pair endpoint.
type PairRequest struct {
	Address string
}

// TokenResponse is the JSON form of a pair token.
type TokenResponse struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// ReservesResponse is the JSON form of pair reserves.
type ReservesResponse struct {
	Reserve0          string `json:"reserve0"`
	Reserve1          string `json:"reserve1"`
	FormattedReserve0 string `json:"formattedReserve0"`
	FormattedReserve1 string `json:"formattedReserve1"`
}

// PairResponse is the JSON form of a fetched pair.
type PairResponse struct {
	PairAddress string           `json:"pairAddress"`
	Token0      TokenResponse    `json:"token0"`
	Token1      TokenResponse    `json:"token1"`
	Reserves    ReservesResponse `json:"reserves"`
	TotalSupply string           `json:"totalSupply"`
	BlockNumber string           `json:"blockNumber,omitempty"`
	Price       string           `json:"price"`
}

// SessionResponse is the JSON form of the session state.
type SessionResponse struct {
	PairAddress string        `json:"pairAddress"`
	Data        *PairResponse `json:"data"`
	Loading     bool          `json:"loading"`
	Error       string        `json:"error"`
	Price       string        `json:"price"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewPairResponse converts a service record. It returns nil for a nil record.
func NewPairResponse(rec *sdto.PairRecord) *PairResponse {
	if rec == nil {
		return nil
	}

	return &PairResponse{
		PairAddress: rec.PairAddress,
		Token0:      newTokenResponse(rec.Token0),
		Token1:      newTokenResponse(rec.Token1),
		Reserves: ReservesResponse{
			Reserve0:          rec.Reserves.Reserve0,
			Reserve1:          rec.Reserves.Reserve1,
			FormattedReserve0: rec.Reserves.FormattedReserve0,
			FormattedReserve1: rec.Reserves.FormattedReserve1,
		},
		TotalSupply: rec.TotalSupply,
		BlockNumber: rec.BlockNumber,
		Price:       rec.Price(),
	}
}

// NewSessionResponse converts a session view.
func NewSessionResponse(v session.View) SessionResponse {
	return SessionResponse{
		PairAddress: v.PairAddress,
		Data:        NewPairResponse(v.Data),
		Loading:     v.Loading,
		Error:       v.Error,
		Price:       v.Price(),
	}
}

func newTokenResponse(t sdto.TokenRecord) TokenResponse {
	return TokenResponse{
		Address:  t.Address,
		Name:     t.Name,
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	}
}
