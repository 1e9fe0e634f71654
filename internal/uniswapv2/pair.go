package uniswapv2

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// PairMethods lists the pair batch in the order its results are decoded.
var PairMethods = []string{MethodToken0, MethodToken1, MethodGetReserves, MethodTotalSupply}

// PairState is the decoded result of the pair batch.
type PairState struct {
	Token0      common.Address
	Token1      common.Address
	Reserve0    *big.Int
	Reserve1    *big.Int
	TotalSupply *big.Int
}

// DecodePairState decodes results aligned with PairMethods.
func (c *Codec) DecodePairState(results [][]byte) (PairState, error) {
	if len(results) < len(PairMethods) {
		return PairState{}, errors.Errorf("insufficient pair results: expected %d, got %d", len(PairMethods), len(results))
	}

	token0, err := c.DecodeAddress(MethodToken0, results[0])
	if err != nil {
		return PairState{}, errors.Wrap(err, "c.DecodeAddress token0")
	}
	token1, err := c.DecodeAddress(MethodToken1, results[1])
	if err != nil {
		return PairState{}, errors.Wrap(err, "c.DecodeAddress token1")
	}
	r0, r1, err := c.DecodeReserves(results[2])
	if err != nil {
		return PairState{}, errors.Wrap(err, "c.DecodeReserves")
	}
	supply, err := c.DecodeTotalSupply(results[3])
	if err != nil {
		return PairState{}, errors.Wrap(err, "c.DecodeTotalSupply")
	}

	return PairState{
		Token0:      token0,
		Token1:      token1,
		Reserve0:    r0,
		Reserve1:    r1,
		TotalSupply: supply,
	}, nil
}

// DecodeAddress decodes the result of token0 or token1.
func (c *Codec) DecodeAddress(method string, data []byte) (common.Address, error) {
	out, err := c.pairABI.Unpack(method, data)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "c.pairABI.Unpack")
	}
	if len(out) == 0 {
		return common.Address{}, errors.Errorf("empty %s output", method)
	}

	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, errors.Errorf("failed to cast %s result to address", method)
	}
	return addr, nil
}

// DecodeReserves decodes getReserves into reserve0 and reserve1.
// The last-update timestamp is dropped.
func (c *Codec) DecodeReserves(data []byte) (*big.Int, *big.Int, error) {
	out, err := c.pairABI.Unpack(MethodGetReserves, data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "c.pairABI.Unpack")
	}

	const requiredSize = 2
	if len(out) < requiredSize {
		return nil, nil, errors.Errorf("insufficient outputs from getReserves call: expected %d, got %d", requiredSize, len(out))
	}

	reserves := make([]*big.Int, requiredSize)
	reserveNames := []string{"reserve0", "reserve1"}

	for i := 0; i < requiredSize; i++ {
		reserve, ok := out[i].(*big.Int)
		if !ok {
			return nil, nil, errors.Errorf("failed to cast %s to *big.Int", reserveNames[i])
		}
		reserves[i] = new(big.Int).Set(reserve)
	}

	return reserves[0], reserves[1], nil
}

// DecodeTotalSupply decodes the LP token supply.
func (c *Codec) DecodeTotalSupply(data []byte) (*big.Int, error) {
	out, err := c.pairABI.Unpack(MethodTotalSupply, data)
	if err != nil {
		return nil, errors.Wrap(err, "c.pairABI.Unpack")
	}
	if len(out) == 0 {
		return nil, errors.New("empty totalSupply output")
	}

	supply, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("failed to cast totalSupply to *big.Int")
	}
	return new(big.Int).Set(supply), nil
}
