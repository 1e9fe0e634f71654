package uniswapv2

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// Pair contract methods.
const (
	MethodToken0      = "token0"
	MethodToken1      = "token1"
	MethodGetReserves = "getReserves"
	MethodTotalSupply = "totalSupply"
)

// ERC20 metadata methods.
const (
	MethodName     = "name"
	MethodSymbol   = "symbol"
	MethodDecimals = "decimals"
)

const pairABIJSON = `[
	{"inputs":[],"name":"token0","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"token1","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getReserves","outputs":[{"internalType":"uint112","name":"_reserve0","type":"uint112"},{"internalType":"uint112","name":"_reserve1","type":"uint112"},{"internalType":"uint32","name":"_blockTimestampLast","type":"uint32"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"totalSupply","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const tokenABIJSON = `[
	{"inputs":[],"name":"name","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"symbol","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// Some early tokens (MKR, SAI) return bytes32 metadata instead of string.
const tokenBytes32ABIJSON = `[
	{"inputs":[],"name":"name","outputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"symbol","outputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"stateMutability":"view","type":"function"}
]`

// Codec encodes niladic pair/token calls and decodes their return data.
type Codec struct {
	pairABI         abi.ABI
	tokenABI        abi.ABI
	tokenBytes32ABI abi.ABI
}

// NewCodec parses the pair and token ABIs.
func NewCodec() (*Codec, error) {
	pairABI, err := abi.JSON(strings.NewReader(pairABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON pair")
	}
	tokenABI, err := abi.JSON(strings.NewReader(tokenABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON token")
	}
	tokenBytes32ABI, err := abi.JSON(strings.NewReader(tokenBytes32ABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON token bytes32")
	}

	return &Codec{
		pairABI:         pairABI,
		tokenABI:        tokenABI,
		tokenBytes32ABI: tokenBytes32ABI,
	}, nil
}

// PackPair returns the calldata for a niladic pair method.
func (c *Codec) PackPair(method string) ([]byte, error) {
	data, err := c.pairABI.Pack(method)
	if err != nil {
		return nil, errors.Wrap(err, "c.pairABI.Pack")
	}
	return data, nil
}

// PackToken returns the calldata for a niladic ERC20 metadata method.
func (c *Codec) PackToken(method string) ([]byte, error) {
	data, err := c.tokenABI.Pack(method)
	if err != nil {
		return nil, errors.Wrap(err, "c.tokenABI.Pack")
	}
	return data, nil
}
