package uniswapv2

import (
	"bytes"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const (
	// NotAvailable replaces name and symbol when they cannot be decoded.
	NotAvailable = "N/A"

	// DefaultDecimals replaces decimals when they cannot be decoded.
	DefaultDecimals uint8 = 18
)

// TokenMethods lists the per-token calls in batch order.
var TokenMethods = []string{MethodName, MethodSymbol, MethodDecimals}

// ErrEmptyResult is the fallback reason for a call that returned no data,
// either because the token does not implement it or the batch was dropped.
var ErrEmptyResult = errors.New("empty call result")

// Field is a decoded value that records whether a default was substituted.
type Field[T any] struct {
	Value    T
	Fallback bool
	Reason   error
}

func resolved[T any](v T) Field[T] {
	return Field[T]{Value: v}
}

func defaulted[T any](v T, reason error) Field[T] {
	return Field[T]{Value: v, Fallback: true, Reason: reason}
}

// TokenMeta is the decoded ERC20 metadata of one token.
type TokenMeta struct {
	Address  common.Address
	Name     Field[string]
	Symbol   Field[string]
	Decimals Field[uint8]
}

// Fallbacks returns the names of the fields that were defaulted.
func (m TokenMeta) Fallbacks() map[string]error {
	out := make(map[string]error)
	if m.Name.Fallback {
		out[MethodName] = m.Name.Reason
	}
	if m.Symbol.Fallback {
		out[MethodSymbol] = m.Symbol.Reason
	}
	if m.Decimals.Fallback {
		out[MethodDecimals] = m.Decimals.Reason
	}
	return out
}

// DecodeTokenMeta decodes name, symbol and decimals results aligned with
// TokenMethods. Missing entries fall back like empty ones.
func (c *Codec) DecodeTokenMeta(token common.Address, results [][]byte) TokenMeta {
	at := func(i int) []byte {
		if i < len(results) {
			return results[i]
		}
		return nil
	}

	return TokenMeta{
		Address:  token,
		Name:     c.DecodeString(MethodName, at(0)),
		Symbol:   c.DecodeString(MethodSymbol, at(1)),
		Decimals: c.DecodeDecimals(at(2)),
	}
}

// DecodeString decodes name or symbol. A bytes32 encoding is accepted when
// the string decoding fails; otherwise NotAvailable is returned.
func (c *Codec) DecodeString(method string, data []byte) Field[string] {
	if len(data) == 0 {
		return defaulted(NotAvailable, ErrEmptyResult)
	}

	out, err := c.tokenABI.Unpack(method, data)
	if err == nil {
		if len(out) > 0 {
			if s, isString := out[0].(string); isString {
				return resolved(s)
			}
		}
		err = errors.Errorf("failed to cast %s result to string", method)
	}

	if s, b32Err := c.decodeBytes32(method, data); b32Err == nil {
		return resolved(s)
	}

	return defaulted(NotAvailable, errors.Wrapf(err, "decode %s", method))
}

func (c *Codec) decodeBytes32(method string, data []byte) (string, error) {
	out, err := c.tokenBytes32ABI.Unpack(method, data)
	if err != nil {
		return "", errors.Wrap(err, "c.tokenBytes32ABI.Unpack")
	}
	if len(out) == 0 {
		return "", errors.Errorf("empty %s output", method)
	}

	raw, isBytes := out[0].([32]byte)
	if !isBytes {
		return "", errors.Errorf("failed to cast %s result to bytes32", method)
	}

	trimmed := bytes.TrimRight(raw[:], "\x00")
	if len(trimmed) == 0 || !utf8.Valid(trimmed) || bytes.IndexFunc(trimmed, isControl) >= 0 {
		return "", errors.Errorf("%s is not a printable bytes32 string", method)
	}
	return string(trimmed), nil
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// DecodeDecimals decodes decimals, defaulting to DefaultDecimals.
func (c *Codec) DecodeDecimals(data []byte) Field[uint8] {
	if len(data) == 0 {
		return defaulted(DefaultDecimals, ErrEmptyResult)
	}

	out, err := c.tokenABI.Unpack(MethodDecimals, data)
	if err != nil {
		return defaulted(DefaultDecimals, errors.Wrap(err, "c.tokenABI.Unpack"))
	}
	if len(out) == 0 {
		return defaulted(DefaultDecimals, errors.New("empty decimals output"))
	}

	decimals, isUint8 := out[0].(uint8)
	if !isUint8 {
		return defaulted(DefaultDecimals, errors.New("failed to cast decimals to uint8"))
	}
	return resolved(decimals)
}
