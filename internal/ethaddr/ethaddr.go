// Package ethaddr parses user and config supplied account addresses.
package ethaddr

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Parse accepts a 20-byte hex address with or without the 0x prefix.
// All-lowercase and all-uppercase forms carry no checksum; a mixed-case
// address must match its EIP-55 checksum.
func Parse(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}

	body := s
	if len(body) >= 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		body = body[2:]
	}
	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		mixed, err := common.NewMixedcaseAddressFromString("0x" + body)
		if err != nil || !mixed.ValidChecksum() {
			return common.Address{}, false
		}
	}

	return common.HexToAddress(s), true
}

// Valid reports whether Parse accepts s.
func Valid(s string) bool {
	_, ok := Parse(s)
	return ok
}
