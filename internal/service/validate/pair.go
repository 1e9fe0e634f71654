package validate

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/pair-explorer/internal/apperrors"
	"github.com/fleshka4/pair-explorer/internal/ethaddr"
	"github.com/fleshka4/pair-explorer/internal/infra/multicall"
)

// PairAddressValidate checks the user supplied pair address.
func PairAddressValidate(address string) (common.Address, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return common.Address{}, apperrors.New(apperrors.KindInputValidation, "Please enter a pair address")
	}
	addr, ok := ethaddr.Parse(address)
	if !ok {
		return common.Address{}, apperrors.New(apperrors.KindInputValidation, "Invalid Ethereum address format")
	}
	return addr, nil
}

// MulticallAddressValidate checks the configured aggregator address.
func MulticallAddressValidate(address string) (common.Address, error) {
	addr, err := multicall.ParseAddress(address)
	switch {
	case err == nil:
		return addr, nil
	case errors.Is(err, multicall.ErrAddressMissing):
		return common.Address{}, apperrors.Wrap(apperrors.KindConfiguration, err, "Multicall address not configured")
	default:
		return common.Address{}, apperrors.Wrap(apperrors.KindConfiguration, err, "Invalid multicall address configuration")
	}
}
