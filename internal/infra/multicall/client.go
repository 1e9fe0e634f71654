package multicall

//go:generate mockgen -destination=mock/aggregator.go -package=mock . Aggregator

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/fleshka4/pair-explorer/internal/ethaddr"
	"github.com/fleshka4/pair-explorer/internal/infra/provider"
)

const multicallABIJSON = `[
	{"inputs":[{"components":[{"internalType":"address","name":"target","type":"address"},{"internalType":"bytes","name":"callData","type":"bytes"}],"internalType":"struct Multicall.Call[]","name":"calls","type":"tuple[]"}],"name":"aggregate","outputs":[{"internalType":"uint256","name":"blockNumber","type":"uint256"},{"internalType":"bytes[]","name":"returnData","type":"bytes[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"bool","name":"requireSuccess","type":"bool"},{"components":[{"internalType":"address","name":"target","type":"address"},{"internalType":"bytes","name":"callData","type":"bytes"}],"internalType":"struct Multicall2.Call[]","name":"calls","type":"tuple[]"}],"name":"tryAggregate","outputs":[{"components":[{"internalType":"bool","name":"success","type":"bool"},{"internalType":"bytes","name":"returnData","type":"bytes"}],"internalType":"struct Multicall2.Result[]","name":"returnData","type":"tuple[]"}],"stateMutability":"view","type":"function"}
]`

const (
	methodAggregate    = "aggregate"
	methodTryAggregate = "tryAggregate"
)

var (
	// ErrAddressMissing is returned when no multicall address is configured.
	ErrAddressMissing = errors.New("multicall address not configured")

	// ErrAddressInvalid is returned when the configured multicall address is malformed.
	ErrAddressInvalid = errors.New("invalid multicall address")

	// ErrNoCalls is returned when Aggregate is called with an empty batch.
	ErrNoCalls = errors.New("empty call batch")

	// ErrMalformedResponse is returned when the result list does not match the request.
	ErrMalformedResponse = errors.New("malformed multicall response")
)

// Mode selects the aggregator method used for a batch.
type Mode string

const (
	// ModeAggregate uses aggregate(), where a single revert fails the whole batch.
	ModeAggregate Mode = "aggregate"
	// ModeTryAggregate uses tryAggregate(false, ...), which isolates failing calls.
	ModeTryAggregate Mode = "try_aggregate"
)

// ParseMode converts a config value into a Mode. Empty means ModeAggregate.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAggregate:
		return ModeAggregate, nil
	case ModeTryAggregate:
		return ModeTryAggregate, nil
	default:
		return "", errors.Errorf("unknown multicall mode %q", s)
	}
}

// ParseAddress validates a configured multicall address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, ErrAddressMissing
	}
	addr, ok := ethaddr.Parse(s)
	if !ok {
		return common.Address{}, errors.Wrapf(ErrAddressInvalid, "%q", s)
	}
	return addr, nil
}

// Call is a single read call executed by the aggregator.
type Call struct {
	Target   common.Address
	CallData []byte
}

// Result holds the raw return data of a batch, aligned with the submitted calls.
type Result struct {
	// BlockNumber is the block the batch was executed at. It is nil in
	// ModeTryAggregate, which does not report it.
	BlockNumber *big.Int
	ReturnData  [][]byte
}

// Aggregator executes a batch of read calls in a single eth_call.
type Aggregator interface {
	Aggregate(ctx context.Context, calls []Call) (*Result, error)
}

type tryResult struct {
	Success    bool
	ReturnData []byte
}

type client struct {
	caller  provider.EthCaller
	address common.Address
	mode    Mode
	abi     abi.ABI
}

var (
	multicallABI     abi.ABI
	multicallABIOnce sync.Once
	multicallABIErr  error
)

func multicallABIInstance() (abi.ABI, error) {
	multicallABIOnce.Do(func() {
		multicallABI, multicallABIErr = abi.JSON(strings.NewReader(multicallABIJSON))
	})
	return multicallABI, multicallABIErr
}

// NewAggregator creates an Aggregator for the multicall contract at address.
func NewAggregator(address common.Address, caller provider.EthCaller, mode Mode) (Aggregator, error) {
	if caller == nil {
		return nil, errors.New("caller is nil")
	}

	parsed, err := multicallABIInstance()
	if err != nil {
		return nil, errors.Wrap(err, "abi.JSON")
	}

	if mode == "" {
		mode = ModeAggregate
	}

	return &client{
		caller:  caller,
		address: address,
		mode:    mode,
		abi:     parsed,
	}, nil
}

// Aggregate packs calls into one static call and returns the raw results in
// request order.
func (c *client) Aggregate(ctx context.Context, calls []Call) (*Result, error) {
	if len(calls) == 0 {
		return nil, ErrNoCalls
	}

	switch c.mode {
	case ModeTryAggregate:
		return c.tryAggregate(ctx, calls)
	default:
		return c.aggregate(ctx, calls)
	}
}

func (c *client) aggregate(ctx context.Context, calls []Call) (*Result, error) {
	out, err := c.call(ctx, methodAggregate, calls)
	if err != nil {
		return nil, err
	}

	const requiredSize = 2
	if len(out) < requiredSize {
		return nil, errors.Wrapf(ErrMalformedResponse, "expected %d outputs, got %d", requiredSize, len(out))
	}

	blockNumber, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Wrap(ErrMalformedResponse, "failed to cast blockNumber to *big.Int")
	}
	returnData, ok := out[1].([][]byte)
	if !ok {
		return nil, errors.Wrap(ErrMalformedResponse, "failed to cast returnData to [][]byte")
	}
	if len(returnData) != len(calls) {
		return nil, errors.Wrapf(ErrMalformedResponse, "expected %d results, got %d", len(calls), len(returnData))
	}

	return &Result{BlockNumber: blockNumber, ReturnData: returnData}, nil
}

func (c *client) tryAggregate(ctx context.Context, calls []Call) (*Result, error) {
	out, err := c.call(ctx, methodTryAggregate, false, calls)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.Wrap(ErrMalformedResponse, "empty tryAggregate output")
	}

	results := *abi.ConvertType(out[0], new([]tryResult)).(*[]tryResult)
	if len(results) != len(calls) {
		return nil, errors.Wrapf(ErrMalformedResponse, "expected %d results, got %d", len(calls), len(results))
	}

	returnData := make([][]byte, len(results))
	for i, r := range results {
		if !r.Success {
			// An empty payload makes the decoders fall back for this call.
			returnData[i] = []byte{}
			continue
		}
		returnData[i] = r.ReturnData
	}

	return &Result{ReturnData: returnData}, nil
}

func (c *client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrap(err, "c.abi.Pack")
	}

	res, err := c.caller.CallContract(
		ctx,
		ethereum.CallMsg{
			To:   &c.address,
			Data: data,
		},
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "c.caller.CallContract")
	}

	out, err := c.abi.Unpack(method, res)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedResponse, err.Error())
	}

	return out, nil
}
