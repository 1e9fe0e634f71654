package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-explorer/internal/infra/multicall"
	"github.com/fleshka4/pair-explorer/internal/infra/provider"
	"github.com/fleshka4/pair-explorer/internal/metrics"
	"github.com/fleshka4/pair-explorer/internal/service/dto"
	"github.com/fleshka4/pair-explorer/internal/uniswapv2"
)

//go:generate mockgen -destination=mock/service.go -package=mock . Service

// Service represents interface for business logic.
type Service interface {
	Validate(pairAddress string) error
	FetchPair(ctx context.Context, pairAddress string) (*dto.PairRecord, error)
}

type aggregatorFactory func(address common.Address, caller provider.EthCaller, mode multicall.Mode) (multicall.Aggregator, error)

// PairService resolves a pair address into a PairRecord with two
// aggregated batches.
type PairService struct {
	provider         provider.Provider
	multicallAddress string
	mode             multicall.Mode
	codec            *uniswapv2.Codec
	newAggregator    aggregatorFactory
	logger           *zap.Logger
	metrics          *metrics.Metrics
	observer         StageObserver
}

// Option configures PairService.
type Option func(*PairService)

// WithMode selects how the aggregator reports per-call failures.
func WithMode(mode multicall.Mode) Option {
	return func(s *PairService) {
		s.mode = mode
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *PairService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the collectors fetches are reported to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *PairService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithStageObserver sets a callback invoked on every stage transition.
func WithStageObserver(observer StageObserver) Option {
	return func(s *PairService) {
		s.observer = observer
	}
}

// NewPairService creates PairService. The multicall address is validated on
// every fetch, so an empty one is accepted here.
func NewPairService(p provider.Provider, multicallAddress string, opts ...Option) (*PairService, error) {
	if p == nil {
		return nil, errors.New("provider is nil")
	}

	codec, err := uniswapv2.NewCodec()
	if err != nil {
		return nil, errors.Wrap(err, "uniswapv2.NewCodec")
	}

	s := &PairService{
		provider:         p,
		multicallAddress: multicallAddress,
		mode:             multicall.ModeAggregate,
		codec:            codec,
		newAggregator:    multicall.NewAggregator,
		logger:           zap.NewNop(),
		metrics:          metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}
