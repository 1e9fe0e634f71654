package service

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-explorer/internal/apperrors"
	"github.com/fleshka4/pair-explorer/internal/dexmath"
	"github.com/fleshka4/pair-explorer/internal/infra/multicall"
	"github.com/fleshka4/pair-explorer/internal/metrics"
	"github.com/fleshka4/pair-explorer/internal/service/dto"
	"github.com/fleshka4/pair-explorer/internal/service/validate"
	"github.com/fleshka4/pair-explorer/internal/uniswapv2"
)

// FetchPair reads pair state and the metadata of both tokens.
//
// The pair batch must succeed. The token batch never fails the fetch: any
// field that cannot be read is replaced by its default.
func (s *PairService) FetchPair(ctx context.Context, pairAddress string) (*dto.PairRecord, error) {
	logger := s.logger.With(zap.String("pair", pairAddress))

	rec, err := s.fetchPair(ctx, logger, pairAddress)
	if err != nil {
		s.enter(logger, pairAddress, StageFailed)
		s.metrics.FetchTotal.WithLabelValues(metrics.OutcomeFailure, apperrors.KindOf(err).String()).Inc()
		logger.Warn("pair fetch failed", zap.Stringer("kind", apperrors.KindOf(err)), zap.Error(err))
		return nil, err
	}

	s.enter(logger, pairAddress, StageReady)
	s.metrics.FetchTotal.WithLabelValues(metrics.OutcomeSuccess, "").Inc()
	logger.Info("pair fetched",
		zap.String("token0", rec.Token0.Symbol),
		zap.String("token1", rec.Token1.Symbol),
		zap.String("block", rec.BlockNumber),
	)
	return rec, nil
}

// Validate checks the pair address and the configured multicall address
// without touching the network. FetchPair runs the same checks.
func (s *PairService) Validate(pairAddress string) error {
	_, _, err := s.validate(pairAddress)
	return err
}

func (s *PairService) validate(pairAddress string) (common.Address, common.Address, error) {
	pair, err := validate.PairAddressValidate(pairAddress)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	multicallAddr, err := validate.MulticallAddressValidate(s.multicallAddress)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return pair, multicallAddr, nil
}

func (s *PairService) fetchPair(ctx context.Context, logger *zap.Logger, pairAddress string) (*dto.PairRecord, error) {
	s.enter(logger, pairAddress, StageValidating)
	pair, multicallAddr, err := s.validate(pairAddress)
	if err != nil {
		return nil, err
	}

	s.enter(logger, pairAddress, StageAcquiringProvider)
	caller, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindProviderUnavailable, err, "Failed to initialize provider")
	}
	agg, err := s.newAggregator(multicallAddr, caller, s.mode)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindProviderUnavailable, err, "Failed to initialize multicall contract")
	}

	s.enter(logger, pairAddress, StageFetchingPairBatch)
	state, block, err := s.fetchPairState(ctx, agg, pair)
	if err != nil {
		s.metrics.BatchFailures.WithLabelValues(metrics.PhasePair).Inc()
		return nil, apperrors.Wrap(apperrors.KindNetworkOrAggregation, err, "Failed to fetch pair data")
	}

	s.enter(logger, pairAddress, StageFetchingTokenBatch)
	results := s.fetchTokenResults(ctx, logger, agg, state.Token0, state.Token1)
	perToken := len(uniswapv2.TokenMethods)
	meta0 := s.codec.DecodeTokenMeta(state.Token0, results[:perToken])
	meta1 := s.codec.DecodeTokenMeta(state.Token1, results[perToken:])
	s.reportFallbacks(logger, meta0)
	s.reportFallbacks(logger, meta1)

	s.enter(logger, pairAddress, StageNormalizing)
	return buildRecord(pair, state, meta0, meta1, block), nil
}

func (s *PairService) fetchPairState(
	ctx context.Context,
	agg multicall.Aggregator,
	pair common.Address,
) (uniswapv2.PairState, string, error) {
	calls := make([]multicall.Call, 0, len(uniswapv2.PairMethods))
	for _, method := range uniswapv2.PairMethods {
		data, err := s.codec.PackPair(method)
		if err != nil {
			return uniswapv2.PairState{}, "", errors.Wrap(err, "s.codec.PackPair")
		}
		calls = append(calls, multicall.Call{Target: pair, CallData: data})
	}

	start := time.Now()
	res, err := agg.Aggregate(ctx, calls)
	s.metrics.BatchDuration.WithLabelValues(metrics.PhasePair).Observe(time.Since(start).Seconds())
	if err != nil {
		return uniswapv2.PairState{}, "", errors.Wrap(err, "agg.Aggregate")
	}
	if len(res.ReturnData) < len(calls) {
		return uniswapv2.PairState{}, "", errors.Wrapf(multicall.ErrMalformedResponse,
			"insufficient pair results: expected %d, got %d", len(calls), len(res.ReturnData))
	}

	state, err := s.codec.DecodePairState(res.ReturnData)
	if err != nil {
		return uniswapv2.PairState{}, "", errors.Wrap(err, "s.codec.DecodePairState")
	}

	var block string
	if res.BlockNumber != nil {
		block = res.BlockNumber.String()
	}
	return state, block, nil
}

// fetchTokenResults returns name, symbol and decimals results for token0
// followed by token1. A failed batch yields empty results, which decode to
// defaults.
func (s *PairService) fetchTokenResults(
	ctx context.Context,
	logger *zap.Logger,
	agg multicall.Aggregator,
	token0, token1 common.Address,
) [][]byte {
	tokens := []common.Address{token0, token1}
	want := len(tokens) * len(uniswapv2.TokenMethods)
	empty := make([][]byte, want)
	for i := range empty {
		empty[i] = []byte{}
	}

	calls := make([]multicall.Call, 0, want)
	for _, token := range tokens {
		for _, method := range uniswapv2.TokenMethods {
			data, err := s.codec.PackToken(method)
			if err != nil {
				logger.Error("failed to pack token call", zap.String("method", method), zap.Error(err))
				return empty
			}
			calls = append(calls, multicall.Call{Target: token, CallData: data})
		}
	}

	start := time.Now()
	res, err := agg.Aggregate(ctx, calls)
	s.metrics.BatchDuration.WithLabelValues(metrics.PhaseToken).Observe(time.Since(start).Seconds())
	if err == nil && len(res.ReturnData) != want {
		err = errors.Wrapf(multicall.ErrMalformedResponse, "expected %d token results, got %d", want, len(res.ReturnData))
	}
	if err != nil {
		s.metrics.BatchFailures.WithLabelValues(metrics.PhaseToken).Inc()
		logger.Warn("token batch failed, using default metadata", zap.Error(err))
		return empty
	}
	return res.ReturnData
}

func (s *PairService) reportFallbacks(logger *zap.Logger, meta uniswapv2.TokenMeta) {
	for field, reason := range meta.Fallbacks() {
		s.metrics.TokenFieldFallback.WithLabelValues(field).Inc()
		logger.Debug("token metadata defaulted",
			zap.String("token", meta.Address.Hex()),
			zap.String("field", field),
			zap.Error(reason),
		)
	}
}

func (s *PairService) enter(logger *zap.Logger, pairAddress string, stage Stage) {
	logger.Debug("pair fetch stage", zap.Stringer("stage", stage))
	if s.observer != nil {
		s.observer(pairAddress, stage)
	}
}

func buildRecord(
	pair common.Address,
	state uniswapv2.PairState,
	meta0, meta1 uniswapv2.TokenMeta,
	block string,
) *dto.PairRecord {
	return &dto.PairRecord{
		PairAddress: pair.Hex(),
		Token0:      tokenRecord(meta0),
		Token1:      tokenRecord(meta1),
		Reserves: dto.ReserveRecord{
			Reserve0:          state.Reserve0.String(),
			Reserve1:          state.Reserve1.String(),
			FormattedReserve0: dexmath.FormatUnits(state.Reserve0, meta0.Decimals.Value),
			FormattedReserve1: dexmath.FormatUnits(state.Reserve1, meta1.Decimals.Value),
		},
		TotalSupply: dexmath.FormatUnits(state.TotalSupply, dexmath.LPDecimals),
		BlockNumber: block,
	}
}

func tokenRecord(meta uniswapv2.TokenMeta) dto.TokenRecord {
	return dto.TokenRecord{
		Address:  meta.Address.Hex(),
		Name:     meta.Name.Value,
		Symbol:   meta.Symbol.Value,
		Decimals: meta.Decimals.Value,
	}
}
