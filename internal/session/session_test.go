package session

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fleshka4/pair-explorer/internal/apperrors"
	"github.com/fleshka4/pair-explorer/internal/service/dto"
	"github.com/fleshka4/pair-explorer/internal/service/mock"
)

const (
	pairA = "0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"
	pairB = "0xA478c2975Ab1Ea89e8196811F51A7B7Ade33eB11"
)

func record(address, symbol0, symbol1 string) *dto.PairRecord {
	return &dto.PairRecord{
		PairAddress: address,
		Token0:      dto.TokenRecord{Symbol: symbol0, Decimals: 6},
		Token1:      dto.TokenRecord{Symbol: symbol1, Decimals: 18},
		Reserves: dto.ReserveRecord{
			FormattedReserve0: "50000000.0",
			FormattedReserve1: "20000.0",
		},
	}
}

type recorder struct {
	mu    sync.Mutex
	views []View
}

func (r *recorder) record(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) loadingTransitions() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []bool
	prev := false
	for _, v := range r.views {
		if v.Loading != prev {
			out = append(out, v.Loading)
			prev = v.Loading
		}
	}
	return out
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, PolicyLatestRequest, p)

	p, err = ParsePolicy(" Last_Resolved ")
	require.NoError(t, err)
	require.Equal(t, PolicyLastResolved, p)

	_, err = ParsePolicy("first_wins")
	require.ErrorIs(t, err, ErrUnknownPolicy)

	require.Equal(t, "latest_request", PolicyLatestRequest.String())
}

func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("success toggles loading once", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mock.NewMockService(ctrl)
		rec := &recorder{}
		s := New(svc, WithOnChange(rec.record))

		want := record(pairA, "USDC", "WETH")
		svc.EXPECT().Validate(pairA).Return(nil)
		svc.EXPECT().FetchPair(gomock.Any(), pairA).Return(want, nil)

		s.SetPairAddress(pairA)
		view := s.Fetch(context.Background())

		require.False(t, view.Loading)
		require.Empty(t, view.Error)
		require.Same(t, want, view.Data)
		require.Equal(t, pairA, view.PairAddress)
		require.Equal(t, "0.000400", view.Price())
		require.Equal(t, []bool{true, false}, rec.loadingTransitions())
		require.Equal(t, view, s.Snapshot())
	})

	t.Run("failure keeps stale record", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mock.NewMockService(ctrl)
		s := New(svc)

		old := record(pairA, "USDC", "WETH")
		gomock.InOrder(
			svc.EXPECT().Validate(pairA).Return(nil),
			svc.EXPECT().FetchPair(gomock.Any(), pairA).Return(old, nil),
			svc.EXPECT().Validate(pairB).Return(nil),
			svc.EXPECT().FetchPair(gomock.Any(), pairB).
				Return(nil, apperrors.Wrap(apperrors.KindNetworkOrAggregation, errors.New("execution reverted"), "Failed to fetch pair data")),
		)

		s.FetchAddress(context.Background(), pairA)
		view := s.FetchAddress(context.Background(), pairB)

		require.False(t, view.Loading)
		require.Equal(t, "Error: Failed to fetch pair data: execution reverted", view.Error)
		require.Same(t, old, view.Data)
		require.Equal(t, pairB, view.PairAddress)
	})

	t.Run("rejected input does not toggle loading", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			address string
			err     error
			wantMsg string
		}{
			{
				name:    "empty address",
				address: "",
				err:     apperrors.New(apperrors.KindInputValidation, "Please enter a pair address"),
				wantMsg: "Please enter a pair address",
			},
			{
				name:    "malformed address",
				address: "0x12",
				err:     apperrors.New(apperrors.KindInputValidation, "Invalid Ethereum address format"),
				wantMsg: "Invalid Ethereum address format",
			},
			{
				name:    "multicall not configured",
				address: pairA,
				err:     apperrors.New(apperrors.KindConfiguration, "Multicall address not configured"),
				wantMsg: "Multicall address not configured",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				ctrl := gomock.NewController(t)
				svc := mock.NewMockService(ctrl)
				rec := &recorder{}
				s := New(svc, WithOnChange(rec.record))

				old := record(pairB, "DAI", "WETH")
				gomock.InOrder(
					svc.EXPECT().Validate(pairB).Return(nil),
					svc.EXPECT().FetchPair(gomock.Any(), pairB).Return(old, nil),
					svc.EXPECT().Validate(tt.address).Return(tt.err),
				)
				s.FetchAddress(context.Background(), pairB)

				rec.mu.Lock()
				before := len(rec.views)
				rec.mu.Unlock()

				s.SetPairAddress(tt.address)
				view := s.Fetch(context.Background())

				require.False(t, view.Loading)
				require.Equal(t, tt.wantMsg, view.Error)
				require.Same(t, old, view.Data)
				require.Equal(t, []bool{true, false}, rec.loadingTransitions())

				rec.mu.Lock()
				defer rec.mu.Unlock()
				require.Len(t, rec.views, before+2)
				require.Equal(t, view, rec.views[len(rec.views)-1])
			})
		}
	})

	t.Run("next fetch clears error", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := mock.NewMockService(ctrl)
		rec := &recorder{}
		s := New(svc, WithOnChange(rec.record))

		gomock.InOrder(
			svc.EXPECT().Validate("").
				Return(apperrors.New(apperrors.KindInputValidation, "Please enter a pair address")),
			svc.EXPECT().Validate(pairA).Return(nil),
			svc.EXPECT().FetchPair(gomock.Any(), pairA).Return(record(pairA, "USDC", "WETH"), nil),
		)

		view := s.Fetch(context.Background())
		require.Equal(t, "Please enter a pair address", view.Error)

		view = s.FetchAddress(context.Background(), pairA)
		require.Empty(t, view.Error)
		require.NotNil(t, view.Data)

		rec.mu.Lock()
		defer rec.mu.Unlock()
		for _, v := range rec.views {
			if v.Loading {
				require.Empty(t, v.Error)
			}
		}
	})

	t.Run("no record price", func(t *testing.T) {
		t.Parallel()

		s := New(nil)
		require.Equal(t, "N/A", s.Snapshot().Price())
	})
}

// overlap starts a fetch of pairA, then of pairB, lets pairB resolve first
// and pairA last, and returns the final view.
func overlap(t *testing.T, policy Policy) (View, *dto.PairRecord, *dto.PairRecord, *observer.ObservedLogs) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := mock.NewMockService(ctrl)
	core, logs := observer.New(zap.DebugLevel)
	rec := &recorder{}
	s := New(svc, WithPolicy(policy), WithLogger(zap.New(core)), WithOnChange(rec.record))

	recA := record(pairA, "USDC", "WETH")
	recB := record(pairB, "DAI", "WETH")

	svc.EXPECT().Validate(gomock.Any()).Return(nil).Times(2)

	startedA, releaseA := make(chan struct{}), make(chan struct{})
	startedB, releaseB := make(chan struct{}), make(chan struct{})

	svc.EXPECT().FetchPair(gomock.Any(), pairA).
		DoAndReturn(func(context.Context, string) (*dto.PairRecord, error) {
			close(startedA)
			<-releaseA
			return recA, nil
		})
	svc.EXPECT().FetchPair(gomock.Any(), pairB).
		DoAndReturn(func(context.Context, string) (*dto.PairRecord, error) {
			close(startedB)
			<-releaseB
			return recB, nil
		})

	doneA, doneB := make(chan View, 1), make(chan View, 1)
	go func() { doneA <- s.FetchAddress(context.Background(), pairA) }()
	<-startedA
	go func() { doneB <- s.FetchAddress(context.Background(), pairB) }()
	<-startedB

	require.True(t, s.Snapshot().Loading)

	close(releaseB)
	viewB := <-doneB
	require.True(t, viewB.Loading)

	close(releaseA)
	<-doneA

	final := s.Snapshot()
	require.False(t, final.Loading)
	require.Equal(t, []bool{true, false}, rec.loadingTransitions())

	return final, recA, recB, logs
}

func TestOverlappingFetches(t *testing.T) {
	t.Parallel()

	t.Run("latest request wins", func(t *testing.T) {
		t.Parallel()

		final, _, recB, logs := overlap(t, PolicyLatestRequest)
		require.Same(t, recB, final.Data)
		require.Equal(t, pairB, final.PairAddress)
		require.Equal(t, 1, logs.FilterMessage("dropping superseded fetch outcome").Len())
	})

	t.Run("last resolved wins", func(t *testing.T) {
		t.Parallel()

		final, recA, _, logs := overlap(t, PolicyLastResolved)
		require.Same(t, recA, final.Data)
		require.Equal(t, "USDC", final.Data.Token0.Symbol)
		require.Equal(t, pairA, final.Data.PairAddress)
		require.Equal(t, 0, logs.FilterMessage("dropping superseded fetch outcome").Len())
	})
}
