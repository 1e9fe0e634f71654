package session

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/pair-explorer/internal/apperrors"
	"github.com/fleshka4/pair-explorer/internal/service"
	"github.com/fleshka4/pair-explorer/internal/service/dto"
)

// Policy decides which of several overlapping fetches publishes its outcome.
type Policy int

const (
	// PolicyLatestRequest publishes only the outcome of the most recently
	// started fetch. Outcomes of superseded fetches are dropped.
	PolicyLatestRequest Policy = iota
	// PolicyLastResolved publishes every outcome in completion order, so the
	// fetch that resolves last wins.
	PolicyLastResolved
)

// ErrUnknownPolicy is returned by ParsePolicy.
var ErrUnknownPolicy = errors.New("unknown overlap policy")

func (p Policy) String() string {
	switch p {
	case PolicyLatestRequest:
		return "latest_request"
	case PolicyLastResolved:
		return "last_resolved"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name. The empty string selects PolicyLatestRequest.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest_request":
		return PolicyLatestRequest, nil
	case "last_resolved":
		return PolicyLastResolved, nil
	default:
		return 0, errors.Wrap(ErrUnknownPolicy, s)
	}
}

// View is a consistent snapshot of the session.
type View struct {
	PairAddress string
	Data        *dto.PairRecord
	Loading     bool
	Error       string
}

// Price returns the token1 per token0 ratio of the published record.
func (v View) Price() string {
	return v.Data.Price()
}

// Session is the caller-held slot for the current pair address and the last
// published fetch outcome. It is safe for concurrent use.
type Session struct {
	fetcher  service.Service
	policy   Policy
	logger   *zap.Logger
	onChange func(View)

	mu          sync.Mutex
	pairAddress string
	data        *dto.PairRecord
	errMsg      string
	inFlight    int
	generation  uint64
}

// Option configures Session.
type Option func(*Session)

// WithPolicy sets the overlap policy.
func WithPolicy(p Policy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnChange registers a callback receiving every state change. It runs
// with the session lock held and must not call back into the session.
func WithOnChange(fn func(View)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// New creates Session.
func New(fetcher service.Service, opts ...Option) *Session {
	s := &Session{
		fetcher: fetcher,
		policy:  PolicyLatestRequest,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPairAddress replaces the input address. Published data is left as is.
func (s *Session) SetPairAddress(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pairAddress = address
	s.publishLocked()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewLocked()
}

// Fetch resolves the current pair address.
func (s *Session) Fetch(ctx context.Context) View {
	s.mu.Lock()
	address := s.pairAddress
	s.mu.Unlock()

	return s.fetch(ctx, address)
}

// FetchAddress sets the pair address and resolves it.
func (s *Session) FetchAddress(ctx context.Context, address string) View {
	s.SetPairAddress(address)
	return s.fetch(ctx, address)
}

func (s *Session) fetch(ctx context.Context, address string) View {
	// Rejected input never reaches the loading state.
	if err := s.fetcher.Validate(address); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.generation++
		s.errMsg = apperrors.UserMessage(err)
		s.logger.Debug("fetch rejected", zap.String("pair", address), zap.Error(err))
		s.publishLocked()
		return s.viewLocked()
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.inFlight++
	s.errMsg = ""
	s.publishLocked()
	s.mu.Unlock()

	rec, err := s.fetcher.FetchPair(ctx, address)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--
	if s.policy == PolicyLatestRequest && gen != s.generation {
		s.logger.Debug("dropping superseded fetch outcome",
			zap.String("pair", address),
			zap.Uint64("generation", gen),
			zap.Uint64("latest", s.generation),
		)
	} else if err != nil {
		s.errMsg = apperrors.UserMessage(err)
	} else {
		s.data = rec
		s.errMsg = ""
	}
	s.publishLocked()

	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	return View{
		PairAddress: s.pairAddress,
		Data:        s.data,
		Loading:     s.inFlight > 0,
		Error:       s.errMsg,
	}
}

func (s *Session) publishLocked() {
	if s.onChange != nil {
		s.onChange(s.viewLocked())
	}
}
