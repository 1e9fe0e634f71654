package provider

//go:generate mockgen -destination=mock/provider.go -package=mock . EthCaller,Provider

import (
	"context"
	"math/big"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrRPCURLMissing is returned by Acquire when no RPC endpoint is configured.
var ErrRPCURLMissing = errors.New("rpc url is not configured")

// EthCaller represents interface for calling contracts.
type EthCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Provider hands out a read-only connection to a chain node.
type Provider interface {
	Acquire(ctx context.Context) (EthCaller, error)
}

type dialFunc func(ctx context.Context, rpcURL string) (*ethclient.Client, error)

// Dialer is a Provider that dials the RPC endpoint on first use and reuses
// the connection afterwards. A failed dial is retried on the next Acquire.
type Dialer struct {
	rpcURL      string
	dialTimeout time.Duration
	dial        dialFunc
	logger      *zap.Logger

	mu     sync.Mutex
	client *ethclient.Client
}

// NewDialer creates a Dialer for rpcURL.
func NewDialer(rpcURL string, dialTimeout time.Duration, logger *zap.Logger) *Dialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialer{
		rpcURL:      strings.TrimSpace(rpcURL),
		dialTimeout: dialTimeout,
		dial:        ethclient.DialContext,
		logger:      logger,
	}
}

// Acquire returns the shared connection, dialling it if needed.
func (d *Dialer) Acquire(ctx context.Context) (EthCaller, error) {
	if d.rpcURL == "" {
		return nil, ErrRPCURLMissing
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client, nil
	}

	dialCtx := ctx
	if d.dialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, d.dialTimeout)
		defer cancel()
	}

	c, err := d.dial(dialCtx, d.rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "ethclient.DialContext")
	}

	d.logger.Info("rpc connection established", zap.String("rpc", redactURL(d.rpcURL)))
	d.client = c
	return c, nil
}

// Close releases the connection, if one was established.
func (d *Dialer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		d.client.Close()
		d.client = nil
	}
}

// redactURL keeps only the scheme and host. Credentials, path and query
// often carry an API key.
func redactURL(rpcURL string) string {
	u, err := url.Parse(rpcURL)
	if err != nil {
		return "<unparsable rpc url>"
	}
	if u.Host == "" {
		return rpcURL
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}
