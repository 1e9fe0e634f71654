package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/fleshka4/pair-explorer/internal/infra/multicall"
	"github.com/fleshka4/pair-explorer/internal/session"
)

// Config holds application configuration loaded from file and environment.
type Config struct {
	RPCURL            string        `yaml:"rpc_url"`
	MulticallAddress  string        `yaml:"multicall_address"`
	MulticallMode     string        `yaml:"multicall_mode"`
	OverlapPolicy     string        `yaml:"overlap_policy"`
	ListenAddr        string        `yaml:"listen_addr"`
	LogLevel          string        `yaml:"log_level"`
	GraceTimeout      time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	DialTimeout       time.Duration `yaml:"dial_timeout"`
}

// Environment variables overriding file values.
const (
	EnvRPCURL           = "RPC_URL"
	EnvMulticallAddress = "MULTICALL_ADDRESS"
	EnvMulticallMode    = "MULTICALL_MODE"
	EnvOverlapPolicy    = "OVERLAP_POLICY"
	EnvListenAddr       = "LISTEN_ADDR"
	EnvLogLevel         = "LOG_LEVEL"
)

const (
	defaultTimeout      = 5 * time.Second
	defaultFetchTimeout = 8 * time.Second
)

// Command line flags recognized by LoadWithFlags.
const (
	FlagRPCURL           = "rpc"
	FlagMulticallAddress = "multicall"
	FlagMulticallMode    = "mode"
	FlagLogLevel         = "log-level"
	FlagFetchTimeout     = "fetch-timeout"
)

// Load reads the YAML file at path, applies environment overrides and
// fallbacks and validates the result. A missing file is not an error: the
// environment alone may configure the application.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv, nil)
}

// LoadWithFlags is Load with a final layer of explicitly set flags.
func LoadWithFlags(path string, flags *pflag.FlagSet) (Config, error) {
	return load(path, os.LookupEnv, flags)
}

func load(path string, lookupEnv func(string) (string, bool), flags *pflag.FlagSet) (Config, error) {
	var cfg Config
	if err := cfg.readFile(path); err != nil {
		return Config{}, err
	}

	cfg.applyEnv(lookupEnv)
	if err := cfg.applyFlags(flags); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to open config file: os.Open")
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			log.Printf("failed to close config file: f.Close: %v", err)
		}
	}(f)

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return errors.Wrap(err, "failed to parse config file: decoder.Decode")
	}
	return nil
}

func (c *Config) applyEnv(lookupEnv func(string) (string, bool)) {
	for env, field := range map[string]*string{
		EnvRPCURL:           &c.RPCURL,
		EnvMulticallAddress: &c.MulticallAddress,
		EnvMulticallMode:    &c.MulticallMode,
		EnvOverlapPolicy:    &c.OverlapPolicy,
		EnvListenAddr:       &c.ListenAddr,
		EnvLogLevel:         &c.LogLevel,
	} {
		if v, ok := lookupEnv(env); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}
}

func (c *Config) applyFlags(flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}

	for name, field := range map[string]*string{
		FlagRPCURL:           &c.RPCURL,
		FlagMulticallAddress: &c.MulticallAddress,
		FlagMulticallMode:    &c.MulticallMode,
		FlagLogLevel:         &c.LogLevel,
	} {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return errors.Wrap(err, "flags.GetString")
		}
		*field = strings.TrimSpace(v)
	}

	if flags.Lookup(FlagFetchTimeout) != nil && flags.Changed(FlagFetchTimeout) {
		d, err := flags.GetDuration(FlagFetchTimeout)
		if err != nil {
			return errors.Wrap(err, "flags.GetDuration")
		}
		c.FetchTimeout = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":1337"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MulticallMode == "" {
		c.MulticallMode = string(multicall.ModeAggregate)
	}
	if c.GraceTimeout == 0 {
		c.GraceTimeout = defaultTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaultTimeout
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultTimeout
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
}

// Validate reports every invalid setting at once. An empty RPC URL or
// multicall address is accepted; fetches report them instead.
func (c Config) Validate() error {
	var err error

	if _, modeErr := multicall.ParseMode(c.MulticallMode); modeErr != nil {
		err = multierr.Append(err, errors.Wrap(modeErr, "multicall_mode"))
	}
	if _, policyErr := session.ParsePolicy(c.OverlapPolicy); policyErr != nil {
		err = multierr.Append(err, errors.Wrap(policyErr, "overlap_policy"))
	}
	if _, levelErr := zapcore.ParseLevel(c.LogLevel); levelErr != nil {
		err = multierr.Append(err, errors.Wrap(levelErr, "log_level"))
	}

	for name, d := range map[string]time.Duration{
		"shutdown_timeout":    c.GraceTimeout,
		"request_timeout":     c.RequestTimeout,
		"read_header_timeout": c.ReadHeaderTimeout,
		"fetch_timeout":       c.FetchTimeout,
		"dial_timeout":        c.DialTimeout,
	} {
		if d < 0 {
			err = multierr.Append(err, errors.Errorf("%s must not be negative, got %s", name, d))
		}
	}

	return err
}
