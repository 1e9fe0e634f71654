package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fleshka4/pair-explorer/internal/apperrors"
	"github.com/fleshka4/pair-explorer/internal/config"
	"github.com/fleshka4/pair-explorer/internal/dexmath"
	"github.com/fleshka4/pair-explorer/internal/infra/multicall"
	"github.com/fleshka4/pair-explorer/internal/infra/provider"
	"github.com/fleshka4/pair-explorer/internal/service"
	"github.com/fleshka4/pair-explorer/internal/transport/http/dto"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pairctl",
		Short:        "Uniswap V2 pair explorer CLI",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	fetchCmd := &cobra.Command{
		Use:   "fetch <pair-address>",
		Short: "Fetch pair state and token metadata in two multicall batches",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}

	fetchCmd.Flags().String(config.FlagRPCURL, "", "JSON-RPC endpoint URL")
	fetchCmd.Flags().String(config.FlagMulticallAddress, "", "multicall contract address")
	fetchCmd.Flags().String(config.FlagMulticallMode, "aggregate", "multicall mode (aggregate, try_aggregate)")
	fetchCmd.Flags().String(config.FlagLogLevel, "info", "log level (debug, info, warn, error)")
	fetchCmd.Flags().Duration(config.FlagFetchTimeout, 8*time.Second, "fetch deadline")

	root.AddCommand(fetchCmd)

	formatCmd := &cobra.Command{
		Use:   "format <raw>",
		Short: "Render a raw integer amount with token precision",
		Args:  cobra.ExactArgs(1),
		RunE:  runFormat,
	}
	formatCmd.Flags().Uint8("decimals", 18, "token decimals")

	root.AddCommand(formatCmd)

	parseCmd := &cobra.Command{
		Use:   "parse <amount>",
		Short: "Convert a decimal amount into its raw integer form",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	parseCmd.Flags().Uint8("decimals", 18, "token decimals")

	root.AddCommand(parseCmd)

	return root
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithFlags(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	mode, err := multicall.ParseMode(cfg.MulticallMode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	dialer := provider.NewDialer(cfg.RPCURL, cfg.DialTimeout, logger.Named("provider"))
	defer dialer.Close()

	svc, err := service.NewPairService(dialer, cfg.MulticallAddress,
		service.WithMode(mode),
		service.WithLogger(logger.Named("service")),
	)
	if err != nil {
		return err
	}

	rec, err := svc.FetchPair(ctx, args[0])
	if err != nil {
		return errors.New(apperrors.UserMessage(err))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(dto.NewPairResponse(rec))
}

func runFormat(cmd *cobra.Command, args []string) error {
	decimals, _ := cmd.Flags().GetUint8("decimals")

	raw, ok := new(big.Int).SetString(args[0], 10)
	if !ok {
		return errors.Errorf("invalid integer %q", args[0])
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), dexmath.FormatUnits(raw, decimals))
	return err
}

func runParse(cmd *cobra.Command, args []string) error {
	decimals, _ := cmd.Flags().GetUint8("decimals")

	raw, err := dexmath.ParseUnits(args[0], decimals)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), raw.String())
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
