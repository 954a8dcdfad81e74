package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/whirlpools/config"
	"github.com/malbeclabs/whirlpools/internal/registry"
	"github.com/malbeclabs/whirlpools/internal/registry/pgstore"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

// deps are the outside resources commands reach. Tests swap them for in-process ones.
type deps struct {
	out io.Writer

	// newRPC returns the RPC client for a ledger URL.
	newRPC func(url string) whirlpool.RPCClient

	// openStore returns the store behind the registry commands and a func releasing it.
	openStore func(ctx context.Context, log *slog.Logger, envFile string) (registry.Store, func(), error)
}

func defaultDeps() *deps {
	return &deps{
		out: os.Stdout,
		newRPC: func(url string) whirlpool.RPCClient {
			return solanarpc.New(url)
		},
		openStore: openPostgresStore,
	}
}

func Run() ExitCode {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := newRootCmd(defaultDeps()).ExecuteContext(ctx); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func newRootCmd(d *deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "whirlpool-config",
		Short:        "Manage Whirlpool WhirlpoolsConfig accounts and their authorities.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Root().PersistentFlags()
			metricsAddr, err := flags.GetString("metrics-addr")
			if err != nil {
				return fmt.Errorf("failed to get metrics-addr flag: %w", err)
			}
			if metricsAddr == "" {
				return nil
			}
			verbose, err := flags.GetBool("verbose")
			if err != nil {
				return fmt.Errorf("failed to get verbose flag: %w", err)
			}
			_, err = serveMetrics(cmd.Context(), newLogger(cmd.ErrOrStderr(), verbose), metricsAddr)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}
	rootCmd.SetOut(d.out)

	addGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newGetCmd(d),
		newInitCmd(d),
		newSetAuthorityCmd(d),
		newSetDefaultProtocolFeeRateCmd(d),
		newRegistryCmd(d),
	)
	return rootCmd
}

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.BoolP("verbose", "v", false, "set debug logging level")
	flags.StringP("env", "e", config.EnvDevnet, "The network environment (mainnet-beta, devnet, localnet)")
	flags.String("network-config", "", "Path to a YAML network config file, overrides --env")
	flags.String("rpc-url", "", "Override the ledger RPC URL")
	flags.StringP("keypair", "k", defaultKeypairPath(), "Payer keypair, as a solana-keygen file or base58 secret key")
	flags.Bool("skip-preflight", false, "Send transactions without simulating them first")
	flags.String("metrics-addr", "", "Address to serve prometheus metrics on while the command runs")
}

// globalOptions are the persistent root flags, resolved.
type globalOptions struct {
	log     *slog.Logger
	network *config.NetworkConfig
}

func loadGlobalOptions(cmd *cobra.Command) (*globalOptions, error) {
	flags := cmd.Root().PersistentFlags()
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	env, err := flags.GetString("env")
	if err != nil {
		return nil, fmt.Errorf("failed to get env flag: %w", err)
	}
	networkConfigPath, err := flags.GetString("network-config")
	if err != nil {
		return nil, fmt.Errorf("failed to get network-config flag: %w", err)
	}
	rpcURL, err := flags.GetString("rpc-url")
	if err != nil {
		return nil, fmt.Errorf("failed to get rpc-url flag: %w", err)
	}

	var network *config.NetworkConfig
	if networkConfigPath != "" {
		network, err = config.LoadNetworkConfigFile(networkConfigPath)
	} else {
		network, err = config.NetworkConfigForEnv(env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get network config: %w", err)
	}
	if rpcURL != "" {
		network.LedgerPublicRPCURL = rpcURL
	}

	return &globalOptions{
		log:     newLogger(cmd.ErrOrStderr(), verbose),
		network: network,
	}, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func openPostgresStore(ctx context.Context, log *slog.Logger, envFile string) (registry.Store, func(), error) {
	cfg, err := pgstore.ConfigFromEnv(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load postgres config: %w", err)
	}
	pool, err := pgstore.Connect(ctx, log, cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := pgstore.New(ctx, log, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}
