package cli

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/spf13/cobra"
)

// sdkEnv is what the commands talking to the ledger share.
type sdkEnv struct {
	*globalOptions
	client *whirlpool.Client
	payer  solana.PrivateKey
}

func newSDKEnv(cmd *cobra.Command, d *deps, needPayer bool) (*sdkEnv, error) {
	opts, err := loadGlobalOptions(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Root().PersistentFlags()
	keypairValue, err := flags.GetString("keypair")
	if err != nil {
		return nil, fmt.Errorf("failed to get keypair flag: %w", err)
	}
	skipPreflight, err := flags.GetBool("skip-preflight")
	if err != nil {
		return nil, fmt.Errorf("failed to get skip-preflight flag: %w", err)
	}

	var payer solana.PrivateKey
	if needPayer {
		payer, err = loadKeypair(keypairValue)
		if err != nil {
			return nil, fmt.Errorf("failed to load payer keypair: %w", err)
		}
	}
	var signer *solana.PrivateKey
	if payer != nil {
		signer = &payer
	}

	rpc := d.newRPC(opts.network.LedgerPublicRPCURL)
	client := whirlpool.New(opts.log, rpc, signer, opts.network.WhirlpoolProgramID, whirlpool.WithSkipPreflight(skipPreflight))
	return &sdkEnv{globalOptions: opts, client: client, payer: payer}, nil
}

// configAddress resolves a config address flag, defaulting to the network's config.
func (e *sdkEnv) configAddress(value string) (solana.PublicKey, error) {
	if value != "" {
		return parsePublicKey("config", value)
	}
	if e.network.WhirlpoolsConfig.IsZero() {
		return solana.PublicKey{}, errors.New("--config is required: the network has no default config")
	}
	return e.network.WhirlpoolsConfig, nil
}

func newGetCmd(d *deps) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "get [address]",
		Short: "Show a WhirlpoolsConfig, by default the network's config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newSDKEnv(cmd, d, false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if all {
				configs, err := env.client.GetConfigs(ctx)
				if err != nil {
					return fmt.Errorf("failed to get configs: %w", err)
				}
				rows := make([]configRow, 0, len(configs))
				for _, c := range configs {
					rows = append(rows, configRow{Address: c.Address, Config: c.Config})
				}
				printConfigs(cmd.OutOrStdout(), rows)
				return nil
			}

			var value string
			if len(args) > 0 {
				value = args[0]
			}
			address, err := env.configAddress(value)
			if err != nil {
				return err
			}
			config, err := env.client.GetConfig(ctx, address)
			if err != nil {
				return fmt.Errorf("failed to get config %s: %w", address, err)
			}
			printConfigs(cmd.OutOrStdout(), []configRow{{Address: address, Config: *config}})
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every config owned by the program")
	return cmd
}

// authorityFlags are the initial authorities of a new config.
type authorityFlags struct {
	fee                  string
	collectProtocolFees  string
	rewardEmissionsSuper string
	defaultFeeRate       uint16
}

func (f *authorityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fee, "fee-authority", "", "Fee authority (defaults to the payer)")
	cmd.Flags().StringVar(&f.collectProtocolFees, "collect-protocol-fees-authority", "", "Collect protocol fees authority (defaults to the payer)")
	cmd.Flags().StringVar(&f.rewardEmissionsSuper, "reward-emissions-super-authority", "", "Reward emissions super authority (defaults to the payer)")
	cmd.Flags().Uint16Var(&f.defaultFeeRate, "default-protocol-fee-rate", 300, "Default protocol fee rate, in basis points of the swap fee")
}

// config returns the authorities, with fallback for the ones left unset.
func (f *authorityFlags) config(fallback solana.PublicKey) (whirlpool.WhirlpoolsConfig, error) {
	parse := func(name, value string) (solana.PublicKey, error) {
		if value == "" {
			return fallback, nil
		}
		return parsePublicKey(name, value)
	}
	fee, err := parse("fee authority", f.fee)
	if err != nil {
		return whirlpool.WhirlpoolsConfig{}, err
	}
	collect, err := parse("collect protocol fees authority", f.collectProtocolFees)
	if err != nil {
		return whirlpool.WhirlpoolsConfig{}, err
	}
	rewards, err := parse("reward emissions super authority", f.rewardEmissionsSuper)
	if err != nil {
		return whirlpool.WhirlpoolsConfig{}, err
	}
	return whirlpool.WhirlpoolsConfig{
		FeeAuthority:                  fee,
		CollectProtocolFeesAuthority:  collect,
		RewardEmissionsSuperAuthority: rewards,
		DefaultProtocolFeeRate:        f.defaultFeeRate,
	}, nil
}

func newInitCmd(d *deps) *cobra.Command {
	var (
		configKeypair string
		authorities   authorityFlags
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a WhirlpoolsConfig account",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newSDKEnv(cmd, d, true)
			if err != nil {
				return err
			}

			var configKey solana.PrivateKey
			if configKeypair == "" {
				configKey = solana.NewWallet().PrivateKey
			} else if configKey, err = loadKeypair(configKeypair); err != nil {
				return fmt.Errorf("failed to load config keypair: %w", err)
			}
			config, err := authorities.config(env.payer.PublicKey())
			if err != nil {
				return err
			}

			sig, _, err := env.client.InitializeConfig(cmd.Context(), configKey, whirlpool.InitializeConfigInstructionConfig{
				FeeAuthority:                  config.FeeAuthority,
				CollectProtocolFeesAuthority:  config.CollectProtocolFeesAuthority,
				RewardEmissionsSuperAuthority: config.RewardEmissionsSuperAuthority,
				DefaultProtocolFeeRate:        config.DefaultProtocolFeeRate,
			})
			if err != nil {
				return err
			}
			env.log.Info("Config initialized", "config", configKey.PublicKey(), "signature", sig)
			printConfigs(cmd.OutOrStdout(), []configRow{{Address: configKey.PublicKey(), Config: config}})
			return nil
		},
	}
	cmd.Flags().StringVar(&configKeypair, "config-keypair", "", "Keypair of the new config account (generated when unset)")
	authorities.register(cmd)
	return cmd
}

func newSetAuthorityCmd(d *deps) *cobra.Command {
	var (
		configValue      string
		kindValue        string
		newAuthority     string
		authorityKeypair string
	)
	cmd := &cobra.Command{
		Use:   "set-authority",
		Short: "Hand one authority of a config over to a new identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newSDKEnv(cmd, d, true)
			if err != nil {
				return err
			}
			address, err := env.configAddress(configValue)
			if err != nil {
				return err
			}
			kind, err := whirlpool.ParseAuthorityKind(kindValue)
			if err != nil {
				return err
			}
			next, err := parsePublicKey("new authority", newAuthority)
			if err != nil {
				return err
			}
			authority, err := keypairOrDefault(authorityKeypair, env.payer)
			if err != nil {
				return fmt.Errorf("failed to load authority keypair: %w", err)
			}

			config, err := env.client.RequestAuthorityChange(cmd.Context(), whirlpool.AuthorityChange{
				Config:       address,
				Kind:         kind,
				Authority:    authority.PublicKey(),
				NewAuthority: next,
				Signers:      []solana.PrivateKey{authority},
			})
			if err != nil {
				return err
			}
			env.log.Info("Authority changed", "config", address, "kind", kind, "authority", next)
			printConfigs(cmd.OutOrStdout(), []configRow{{Address: address, Config: *config}})
			return nil
		},
	}
	cmd.Flags().StringVar(&configValue, "config", "", "Config address (defaults to the network's config)")
	cmd.Flags().StringVar(&kindValue, "kind", "", "Authority to change: fee, collect-protocol-fees or reward-emissions-super")
	cmd.Flags().StringVar(&newAuthority, "new-authority", "", "Identity receiving the authority")
	cmd.Flags().StringVar(&authorityKeypair, "authority-keypair", "", "Keypair of the current authority (defaults to the payer)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("new-authority")
	return cmd
}

func newSetDefaultProtocolFeeRateCmd(d *deps) *cobra.Command {
	var (
		configValue      string
		rate             uint16
		authorityKeypair string
	)
	cmd := &cobra.Command{
		Use:   "set-default-protocol-fee-rate",
		Short: "Change the default protocol fee rate of a config",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newSDKEnv(cmd, d, true)
			if err != nil {
				return err
			}
			address, err := env.configAddress(configValue)
			if err != nil {
				return err
			}
			authority, err := keypairOrDefault(authorityKeypair, env.payer)
			if err != nil {
				return fmt.Errorf("failed to load fee authority keypair: %w", err)
			}

			ctx := cmd.Context()
			_, _, err = env.client.SetDefaultProtocolFeeRate(ctx, whirlpool.SetDefaultProtocolFeeRateInstructionConfig{
				Config:                 address,
				FeeAuthority:           authority.PublicKey(),
				DefaultProtocolFeeRate: rate,
			}, authority)
			if err != nil {
				return err
			}
			config, err := env.client.GetConfig(ctx, address)
			if err != nil {
				return fmt.Errorf("failed to read config after change: %w", err)
			}
			env.log.Info("Default protocol fee rate changed", "config", address, "rate", rate)
			printConfigs(cmd.OutOrStdout(), []configRow{{Address: address, Config: *config}})
			return nil
		},
	}
	cmd.Flags().StringVar(&configValue, "config", "", "Config address (defaults to the network's config)")
	cmd.Flags().Uint16Var(&rate, "rate", 0, "New default protocol fee rate, in basis points of the swap fee")
	cmd.Flags().StringVar(&authorityKeypair, "authority-keypair", "", "Keypair of the fee authority (defaults to the payer)")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}
