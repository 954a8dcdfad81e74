package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/whirlpools/internal/registry"
	"github.com/malbeclabs/whirlpools/smartcontract/sdk/go/whirlpool"
	"github.com/spf13/cobra"
)

func newRegistryCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage configs held in the PostgreSQL authority registry",
	}
	cmd.PersistentFlags().String("env-file", ".env", "File with POSTGRES_* settings, loaded when present")

	cmd.AddCommand(
		newRegistryInitCmd(d),
		newRegistryGetCmd(d),
		newRegistrySetAuthorityCmd(d),
		newRegistrySetDefaultProtocolFeeRateCmd(d),
	)
	return cmd
}

// withRegistry opens the registry store, runs fn against it and releases the store.
func withRegistry(cmd *cobra.Command, d *deps, fn func(opts *globalOptions, reg *registry.Registry) error) error {
	opts, err := loadGlobalOptions(cmd)
	if err != nil {
		return err
	}
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}

	store, release, err := d.openStore(cmd.Context(), opts.log, envFile)
	if err != nil {
		return fmt.Errorf("failed to open registry store: %w", err)
	}
	defer release()

	return fn(opts, registry.New(opts.log, store, opts.network.WhirlpoolProgramID))
}

func recordRow(record *registry.ConfigRecord) configRow {
	return configRow{Address: record.Address, Version: record.Version, Config: record.Config}
}

func newRegistryInitCmd(d *deps) *cobra.Command {
	var (
		addressValue string
		authorities  authorityFlags
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config in the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, d, func(opts *globalOptions, reg *registry.Registry) error {
				address := solana.NewWallet().PublicKey()
				if addressValue != "" {
					var err error
					if address, err = parsePublicKey("address", addressValue); err != nil {
						return err
					}
				}
				config, err := authorities.config(solana.PublicKey{})
				if err != nil {
					return err
				}

				record, err := reg.Initialize(cmd.Context(), registry.InitializeRequest{
					Address: address,
					Config:  config,
				})
				if err != nil {
					return err
				}
				opts.log.Info("Config initialized", "config", record.Address)
				printConfigs(cmd.OutOrStdout(), []configRow{recordRow(record)})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addressValue, "address", "", "Address of the new config (generated when unset)")
	authorities.register(cmd)
	_ = cmd.MarkFlagRequired("fee-authority")
	_ = cmd.MarkFlagRequired("collect-protocol-fees-authority")
	_ = cmd.MarkFlagRequired("reward-emissions-super-authority")
	return cmd
}

func newRegistryGetCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get [address]",
		Short: "Show a config from the registry, or every config when no address is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, d, func(opts *globalOptions, reg *registry.Registry) error {
				ctx := cmd.Context()
				if len(args) == 0 {
					records, err := reg.ListConfigs(ctx)
					if err != nil {
						return err
					}
					rows := make([]configRow, 0, len(records))
					for i := range records {
						rows = append(rows, recordRow(&records[i]))
					}
					printConfigs(cmd.OutOrStdout(), rows)
					return nil
				}

				address, err := parsePublicKey("address", args[0])
				if err != nil {
					return err
				}
				record, err := reg.ReadConfig(ctx, address)
				if err != nil {
					return err
				}
				printConfigs(cmd.OutOrStdout(), []configRow{recordRow(record)})
				return nil
			})
		},
	}
}

func newRegistrySetAuthorityCmd(d *deps) *cobra.Command {
	var (
		configValue      string
		kindValue        string
		newAuthority     string
		authorityKeypair string
	)
	cmd := &cobra.Command{
		Use:   "set-authority",
		Short: "Hand one authority of a registry config over to a new identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parsePublicKey("config", configValue)
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
			authority, err := loadKeypair(authorityKeypair)
			if err != nil {
				return fmt.Errorf("failed to load authority keypair: %w", err)
			}

			return withRegistry(cmd, d, func(opts *globalOptions, reg *registry.Registry) error {
				record, err := reg.ChangeWithRetry(cmd.Context(), address, func(current *registry.ConfigRecord) (*registry.ChangeRequest, error) {
					req := registry.NewSetAuthorityRequest(current, kind, next)
					if err := req.Sign(authority); err != nil {
						return nil, err
					}
					return req, nil
				})
				if err != nil {
					return err
				}
				opts.log.Info("Authority changed", "config", address, "kind", kind, "authority", next, "version", record.Version)
				printConfigs(cmd.OutOrStdout(), []configRow{recordRow(record)})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&configValue, "config", "", "Config address")
	cmd.Flags().StringVar(&kindValue, "kind", "", "Authority to change: fee, collect-protocol-fees or reward-emissions-super")
	cmd.Flags().StringVar(&newAuthority, "new-authority", "", "Identity receiving the authority")
	cmd.Flags().StringVar(&authorityKeypair, "authority-keypair", "", "Keypair of the current authority")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("new-authority")
	_ = cmd.MarkFlagRequired("authority-keypair")
	return cmd
}

func newRegistrySetDefaultProtocolFeeRateCmd(d *deps) *cobra.Command {
	var (
		configValue      string
		rate             uint16
		authorityKeypair string
	)
	cmd := &cobra.Command{
		Use:   "set-default-protocol-fee-rate",
		Short: "Change the default protocol fee rate of a registry config",
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parsePublicKey("config", configValue)
			if err != nil {
				return err
			}
			authority, err := loadKeypair(authorityKeypair)
			if err != nil {
				return fmt.Errorf("failed to load fee authority keypair: %w", err)
			}

			return withRegistry(cmd, d, func(opts *globalOptions, reg *registry.Registry) error {
				record, err := reg.ChangeWithRetry(cmd.Context(), address, func(current *registry.ConfigRecord) (*registry.ChangeRequest, error) {
					req := registry.NewSetDefaultProtocolFeeRateRequest(current, rate)
					if err := req.Sign(authority); err != nil {
						return nil, err
					}
					return req, nil
				})
				if err != nil {
					return err
				}
				opts.log.Info("Default protocol fee rate changed", "config", address, "rate", rate, "version", record.Version)
				printConfigs(cmd.OutOrStdout(), []configRow{recordRow(record)})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&configValue, "config", "", "Config address")
	cmd.Flags().Uint16Var(&rate, "rate", 0, "New default protocol fee rate, in basis points of the swap fee")
	cmd.Flags().StringVar(&authorityKeypair, "authority-keypair", "", "Keypair of the fee authority")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("authority-keypair")
	return cmd
}
