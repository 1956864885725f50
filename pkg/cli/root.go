package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/thepwagner/aptkeys/pkg/aptkey"
	"github.com/thepwagner/aptkeys/pkg/debian"
	"github.com/thepwagner/aptkeys/pkg/launchpad"
	"github.com/thepwagner/aptkeys/pkg/repo"
)

// Run executes the aptkeys command line.
func Run(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

type rootOptions struct {
	configPath  string
	debug       bool
	managerOpts []aptkey.Option
}

// NewRootCmd builds the aptkeys command. managerOpts are applied to every KeyManager it creates.
func NewRootCmd(managerOpts ...aptkey.Option) *cobra.Command {
	opts := &rootOptions{managerOpts: managerOpts}
	cmd := &cobra.Command{
		Use:          "aptkeys",
		Short:        "Install signing keys for apt package repositories",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if opts.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{Level: level})))
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "f", defaultConfigPath, "path to config file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newInstallCmd(opts))
	cmd.AddCommand(newFingerprintsCmd(opts))
	cmd.AddCommand(newSourcesCmd(opts))
	return cmd
}

func (o *rootOptions) keyManager() (*Config, *aptkey.KeyManager, *launchpad.Client, error) {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	lp, err := launchpad.NewClient(cfg.Launchpad)
	if err != nil {
		return nil, nil, nil, err
	}
	mopts := append([]aptkey.Option{aptkey.WithResolver(lp)}, o.managerOpts...)
	return cfg, aptkey.NewKeyManager(cfg.Keyring, cfg.KeyAssets, mopts...), lp, nil
}

func newInstallCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install signing keys for every configured package repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, m, _, err := opts.keyManager()
			if err != nil {
				return err
			}
			changed, err := m.InstallPackageRepositoryKeys(cmd.Context(), cfg.Repositories...)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "keys installed into %s\n", m.Keyring())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "all keys already installed")
			}
			return nil
		},
	}
}

func newFingerprintsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprints <key-file>",
		Short: "Print the fingerprints of the keys in a key file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			// Fingerprints never touch the configured keyring.
			m := aptkey.NewKeyManager("", "", opts.managerOpts...)
			fprs, err := m.KeyFingerprints(cmd.Context(), string(b))
			if err != nil {
				return err
			}
			for _, fpr := range fprs {
				fmt.Fprintln(cmd.OutOrStdout(), fpr)
			}
			return nil
		},
	}
}

func newSourcesCmd(opts *rootOptions) *cobra.Command {
	var codename string
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Print deb822 sources entries for the configured package repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, m, lp, err := opts.keyManager()
			if err != nil {
				return err
			}

			graphs := make([]debian.Paragraph, 0, len(cfg.Repositories))
			for _, r := range cfg.Repositories {
				switch r := r.(type) {
				case *repo.Apt:
					graphs = append(graphs, r.SourcesEntry(m.Keyring()))
				case *repo.PPA:
					keyID, err := lp.SigningKeyFingerprint(cmd.Context(), r.PPA)
					if err != nil {
						return err
					}
					apt, err := r.Apt(codename, keyID)
					if err != nil {
						return err
					}
					graphs = append(graphs, apt.SourcesEntry(m.Keyring()))
				}
			}
			return debian.WriteControlFile(cmd.OutOrStdout(), graphs...)
		},
	}
	cmd.Flags().StringVar(&codename, "codename", "jammy", "Ubuntu codename used for PPA suites")
	return cmd
}
