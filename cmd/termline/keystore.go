package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termline/internal/appconfig"
	"pkt.systems/termline/internal/histfile"
)

func newKeystoreCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "keystore",
		Short: "Initialize the history encryption key store",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := histfile.EnsureKeyStoreWithLogger(cfg.History.KeyStorePath, logger); err != nil {
				return err
			}
			logger.Info("history key store ready", "path", cfg.History.KeyStorePath)
			if !cfg.History.Encrypt {
				logger.Info("history encryption is disabled; set history.encrypt to true to use it")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	return cmd
}
