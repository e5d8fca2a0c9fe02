package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termline/core"
	"pkt.systems/termline/internal/appconfig"
	"pkt.systems/termline/internal/demoshell"
	"pkt.systems/termline/internal/sshdemo"
	"pkt.systems/termline/schema"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo shell over SSH",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			logger, closeLog, err := commandLogger(cmd.Context(), cfg.Log)
			if err != nil {
				return err
			}
			if closeLog != nil {
				defer closeLog()
			}

			server := &sshdemo.Server{
				Addr:               cfg.SSH.Addr,
				HostKeyPath:        cfg.SSH.HostKeyPath,
				AuthorizedKeysPath: cfg.SSH.AuthorizedKeysPath,
				MOTD:               cfg.SSH.MOTD,
				Config: schema.Config{
					Prompt:                   demoshell.StylePrompt(cfg.Prompt),
					HistoryMaxLen:            cfg.History.MaxEntries,
					SuppressDuplicateHistory: cfg.History.SuppressDuplicates,
				},
				Completer: demoshell.Completer(),
				NewHandler: func(userID schema.UserID, editor *core.Editor) sshdemo.LineHandler {
					return demoshell.New(userID, editor)
				},
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = pslog.ContextWithLogger(ctx, logger)
			logger.Info("ssh server listening", "addr", cfg.SSH.Addr)
			return server.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	return cmd
}
