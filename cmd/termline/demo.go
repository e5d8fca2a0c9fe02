package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termline"
	"pkt.systems/termline/internal/appconfig"
	"pkt.systems/termline/internal/demoshell"
	"pkt.systems/termline/internal/histfile"
	"pkt.systems/termline/schema"
)

func newDemoCmd() *cobra.Command {
	var cfgPath string
	var noHistory bool
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the demo shell on the local terminal",
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
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)

			var store *histfile.Store
			if !noHistory && cfg.History.File != "" {
				keyStore := ""
				if cfg.History.Encrypt {
					keyStore = cfg.History.KeyStorePath
				}
				store, err = histfile.NewStoreWithLogger(cfg.History.File, keyStore, logger)
				if err != nil {
					return err
				}
			}

			sess, err := termline.Open(schema.Config{
				Prompt:                   demoshell.StylePrompt(cfg.Prompt),
				HistoryMaxLen:            cfg.History.MaxEntries,
				SuppressDuplicateHistory: cfg.History.SuppressDuplicates,
			}, termline.WithCompleter(demoshell.Completer()), termline.WithLogger(logger))
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			if store != nil {
				entries, ok, err := store.Load()
				if err != nil {
					logger.Warn("history restore failed", "err", err)
				} else if ok {
					for _, entry := range entries {
						sess.PushHistory(entry)
					}
				}
			}

			shell := demoshell.New(schema.UserID(os.Getenv("USER")), sess)
			demoshell.WriteText(os.Stdout, "termline demo shell. Type 'help' to list commands.")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			runShell(ctx, sess, shell)

			if store != nil {
				if err := store.Save(sess.History()); err != nil {
					logger.Warn("history save failed", "err", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip loading and saving the history file")
	return cmd
}

func runShell(ctx context.Context, sess *termline.Session, shell *demoshell.Shell) {
	for {
		line, err := sess.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				demoshell.WriteText(os.Stdout, "bye")
			} else if !errors.Is(err, context.Canceled) {
				pslog.Ctx(ctx).Warn("read line failed", "err", err)
			}
			return
		}
		if line == "" {
			continue
		}
		out, cont := shell.Handle(ctx, line)
		if out != "" {
			demoshell.WriteText(os.Stdout, out)
		}
		if !cont {
			demoshell.WriteText(os.Stdout, "bye")
			return
		}
	}
}
