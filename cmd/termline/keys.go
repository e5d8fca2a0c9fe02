package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termline/schema"
	"pkt.systems/termline/terminal"
)

// newKeysCmd inspects the decoder: it prints every decoded key event
// until Ctrl-C or Ctrl-D, which is handy when a terminal sends sequences
// the editor seems to ignore.
func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print decoded key events until Ctrl-C or Ctrl-D",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			drv, err := terminal.Open(os.Stdin, os.Stdout, logger)
			if err != nil {
				return err
			}
			defer func() { _ = drv.Close() }()
			fmt.Fprint(os.Stdout, "press keys to inspect them; Ctrl-C or Ctrl-D ends\r\n")
			for {
				ev, err := drv.ReadEvent(cmd.Context())
				if err != nil {
					if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				switch ev.Kind {
				case schema.KeyInterrupt, schema.KeyEOF:
					fmt.Fprintf(os.Stdout, "%s\r\n", ev.Kind)
					return nil
				case schema.KeyRune:
					fmt.Fprintf(os.Stdout, "%s %q\r\n", ev.Kind, ev.R)
				case schema.KeyResize:
					width, height := drv.Size()
					fmt.Fprintf(os.Stdout, "%s %dx%d\r\n", ev.Kind, width, height)
				default:
					fmt.Fprintf(os.Stdout, "%s\r\n", ev.Kind)
				}
			}
		},
	}
}
