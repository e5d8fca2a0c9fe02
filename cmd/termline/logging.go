package main

import (
	"context"
	"os"
	"path/filepath"

	"pkt.systems/pslog"
	"pkt.systems/termline/internal/appconfig"
)

// commandLogger returns the logger a command should use. Without a log file
// the environment-configured logger from main is kept; with one, logging
// moves there so it cannot interleave with the editor display.
func commandLogger(ctx context.Context, cfg appconfig.LogConfig) (pslog.Logger, func(), error) {
	if cfg.File == "" {
		return pslog.Ctx(ctx), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(cfg.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	mode := pslog.ModeConsole
	if cfg.Mode == "structured" {
		mode = pslog.ModeStructured
	}
	logger := pslog.NewWithOptions(file, pslog.Options{Mode: mode, NoColor: true})
	return logger, func() { _ = file.Close() }, nil
}
