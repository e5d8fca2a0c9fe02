package schema

import "strings"

// Config defines behavior for one editing session.
type Config struct {
	// Prompt is written before the editable text on every repaint. It may
	// contain ANSI styling; escape sequences count zero columns.
	Prompt string
	// HistoryMaxLen caps stored history entries; oldest entries are dropped
	// first. Zero or negative selects DefaultHistoryMaxLen.
	HistoryMaxLen int
	// SuppressDuplicateHistory drops a submission equal to the newest
	// stored entry instead of appending it again.
	SuppressDuplicateHistory bool
	// EchoInterruptAsError makes Ctrl-C surface as ErrInterrupted. When
	// false an interrupt is returned as an empty line with no error.
	EchoInterruptAsError bool
}

// DefaultPrompt is used when the config leaves Prompt empty.
const DefaultPrompt = "> "

// DefaultHistoryMaxLen is the default history cap.
const DefaultHistoryMaxLen = 500

// NormalizeConfig applies defaults and validates the config.
func NormalizeConfig(cfg Config) (Config, error) {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if strings.ContainsAny(cfg.Prompt, "\r\n") {
		return Config{}, ErrInvalidPrompt
	}
	if cfg.HistoryMaxLen <= 0 {
		cfg.HistoryMaxLen = DefaultHistoryMaxLen
	}
	return cfg, nil
}
