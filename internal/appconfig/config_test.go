package appconfig

import (
	"testing"

	"pkt.systems/termline/schema"
)

func TestDefaultConfigHistoryDefaults(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if cfg.Prompt != schema.DefaultPrompt {
		t.Fatalf("expected prompt %q, got %q", schema.DefaultPrompt, cfg.Prompt)
	}
	if cfg.History.MaxEntries != schema.DefaultHistoryMaxLen {
		t.Fatalf("expected history cap %d, got %d", schema.DefaultHistoryMaxLen, cfg.History.MaxEntries)
	}
	if cfg.History.Encrypt {
		t.Fatalf("expected history encryption to default off")
	}
	if !cfg.History.SuppressDuplicates {
		t.Fatalf("expected duplicate suppression to default on")
	}
}
