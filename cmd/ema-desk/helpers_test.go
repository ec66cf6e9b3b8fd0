package main

import (
	"testing"

	"github.com/koscakluka/ema-desk/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Completions.Vendor = "ollama"
	cfg.Completions.Model = "llama3"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return &cfg
}
