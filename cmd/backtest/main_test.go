package main

import (
	"testing"
)

// TestStartupRejectsInvalidConfig tests that a bad config file stops the
// binary before any subcommand runs
func TestStartupRejectsInvalidConfig(t *testing.T) {
	origConfig, origCapital := configFile, capital
	defer func() { configFile, capital = origConfig, origCapital }()

	configFile = "testdata/bad_config.yaml"
	capital = 0

	if err := rootCmd.PersistentPreRunE(runCmd, nil); err == nil {
		t.Fatal("expected startup to reject invalid configuration")
	}
}

// TestStartupAcceptsDefaults tests that a missing config file falls back to
// valid defaults
func TestStartupAcceptsDefaults(t *testing.T) {
	origConfig, origCapital := configFile, capital
	defer func() { configFile, capital = origConfig, origCapital }()

	configFile = "testdata/nonexistent_config.yaml"
	capital = 0

	if err := rootCmd.PersistentPreRunE(runCmd, nil); err != nil {
		t.Fatalf("expected defaults-only startup to succeed, got %v", err)
	}
	if capital != cfg.Backtest.InitialCapital {
		t.Errorf("expected capital to default to %f, got %f", cfg.Backtest.InitialCapital, capital)
	}
}
