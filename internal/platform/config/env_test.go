package config

import "testing"

type testEnv struct {
	Addr   string `env:"STAGEHAND_TEST_ADDR"`
	DBPath string `env:"STAGEHAND_TEST_DB_PATH"`
}

func TestParseEnvReadsValues(t *testing.T) {
	t.Setenv("STAGEHAND_TEST_ADDR", ":8080")
	t.Setenv("STAGEHAND_TEST_DB_PATH", "/tmp/planner.db")

	var cfg testEnv
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.DBPath != "/tmp/planner.db" {
		t.Fatalf("DBPath = %q, want %q", cfg.DBPath, "/tmp/planner.db")
	}
}
