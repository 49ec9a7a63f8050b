package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"ESTATEDASH_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvKeepsUnsetFields(t *testing.T) {
	cfg := struct {
		Name string `env:"ESTATEDASH_TEST_UNSET_NAME"`
	}{Name: "from-file"}

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Name != "from-file" {
		t.Fatalf("expected unset env to keep %q, got %q", "from-file", cfg.Name)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("ESTATEDASH_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
