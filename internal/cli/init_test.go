package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"giftledger/internal/config"
	"giftledger/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("GIFTLEDGER_CLI_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GIFTLEDGER_CLI_TEST", "")
	os.Unsetenv("GIFTLEDGER_CLI_TEST")

	if err := LoadEnvFile(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("GIFTLEDGER_CLI_TEST"); got != "from-file" {
		t.Errorf("env = %q", got)
	}
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("GIFTLEDGER_CLI_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GIFTLEDGER_CLI_TEST", "from-env")
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("GIFTLEDGER_CLI_TEST"); got != "from-env" {
		t.Errorf("env = %q", got)
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("EVENTS_BROKER", "none")
	if _, err := LoadAndValidateConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Setenv("DATA_BACKEND", "mongo")
	_, err := LoadAndValidateConfig()
	if err == nil || !strings.Contains(err.Error(), "invalid data backend 'mongo'") {
		t.Fatalf("error = %v", err)
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "warn", LogFormat: "json"}
	logger, err := SetupLogger(cfg, &buf, log.ComponentCLI)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("unexpected output: %s", out)
	}
	if !strings.Contains(out, `"component":"cli"`) {
		t.Errorf("missing component: %s", out)
	}

	if _, err := SetupLogger(&config.Config{LogLevel: "loud"}, &buf, log.ComponentCLI); err == nil {
		t.Error("expected error for unknown level")
	}
}
