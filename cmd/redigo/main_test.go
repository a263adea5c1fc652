package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"redigolite/envs"
)

func captureConfig(t *testing.T, args ...string) (envs.Envs, error) {
	t.Helper()

	var (
		config envs.Envs
		err    error
	)
	app := newApp(func(c *cli.Context) error {
		config, err = loadConfig(c)
		return nil
	})
	if runErr := app.Run(append([]string{"redigo"}, args...)); runErr != nil {
		t.Fatal(runErr)
	}
	return config, err
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := captureConfig(t, "--env-file", filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatal(err)
	}
	if config.Addr() != "127.0.0.1:6379" {
		t.Errorf("expected 127.0.0.1:6379, got %s", config.Addr())
	}
}

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("REDIGO_HOST", "10.0.0.1")
	t.Setenv("REDIGO_PORT", "7000")
	t.Setenv("LOG_LEVEL", "warn")

	config, err := captureConfig(t,
		"--env-file", filepath.Join(t.TempDir(), "none.env"),
		"--port", "7100",
		"--metrics-addr", "127.0.0.1:9121",
	)
	if err != nil {
		t.Fatal(err)
	}

	if config.Addr() != "10.0.0.1:7100" {
		t.Errorf("expected env host with flag port, got %s", config.Addr())
	}
	if config.MetricsAddr != "127.0.0.1:9121" {
		t.Errorf("expected metrics addr from flag, got %q", config.MetricsAddr)
	}
	if config.LogLevel != "warn" {
		t.Errorf("expected log level from env, got %q", config.LogLevel)
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redigo.env")
	if err := os.WriteFile(path, []byte("REDIGO_PORT=6400\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Register for cleanup so the value loaded from the file does not leak.
	t.Setenv("REDIGO_PORT", "")
	os.Unsetenv("REDIGO_PORT")

	config, err := captureConfig(t, "--env-file", path)
	if err != nil {
		t.Fatal(err)
	}
	if config.RedigoPort != 6400 {
		t.Errorf("expected port 6400 from the env file, got %d", config.RedigoPort)
	}
}

func TestLoadConfigRejectsInvalidFlag(t *testing.T) {
	_, err := captureConfig(t,
		"--env-file", filepath.Join(t.TempDir(), "none.env"),
		"--port", "99999",
	)
	if err == nil || !strings.Contains(err.Error(), "REDIGO_PORT") {
		t.Errorf("expected a port range error, got %v", err)
	}
}
