package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Listen  string        `envconfig:"LISTEN" default:"127.0.0.1:8000"`
	Workers int           `envconfig:"WORKERS" default:"4"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Token   string        `envconfig:"TOKEN"`
}

var errNoToken = errors.New("token missing")

type validatedConfig struct {
	Token string `envconfig:"TOKEN"`
}

func (c *validatedConfig) Validate() error {
	if c.Token == "" {
		return errNoToken
	}
	return nil
}

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadFromEnvFile(t *testing.T) {
	path := writeEnvFile(t, "CFGTEST_WORKERS=9\nCFGTEST_TOKEN=from-file\n")
	t.Cleanup(func() {
		os.Unsetenv("CFGTEST_WORKERS")
		os.Unsetenv("CFGTEST_TOKEN")
	})

	conf, err := Load[sampleConfig]("CFGTEST", path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if conf.Workers != 9 || conf.Token != "from-file" {
		t.Fatalf("unexpected config %#v", conf)
	}
	if conf.Listen != "127.0.0.1:8000" || conf.Timeout != 30*time.Second {
		t.Fatalf("defaults not applied: %#v", conf)
	}
}

func TestLoadKeepsProcessEnvironment(t *testing.T) {
	t.Setenv("CFGKEEP_TOKEN", "from-process")
	path := writeEnvFile(t, "CFGKEEP_TOKEN=from-file\n")

	conf, err := Load[sampleConfig]("CFGKEEP", path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if conf.Token != "from-process" {
		t.Fatalf("env file overrode process value: %q", conf.Token)
	}
}

func TestLoadRunsValidator(t *testing.T) {
	t.Setenv("CFGVAL_TOKEN", "")
	t.Cleanup(func() { os.Unsetenv("CFGVAL_UNRELATED") })

	_, err := Load[validatedConfig]("CFGVAL", writeEnvFile(t, "CFGVAL_UNRELATED=1\n"))
	if !errors.Is(err, errNoToken) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load[sampleConfig]("CFGMISS", filepath.Join(t.TempDir(), "absent.env"))
	if err == nil {
		t.Fatal("expected error for missing env file")
	}
}
