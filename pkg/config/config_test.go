package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	BaseURL string        `split_words:"true" default:"https://example.invalid"`
	APIKey  string        `split_words:"true" required:"true"`
	Timeout time.Duration `default:"5s"`
}

// These tests touch process environment and package state, so they run serially.

func TestNewReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CFGTEST_API_KEY=from-file\nCFGTEST_TIMEOUT=2s\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("CFGTEST_API_KEY")
		os.Unsetenv("CFGTEST_TIMEOUT")
		SetEnvFile("")
	})

	SetEnvFile(path)
	conf, err := New[sampleConfig]("CFGTEST")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.APIKey != "from-file" || conf.Timeout != 2*time.Second {
		t.Fatalf("config = %+v", conf)
	}
	if conf.BaseURL != "https://example.invalid" {
		t.Fatalf("BaseURL = %q, want default", conf.BaseURL)
	}
}

func TestProcessEnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CFGWIN_API_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CFGWIN_API_KEY", "from-env")
	t.Cleanup(func() { SetEnvFile("") })

	SetEnvFile(path)
	conf, err := New[sampleConfig]("CFGWIN")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.APIKey != "from-env" {
		t.Fatalf("APIKey = %q, want from-env", conf.APIKey)
	}
}

func TestNewMissingRequired(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })
	SetEnvFile(filepath.Join(t.TempDir(), "absent.env"))

	if _, err := New[sampleConfig]("CFGNONE"); err == nil {
		t.Fatalf("New() error = nil, want missing file error")
	}

	SetEnvFile("")
	if _, err := New[sampleConfig]("CFGNONE"); err == nil {
		t.Fatalf("New() error = nil, want required field error")
	}
}

func TestMustNewPanics(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })
	SetEnvFile("")

	defer func() {
		if recover() == nil {
			t.Fatalf("MustNew() did not panic")
		}
	}()
	MustNew[sampleConfig]("CFGPANIC")
}
