package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg != DefaultServer() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadServerOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	data := []byte("port: 4000\nread_timeout: 10s\nlog_level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("port: got %d", cfg.Port)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("read timeout: got %v", cfg.ReadTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %q", cfg.LogLevel)
	}
	// Untouched keys keep their defaults.
	if cfg.BindAddress != "0.0.0.0" {
		t.Errorf("bind address: got %q", cfg.BindAddress)
	}
	if cfg.SendQueueSize != 256 {
		t.Errorf("send queue size: got %d", cfg.SendQueueSize)
	}
}

func TestLoadServerRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte("port: [nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadServer(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadClientOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	data := []byte("server_addr: example.com:9000\ntick_interval: 100ms\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadClient(path)
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.ServerAddr != "example.com:9000" {
		t.Errorf("server addr: got %q", cfg.ServerAddr)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Errorf("tick interval: got %v", cfg.TickInterval)
	}
	if cfg.DialTimeout != 5*time.Second {
		t.Errorf("dial timeout: got %v", cfg.DialTimeout)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q): got %v, want %v", in, got, want)
		}
	}
}
