package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rmq-proxy.json")
	content := `{
		"proxyMode": "LOCAL",
		"namesrvAddr": "ns1:9876;ns2:9876",
		"localBrokerName": "broker-a",
		"localBrokerAddr": "127.0.0.1:10911",
		"grpc": {"grpcServerPort": 9081},
		"routeCacheTtlMillis": 5000,
		"transactionHeartbeatBatchNum": 10,
		"maxDeliveryAttempts": 5
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Mode != ModeLocal {
		t.Errorf("mode %q", cfg.Mode)
	}
	if cfg.GRPC.Port != 9081 {
		t.Errorf("port %d", cfg.GRPC.Port)
	}
	if cfg.RouteCacheTTLMillis != 5000 {
		t.Errorf("route ttl %d", cfg.RouteCacheTTLMillis)
	}
	// Unset fields keep their defaults.
	if cfg.GrpcClientChannelExpireSeconds != 120 {
		t.Errorf("channel expire %d, want default 120", cfg.GrpcClientChannelExpireSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	addrs := cfg.NamesrvAddrs()
	if len(addrs) != 2 || addrs[0] != "ns1:9876" || addrs[1] != "ns2:9876" {
		t.Errorf("namesrv addrs %v", addrs)
	}
}

func TestLoadFromFileRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("RMQ_PROXY_MODE", "local")
	t.Setenv("RMQ_PROXY_NAMESRV_ADDR", "ns9:9876")
	t.Setenv("RMQ_PROXY_GRPC_PORT", "7070")
	t.Setenv("RMQ_PROXY_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)
	if cfg.Mode != ModeLocal {
		t.Errorf("mode %q", cfg.Mode)
	}
	if cfg.NamesrvAddr != "ns9:9876" {
		t.Errorf("namesrv %q", cfg.NamesrvAddr)
	}
	if cfg.GRPC.Port != 7070 {
		t.Errorf("port %d", cfg.GRPC.Port)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("log level %q", cfg.Observability.LogLevel)
	}
}

func TestLoadFromHome(t *testing.T) {
	home := t.TempDir()
	if err := os.MkdirAll(filepath.Join(home, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"proxyMode": "CLUSTER", "namesrvAddr": "ns-from-home:9876"}`
	if err := os.WriteFile(filepath.Join(home, "conf", ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(HomeEnv, home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NamesrvAddr != "ns-from-home:9876" {
		t.Errorf("namesrv %q, want value from home config", cfg.NamesrvAddr)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "SIDEWAYS" }},
		{"port zero", func(c *Config) { c.GRPC.Port = 0 }},
		{"port too big", func(c *Config) { c.GRPC.Port = 70000 }},
		{"no namesrv", func(c *Config) { c.NamesrvAddr = "" }},
		{"local without broker", func(c *Config) { c.Mode = ModeLocal; c.LocalBrokerName = "" }},
		{"zero batch", func(c *Config) { c.TransactionHeartbeatBatchNum = 0 }},
		{"zero attempts", func(c *Config) { c.MaxDeliveryAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
