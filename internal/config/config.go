// Package config loads proxy configuration from a JSON file under the home
// directory named by the RMQ_PROXY_HOME environment variable, with environment
// overrides applied on top. Engines receive the Config value through their
// constructors; nothing reads configuration globally.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ProxyMode selects the deployment topology.
type ProxyMode string

const (
	// ModeLocal co-locates the proxy with a broker and bypasses the network.
	ModeLocal ProxyMode = "LOCAL"
	// ModeCluster runs the proxy remote from the brokers.
	ModeCluster ProxyMode = "CLUSTER"
)

// Valid reports whether m names a known proxy mode.
func (m ProxyMode) Valid() bool {
	return m == ModeLocal || m == ModeCluster
}

// GRPCConfig holds the client-facing gRPC server settings.
type GRPCConfig struct {
	Port           int `json:"grpcServerPort"`
	ShutdownWaitS  int `json:"grpcShutdownTimeSeconds"`
	MaxRecvMsgSize int `json:"grpcMaxInboundMessageSize"` // bytes, 0 = grpc default
}

// ObservabilityConfig holds metrics, tracing, and logging settings.
type ObservabilityConfig struct {
	MetricsEnabled    bool    `json:"metricsEnabled"`
	MetricsAddr       string  `json:"metricsAddr"`
	MetricsNamespace  string  `json:"metricsNamespace"`
	TracingEnabled    bool    `json:"tracingEnabled"`
	TracingExporter   string  `json:"tracingExporter"` // otlp-http, stdout
	TracingEndpoint   string  `json:"tracingEndpoint"`
	TracingSampleRate float64 `json:"tracingSampleRate"`
	LogLevel          string  `json:"logLevel"`
	LogFormat         string  `json:"logFormat"` // text, json
}

// Config is the full proxy configuration.
type Config struct {
	Mode ProxyMode `json:"proxyMode"`

	NamesrvAddr string `json:"namesrvAddr"` // host:port[;host:port...]

	// Local mode: the co-located broker's identity, used to synthesize the
	// advertised address on query-route.
	LocalBrokerName    string `json:"localBrokerName"`
	LocalBrokerCluster string `json:"localBrokerCluster"`
	LocalBrokerAddr    string `json:"localBrokerAddr"`

	GRPC GRPCConfig `json:"grpc"`

	RouteCacheTTLMillis         int64 `json:"routeCacheTtlMillis"`
	RouteCacheNegativeTTLMillis int64 `json:"routeCacheNegativeTtlMillis"`

	LongPollingReserveTimeInMillis int64 `json:"longPollingReserveTimeInMillis"`
	DefaultBrokerTimeoutMillis     int64 `json:"defaultBrokerTimeoutMillis"`

	TransactionHeartbeatPeriodSecond            int `json:"transactionHeartbeatPeriodSecond"`
	TransactionHeartbeatBatchNum                int `json:"transactionHeartbeatBatchNum"`
	TransactionHeartbeatThreadPoolNums          int `json:"transactionHeartbeatThreadPoolNums"`
	TransactionHeartbeatThreadPoolQueueCapacity int `json:"transactionHeartbeatThreadPoolQueueCapacity"`

	GrpcProxyRelayRequestTimeoutInSeconds int `json:"grpcProxyRelayRequestTimeoutInSeconds"`
	GrpcClientChannelExpireSeconds        int `json:"grpcClientChannelExpireSeconds"`

	// MessageDelayLevel mirrors the broker's delay-level table, e.g.
	// "1s 5s 10s 30s 1m 2m 3m 4m 5m 6m 7m 8m 9m 10m 20m 30m 1h 2h".
	MessageDelayLevel   string `json:"messageDelayLevel"`
	MaxDeliveryAttempts int    `json:"maxDeliveryAttempts"`

	// Nack invisibility backoff: min(max, initial * multiplier^n).
	RetryInitialInvisibleMillis int64   `json:"retryInitialInvisibleMillis"`
	RetryMaxInvisibleMillis     int64   `json:"retryMaxInvisibleMillis"`
	RetryInvisibleMultiplier    float64 `json:"retryInvisibleMultiplier"`

	Observability ObservabilityConfig `json:"observability"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:        ModeCluster,
		NamesrvAddr: "127.0.0.1:9876",
		GRPC: GRPCConfig{
			Port:          8081,
			ShutdownWaitS: 30,
		},
		RouteCacheTTLMillis:            20_000,
		RouteCacheNegativeTTLMillis:    2_000,
		LongPollingReserveTimeInMillis: 100,
		DefaultBrokerTimeoutMillis:     3_000,

		TransactionHeartbeatPeriodSecond:            20,
		TransactionHeartbeatBatchNum:                100,
		TransactionHeartbeatThreadPoolNums:          20,
		TransactionHeartbeatThreadPoolQueueCapacity: 500,

		GrpcProxyRelayRequestTimeoutInSeconds: 20,
		GrpcClientChannelExpireSeconds:        120,

		MessageDelayLevel:   "1s 5s 10s 30s 1m 2m 3m 4m 5m 6m 7m 8m 9m 10m 20m 30m 1h 2h",
		MaxDeliveryAttempts: 16,

		RetryInitialInvisibleMillis: 5_000,
		RetryMaxInvisibleMillis:     2 * 60 * 60 * 1000,
		RetryInvisibleMultiplier:    2.0,

		Observability: ObservabilityConfig{
			MetricsEnabled:    true,
			MetricsAddr:       ":9095",
			MetricsNamespace:  "quasar",
			TracingEnabled:    false,
			TracingExporter:   "otlp-http",
			TracingEndpoint:   "localhost:4318",
			TracingSampleRate: 1.0,
			LogLevel:          "info",
			LogFormat:         "text",
		},
	}
}

// ConfigFileName is the expected file name under the proxy home directory.
const ConfigFileName = "rmq-proxy.json"

// HomeEnv names the environment variable pointing at the proxy home directory.
const HomeEnv = "RMQ_PROXY_HOME"

// Load resolves the proxy home directory, reads the JSON config file if it
// exists, and applies environment overrides. A missing file is not an error;
// the defaults stand.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if home := os.Getenv(HomeEnv); home != "" {
		path := filepath.Join(home, "conf", ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadFromFile(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	}

	LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("RMQ_PROXY_MODE"); v != "" {
		cfg.Mode = ProxyMode(strings.ToUpper(v))
	}
	if v := os.Getenv("RMQ_PROXY_NAMESRV_ADDR"); v != "" {
		cfg.NamesrvAddr = v
	}
	if v := os.Getenv("RMQ_PROXY_GRPC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.GRPC.Port = port
		}
	}
	if v := os.Getenv("RMQ_PROXY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
}

// Validate rejects configurations the proxy cannot start with.
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("unknown proxyMode %q", c.Mode)
	}
	if c.GRPC.Port <= 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("grpcServerPort out of range: %d", c.GRPC.Port)
	}
	if c.NamesrvAddr == "" {
		return fmt.Errorf("namesrvAddr is required")
	}
	if c.Mode == ModeLocal && c.LocalBrokerName == "" {
		return fmt.Errorf("localBrokerName is required in LOCAL mode")
	}
	if c.TransactionHeartbeatBatchNum <= 0 {
		return fmt.Errorf("transactionHeartbeatBatchNum must be positive")
	}
	if c.MaxDeliveryAttempts <= 0 {
		return fmt.Errorf("maxDeliveryAttempts must be positive")
	}
	return nil
}

// NamesrvAddrs splits the semicolon-separated name-server list.
func (c *Config) NamesrvAddrs() []string {
	parts := strings.Split(c.NamesrvAddr, ";")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}
