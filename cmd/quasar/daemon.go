package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oriys/quasar/internal/config"
	"github.com/oriys/quasar/internal/consumer"
	"github.com/oriys/quasar/internal/endpoint"
	"github.com/oriys/quasar/internal/forwarder"
	quasargrpc "github.com/oriys/quasar/internal/grpc"
	"github.com/oriys/quasar/internal/logging"
	"github.com/oriys/quasar/internal/metrics"
	"github.com/oriys/quasar/internal/nameserv"
	"github.com/oriys/quasar/internal/observability"
	"github.com/oriys/quasar/internal/producer"
	"github.com/oriys/quasar/internal/relay"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/retrypolicy"
	"github.com/oriys/quasar/internal/route"
	"github.com/oriys/quasar/internal/selector"
	"github.com/oriys/quasar/internal/service"
	"github.com/oriys/quasar/internal/transaction"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		grpcPort int
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the proxy server",
		Long:  "Run the proxy daemon: gRPC surface, broker relay engines, and background loops",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if cmd.Flags().Changed("mode") {
				cfg.Mode = config.ProxyMode(strings.ToUpper(modeFlag))
			}
			if cmd.Flags().Changed("grpc-port") {
				cfg.GRPC.Port = grpcPort
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Observability.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runDaemon(cfg)
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", string(config.ModeCluster), "Proxy mode: LOCAL or CLUSTER")
	cmd.Flags().IntVar(&grpcPort, "grpc-port", 0, "Override the gRPC listen port")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the log level")
	return cmd
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		config.LoadFromEnv(cfg)
		return cfg, nil
	}
	return config.Load()
}

func runDaemon(cfg *config.Config) error {
	obs := cfg.Observability
	logging.InitStructured(obs.LogFormat, obs.LogLevel)

	if err := observability.Init(context.Background(), observability.Config{
		Enabled:     obs.TracingEnabled,
		Exporter:    obs.TracingExporter,
		Endpoint:    obs.TracingEndpoint,
		ServiceName: "quasar",
		SampleRate:  obs.TracingSampleRate,
	}); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.Shutdown(context.Background())

	if obs.MetricsEnabled {
		metrics.Init(obs.MetricsNamespace)
		go serveMetrics(obs.MetricsAddr)
	}

	brokerTimeout := time.Duration(cfg.DefaultBrokerTimeoutMillis) * time.Millisecond

	// Layered construction: name service -> route cache -> client pools ->
	// engines -> relay -> activities. The back-request handler is installed
	// after the proxy exists; connections are dialed lazily, so no broker
	// command can arrive before the handler is bound.
	var proxy *service.Proxy
	backHandler := func(addr string, cmd *remoting.Command) *remoting.Command {
		return proxy.HandleBrokerRequest(addr, cmd)
	}

	nameClient, err := nameserv.NewClient(cfg.NamesrvAddrs(),
		remoting.NewClient(brokerTimeout, nil), brokerTimeout)
	if err != nil {
		return err
	}
	routes := route.NewCache(nameClient, route.CacheConfig{
		TTL:         time.Duration(cfg.RouteCacheTTLMillis) * time.Millisecond,
		NegativeTTL: time.Duration(cfg.RouteCacheNegativeTTLMillis) * time.Millisecond,
	})

	factory, localBroker := clientFactory(cfg, backHandler)
	if cfg.Mode == config.ModeLocal && localBroker == nil {
		return fmt.Errorf("local mode requires an embedded broker build")
	}
	clients := forwarder.NewManager(forwarder.DefaultPolicies(), factory)
	clients.StartAll()

	policy, err := retrypolicy.New(cfg.MessageDelayLevel,
		time.Duration(cfg.RetryInitialInvisibleMillis)*time.Millisecond,
		time.Duration(cfg.RetryMaxInvisibleMillis)*time.Millisecond,
		cfg.RetryInvisibleMultiplier)
	if err != nil {
		return err
	}

	txHearts := transaction.NewHeartbeatService(transaction.HeartbeatConfig{
		Period:        time.Duration(cfg.TransactionHeartbeatPeriodSecond) * time.Second,
		BatchNum:      cfg.TransactionHeartbeatBatchNum,
		Workers:       cfg.TransactionHeartbeatThreadPoolNums,
		QueueCapacity: cfg.TransactionHeartbeatThreadPoolQueueCapacity,
		SendTimeout:   brokerTimeout,
	}, routes, clients)

	producers := producer.NewEngine(routes, selector.NewWriteSelector(), clients, policy, txHearts)
	consumers := consumer.NewEngine(consumer.Config{
		LongPollingReserve: time.Duration(cfg.LongPollingReserveTimeInMillis) * time.Millisecond,
		DefaultTimeout:     brokerTimeout,
	}, routes, selector.NewReadSelector(), clients, policy, producers)

	relays := relay.NewManager(relay.Config{
		ResponseTimeout: time.Duration(cfg.GrpcProxyRelayRequestTimeoutInSeconds) * time.Second,
		ChannelExpire:   time.Duration(cfg.GrpcClientChannelExpireSeconds) * time.Second,
	})

	proxy = service.NewProxy(cfg, routes, producers, consumers, relays, txHearts, endpoint.IdentityConverter{})

	relays.Start()
	txHearts.Start()

	server := quasargrpc.NewServer(proxy, cfg.GRPC.MaxRecvMsgSize)
	if err := server.Start(cfg.GRPC.Port); err != nil {
		return err
	}

	logging.Op().Info("proxy started", "mode", cfg.Mode, "grpcPort", cfg.GRPC.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logging.Op().Info("shutting down", "signal", sig.String())

	// Shutdown ordering: stop accepting RPCs, stop the heartbeat loop, fail
	// relay pendings, then drain the broker clients.
	server.Stop(time.Duration(cfg.GRPC.ShutdownWaitS) * time.Second)
	txHearts.Shutdown()
	relays.Shutdown()
	clients.ShutdownAll()

	logging.Op().Info("proxy stopped")
	return nil
}

// clientFactory returns the per-role client factory. Cluster mode dials TCP
// remoting clients; local mode substitutes the embedded broker adapter.
// The embedded broker is provided by local-mode builds; this build returns
// nil and serve refuses to start LOCAL without it.
func clientFactory(cfg *config.Config, handler remoting.BackRequestHandler) (forwarder.Factory, remoting.EmbeddedBroker) {
	if cfg.Mode == config.ModeLocal {
		broker := embeddedBroker()
		if broker == nil {
			return nil, nil
		}
		return func(role forwarder.Role, policy forwarder.Policy, instanceName string) (remoting.Invoker, error) {
			return remoting.NewLocalInvoker(broker), nil
		}, broker
	}
	return func(role forwarder.Role, policy forwarder.Policy, instanceName string) (remoting.Invoker, error) {
		return remoting.NewClient(policy.DialTimeout, handler), nil
	}, nil
}

// embeddedBroker is overridden by builds that link the co-located broker.
var embeddedBroker = func() remoting.EmbeddedBroker { return nil }

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logging.Op().Info("metrics listener started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Op().Error("metrics listener stopped", "error", err)
	}
}
