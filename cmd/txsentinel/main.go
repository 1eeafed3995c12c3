package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bitcoin-sv/txsentinel/config"
	sentinelLogger "github.com/bitcoin-sv/txsentinel/internal/logger"
	"github.com/bitcoin-sv/txsentinel/internal/mq"
	"github.com/bitcoin-sv/txsentinel/internal/p2p"
	"github.com/bitcoin-sv/txsentinel/internal/radar"
	"github.com/bitcoin-sv/txsentinel/internal/tracing"
	"github.com/bitcoin-sv/txsentinel/internal/version"
	"github.com/bitcoin-sv/txsentinel/pkg/sentinel"
)

func main() {
	err := run()
	if err != nil {
		log.Fatalf("failed to run txsentinel: %v", err)
	}

	os.Exit(0)
}

func run() error {
	configDir, dumpConfigFile := parseFlags()

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}

	if dumpConfigFile != "" {
		return config.DumpConfig(dumpConfigFile)
	}

	logger, err := sentinelLogger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %v", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to get host name: %v", err)
	}

	logger = logger.With(slog.String("host", hostname))

	logger.Info("Starting txsentinel", slog.String("version", version.Version), slog.String("commit", version.Commit))

	shutdownFns := make([]func(), 0)
	shutdownCh := make(chan string, 1)

	go func() {
		if cfg.ProfilerAddr != "" {
			logger.Info(fmt.Sprintf("Starting profiler on http://%s/debug/pprof", cfg.ProfilerAddr))

			err := http.ListenAndServe(cfg.ProfilerAddr, nil)
			if err != nil {
				logger.Error("failed to start profiler server", slog.String("err", err.Error()))
			}
		}
	}()

	go func() {
		if cfg.Prometheus.IsEnabled() {
			logger.Info("Starting prometheus", slog.String("endpoint", cfg.Prometheus.Endpoint))
			http.Handle(cfg.Prometheus.Endpoint, promhttp.Handler())
			err = http.ListenAndServe(cfg.Prometheus.Addr, nil)
			if err != nil {
				logger.Error("failed to start prometheus server", slog.String("err", err.Error()))
			}
		}
	}()

	network, err := config.GetNetwork(cfg.Network)
	if err != nil {
		return err
	}

	p2p.SetExcessiveBlockSize(cfg.P2P.ExcessiveBlockSize)

	orchestrator := p2p.NewOrchestrator(logger, network, cfg.PeerAddresses(),
		p2p.WithConnectionTimeout(cfg.P2P.ConnectionTimeout),
		p2p.WithRetryInterval(cfg.P2P.RetryInterval, cfg.P2P.MaxRetryInterval),
		p2p.WithUserAgent(cfg.P2P.UserAgent, version.Version),
		p2p.WithChannelOptions(
			p2p.WithPingInterval(cfg.P2P.PingInterval, cfg.P2P.HealthThreshold),
		),
	)
	snl := sentinel.New(logger, orchestrator, sentinel.WithTaskQueueSize(cfg.Sentinel.QueueSize))

	// stop observation before tearing the overlay down
	shutdownFns = append(shutdownFns, snl.Stop, orchestrator.Shutdown)

	tracing.NewChannelCollector(snl.Stats())

	var tracker *radar.Tracker
	if cfg.Radar.Enabled {
		tracker = radar.NewTracker(logger, uint64(cfg.Sentinel.MaxOutboundPeers)) // #nosec G115 - validated positive
		for _, hashStr := range cfg.Radar.Hashes {
			hash, err := chainhash.NewHashFromStr(hashStr)
			if err != nil {
				return fmt.Errorf("invalid radar hash %s: %w", hashStr, err)
			}

			tracker.Track(hash)
		}

		tracing.NewRadarCollector(tracker)
	}

	var publisher *mq.Publisher
	if cfg.Mq.Enabled {
		publisher, err = mq.NewPublisher(logger, cfg.Mq.URL, cfg.Mq.Topic)
		if err != nil {
			return fmt.Errorf("failed to create mq publisher: %w", err)
		}
		shutdownFns = append(shutdownFns, publisher.Shutdown)
	}

	onTransaction := func(txHash *chainhash.Hash) {
		logger.Debug("Transaction observed", slog.String("hash", txHash.String()))

		if tracker != nil {
			tracker.Observe(txHash)
		}

		if publisher != nil {
			err := publisher.PublishHash(txHash)
			if err != nil {
				logger.Error("failed to publish observed hash", slog.String("err", err.Error()))
			}
		}
	}

	onStartResult := func(err error) {
		if err != nil {
			logger.Error("Connect sequence failed to begin", slog.String("err", err.Error()))
			shutdownCh <- fmt.Sprintf("connect sequence failed: %v", err)
			return
		}

		logger.Info("Connect sequence initiated")
	}

	err = snl.Start(cfg.Sentinel.Workers, cfg.Sentinel.MaxOutboundPeers, onTransaction, onStartResult)
	if err != nil {
		return fmt.Errorf("failed to start sentinel: %w", err)
	}

	// setup signal catching
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case reason := <-shutdownCh:
		logger.Info("Received shutdown signal", slog.String("reason", reason))
	case sig := <-signalChan:
		logger.Info("Received shutdown signal", slog.String("reason", sig.String()))
	}
	appCleanup(logger, shutdownFns)

	return nil
}

func appCleanup(logger *slog.Logger, shutdownFns []func()) {
	logger.Info("cleaning up")
	for _, fn := range shutdownFns {
		fn()
	}
}

func parseFlags() (configDir string, dumpConfigFile string) {
	flag.StringVar(&configDir, "config", "", "path to config directory")
	flag.StringVar(&dumpConfigFile, "dump_config", "", "dump effective config to the given file and exit")
	flag.Parse()

	return
}
