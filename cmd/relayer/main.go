// Command relayer watches EVM-family bridge factory contracts, queues
// observed events, and submits the resulting proofs to the hub ledger.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/config"
	"github.com/omni-bridge/hub/pkg/ethereum"
	"github.com/omni-bridge/hub/pkg/kvdb"
	"github.com/omni-bridge/hub/pkg/ledger"
	"github.com/omni-bridge/hub/pkg/relayer"
	"github.com/omni-bridge/hub/pkg/transfer"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "relayer",
		Short: "Relays bridge transfer events from source chains into the hub ledger",
		RunE:  run,
	}
	root.Flags().StringVar(&configFile, "config", "", "path to bridge.toml (default: ./bridge.toml)")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "relayer: %v\n", err)
		os.Exit(config.ExitRuntime)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		os.Exit(config.ExitConfig)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(config.ExitConfig)
	}

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(config.ExitConfig)
	}
	defer log.Sync()

	db, err := dbm.NewDB("hub", dbm.BackendType(cfg.KVBackend), cfg.KVDataDir)
	if err != nil {
		log.Error("open ledger db", zap.Error(err))
		os.Exit(config.ExitConfig)
	}
	store := ledger.NewLedgerStore(kvdb.NewKVAdapter(db))
	coordinator := transfer.NewCoordinator(store)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	queue := relayer.NewRedisQueue(rdb, "transfers")
	cursor := relayer.NewCursorStore(kvdb.NewKVAdapter(db))

	reg := prometheus.NewRegistry()
	metrics := relayer.NewMetrics(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	clients := make(map[chain.Kind]*ethereum.Client)
	for name, url := range cfg.ChainRPCURLs {
		k, ok := chain.ParseKind(name)
		if !ok || !k.IsEVMChain() {
			continue // non-EVM chains (btc, sol) use a different watcher, not built here
		}
		client, err := ethereum.NewClient(url, 0)
		if err != nil {
			log.Error("connect chain rpc", zap.String("chain", name), zap.Error(err))
			continue
		}
		clients[k] = client

		contractAddr, ok := cfg.BridgeContracts[name]
		if !ok {
			continue
		}
		indexer := &relayer.EVMIndexer{
			Chain:         k,
			Client:        client,
			ContractAddr:  common.HexToAddress(contractAddr),
			Cursor:        cursor,
			Queue:         queue,
			Confirmations: cfg.Confirmations[name],
			Log:           log,
		}
		go pollLoop(ctx, indexer, cfg.PollInterval, metrics)
	}

	worker := &relayer.Worker{
		Queue:       queue,
		Coordinator: coordinator,
		ProverID:    "evm",
		Metrics:     metrics,
		Log:         log,
	}
	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("worker stopped", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown", zap.Error(err))
		os.Exit(config.ExitRuntime)
	}
	return nil
}

func pollLoop(ctx context.Context, idx *relayer.EVMIndexer, interval time.Duration, metrics *relayer.Metrics) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			height, err := idx.Poll(ctx)
			if err != nil {
				idx.Log.Error("poll failed", zap.String("chain", idx.Chain.String()), zap.Error(err))
				continue
			}
			metrics.CursorHeight.WithLabelValues(idx.Chain.String()).Set(float64(height))
		}
	}
}
