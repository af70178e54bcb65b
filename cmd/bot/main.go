package main

import (
	"context"
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mvelasco/mueslibot/config"
	"github.com/mvelasco/mueslibot/internal/adapters/cardano"
	"github.com/mvelasco/mueslibot/internal/adapters/muesli"
	"github.com/mvelasco/mueslibot/internal/adapters/notify"
	"github.com/mvelasco/mueslibot/internal/adapters/storage"
	"github.com/mvelasco/mueslibot/internal/application/engine"
	"github.com/mvelasco/mueslibot/internal/application/inventory"
	"github.com/mvelasco/mueslibot/internal/application/strategy"
	"github.com/mvelasco/mueslibot/internal/application/tracker"
	"github.com/mvelasco/mueslibot/internal/application/txbuilder"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one trading cycle and exit")
	dryRun := flag.Bool("dry-run", false, "plan transactions but never submit them")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full cycle table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("mueslibot starting",
		"config", *configPath,
		"strategy", cfg.Strategy.Name,
		"tokens", len(cfg.Tokens),
		"interval", cfg.LoopInterval(),
		"dry_run", *dryRun || cfg.Chain.DisableTx,
		"once", *once,
	)

	script, err := loadScript(cfg.Exchange.ScriptFile)
	if err != nil {
		slog.Error("failed to load validator script", "err", err, "path", cfg.Exchange.ScriptFile)
		os.Exit(1)
	}

	exchange := muesli.NewClient(cfg.Exchange.APIBase, cfg.Exchange.OnchainBase)
	chain := cardano.NewClient(cfg.Chain.BlockfrostBase, cfg.Chain.BlockfrostProject,
		cfg.Chain.SignerURL, *dryRun || cfg.Chain.DisableTx)

	trackingStore, err := storage.NewTrackingFiles(cfg.Storage.OrdersDir)
	if err != nil {
		slog.Error("failed to open order tracking dir", "err", err)
		os.Exit(1)
	}
	inventoryStore, err := storage.NewInventoryFiles(cfg.Storage.InventoryDir)
	if err != nil {
		slog.Error("failed to open inventory dir", "err", err)
		os.Exit(1)
	}
	history, err := storage.NewHistory(cfg.Storage.HistoryDSN)
	if err != nil {
		slog.Error("failed to open history store", "err", err, "dsn", cfg.Storage.HistoryDSN)
		os.Exit(1)
	}
	defer history.Close()

	placers := make(map[string]strategy.OrderPlacer, len(cfg.Tokens))
	for key, token := range cfg.Tokens {
		placers[key] = txbuilder.New(chain, token, cfg.Exchange, script)
	}

	eng, err := engine.New(cfg, engine.Deps{
		Chain:    chain,
		Exchange: exchange,
		Tracker:  tracker.New(chain, trackingStore, cfg.Exchange.ExpiryBlocks),
		Valuator: inventory.NewValuator(inventoryStore),
		History:  history,
		Notifier: notify.NewConsole(cfg.Exchange.BaseDecimals, *table),
		Placers:  placers,
	})
	if err != nil {
		slog.Error("failed to build engine", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		if err := eng.RunOnce(ctx); err != nil {
			slog.Error("trading cycle failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := eng.Run(ctx); err != nil {
		slog.Error("engine exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("mueslibot stopped cleanly")
}

// loadScript reads the hex-encoded validator. Optional: without it the bot
// can place orders but not cancel them on chain.
func loadScript(path string) ([]byte, error) {
	if path == "" {
		slog.Warn("no validator script configured, cancels will be rejected")
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(strings.TrimSpace(string(data)))
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
