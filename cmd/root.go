// Package cmd defines the CLI commands for the rounds-watcher executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	pubsubv2 "cloud.google.com/go/pubsub/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lmoretti/rounds-watcher/internal/acquire"
	"github.com/lmoretti/rounds-watcher/internal/clock/system"
	"github.com/lmoretti/rounds-watcher/internal/config"
	"github.com/lmoretti/rounds-watcher/internal/fetch/headless"
	"github.com/lmoretti/rounds-watcher/internal/logging"
	"github.com/lmoretti/rounds-watcher/internal/metrics"
	"github.com/lmoretti/rounds-watcher/internal/notify/noop"
	"github.com/lmoretti/rounds-watcher/internal/notify/ntfy"
	pubsubnotify "github.com/lmoretti/rounds-watcher/internal/notify/pubsub"
	"github.com/lmoretti/rounds-watcher/internal/round"
	"github.com/lmoretti/rounds-watcher/internal/store"
	"github.com/lmoretti/rounds-watcher/internal/watcher"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rounds-watcher",
		Short: "Watches a public results page for new healthcare invitation rounds.",
		Long: `rounds-watcher periodically renders the configured results page,
filters it down to healthcare rounds, and compares the latest round
against the last one it recorded. A new round date triggers a push
notification and an atomic update of the recorded state.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadApp builds the config and logger every command starts from.
func loadApp() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()
	return cfg, logger, nil
}

// buildWatcher wires a Watcher from configuration. The returned cleanup
// releases the browser allocator and any notifier client.
func buildWatcher(ctx context.Context, cfg config.Config, logger *zap.Logger) (*watcher.Watcher, func(), error) {
	source, err := headless.New(headless.Config{
		TargetURL:      cfg.Source.URL,
		FilterTerm:     cfg.Source.FilterTerm,
		FilterSelector: cfg.Source.FilterSelector,
		TableSelector:  cfg.Source.TableSelector,
		RowSelector:    cfg.Source.RowSelector,
		UserAgent:      cfg.Source.UserAgent,
		SettleDelay:    cfg.Source.SettleDelay(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init headless source: %w", err)
	}
	cleanups := []func(){source.Close}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	fetcher, err := acquire.New(source, acquire.Config{
		MaxAttempts:    cfg.Acquire.MaxAttempts,
		InitialBackoff: cfg.Acquire.InitialBackoff(),
		AttemptTimeout: cfg.Acquire.AttemptTimeout(),
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init acquisition: %w", err)
	}

	fileStore, err := store.New(cfg.Store.Path, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init store: %w", err)
	}

	notifier, notifierCleanup, err := buildNotifier(ctx, cfg.Notify, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if notifierCleanup != nil {
		cleanups = append(cleanups, notifierCleanup)
	}

	w, err := watcher.New(fileStore, fetcher, notifier, system.New(), logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init watcher: %w", err)
	}
	return w, cleanup, nil
}

func buildNotifier(ctx context.Context, cfg config.NotifyConfig, logger *zap.Logger) (round.Notifier, func(), error) {
	switch cfg.Provider {
	case "ntfy":
		logger.Info("using ntfy notifier", zap.String("topic", cfg.Ntfy.Topic))
		n, err := ntfy.New(ntfy.Config{
			Server:  cfg.Ntfy.Server,
			Topic:   cfg.Ntfy.Topic,
			Timeout: cfg.Ntfy.Timeout(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init ntfy notifier: %w", err)
		}
		return n, nil, nil
	case "pubsub":
		logger.Info("using pubsub notifier", zap.String("topic", cfg.PubSub.TopicName))
		client, err := pubsubv2.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("init pubsub client: %w", err)
		}
		publisher := client.Publisher(cfg.PubSub.TopicName)
		cleanup := func() {
			publisher.Stop()
			if err := client.Close(); err != nil {
				logger.Warn("close pubsub client", zap.Error(err))
			}
		}
		return pubsubnotify.New(publisher), cleanup, nil
	case "noop":
		logger.Info("notifications disabled")
		return noop.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown notify provider: %s", cfg.Provider)
	}
}
