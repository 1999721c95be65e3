package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardsearch/config"
	"cardsearch/searcher/retain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	metricsAddr string
	storeDir    string

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "cardsearch",
		Short: "Budgeted action search for a hidden information card game",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("metrics-addr") {
				loaded.Metrics.Addr = metricsAddr
			}
			if cmd.Flags().Changed("store") {
				loaded.Store.Dir = storeDir
			}
			cfg = loaded
			setupLogging(cfg.Log)
			return nil
		},
		SilenceUsage: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "persist retained statistics in this directory")
	rootCmd.AddCommand(playCmd, experimentCmd, throughputCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func setupLogging(c config.LogConfig) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}

// serveMetrics exposes the prometheus metrics until ctx is done. It reports
// whether metrics are served.
func serveMetrics(ctx context.Context) bool {
	if cfg.Metrics.Addr == "" {
		return false
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Msgf("serving metrics on %s/metrics", cfg.Metrics.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdown)
	}()
	return true
}

// retained is the statistics store of a command, backed by badger when a
// directory is configured.
type retained struct {
	*retain.Store
	persister *retain.Persister
}

func openStore() (*retained, error) {
	store := &retained{Store: retain.NewStore(cfg.Store.Decay)}
	if cfg.Store.Dir == "" {
		return store, nil
	}

	persister, err := retain.Open(cfg.Store.Dir)
	if err != nil {
		return nil, err
	}
	if err := persister.Load(store.Store); err != nil {
		persister.Close()
		return nil, err
	}
	store.persister = persister
	log.Info().Msgf("loaded %d retained statistics from %s", store.Len(), cfg.Store.Dir)
	return store, nil
}

// Save persists the statistics when a directory is configured.
func (r *retained) Save() error {
	if r.persister == nil {
		return nil
	}
	if err := r.persister.Save(r.Store); err != nil {
		return err
	}
	log.Info().Msgf("saved %d retained statistics to %s", r.Len(), cfg.Store.Dir)
	return nil
}

// Close releases the database. It is safe to call on every path.
func (r *retained) Close() {
	if r.persister == nil {
		return
	}
	if err := r.persister.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close retained statistics")
	}
	r.persister = nil
}
