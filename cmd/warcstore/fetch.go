package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iamNilotpal/warcstore/config"
	"github.com/iamNilotpal/warcstore/internal/adapters/fetch"
	"github.com/iamNilotpal/warcstore/internal/core/services/store"
	storeerrors "github.com/iamNilotpal/warcstore/pkg/errors"
	"github.com/iamNilotpal/warcstore/pkg/logger"
	"github.com/iamNilotpal/warcstore/pkg/metrics"
	"github.com/iamNilotpal/warcstore/pkg/system"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [urls...]",
		Short: "Fetch URLs and archive the responses",
		Long:  "Fetch every URL given as argument, or read one URL per line from stdin when none is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var input io.Reader
			if len(args) == 0 {
				input = cmd.InOrStdin()
			}
			return runFetch(ctx, cfg, args, input)
		},
	}

	cmd.Flags().String("dir", "", "Directory receiving the segments (overrides store.directory)")
	cmd.Flags().Int("workers", 0, "Number of concurrent fetchers (overrides fetch.workers)")
	cmd.Flags().Bool("metrics", false, "Serve prometheus metrics (overrides metrics.enable)")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logger.Level = level
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Store.Directory = dir
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Fetch.Workers = workers
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Metrics.Enable, _ = cmd.Flags().GetBool("metrics")
	}
	return cfg, nil
}

func runFetch(ctx context.Context, cfg *config.Config, args []string, input io.Reader) error {
	log, err := logger.New("warcstore", cfg.Logger)
	if err != nil {
		return err
	}
	defer log.Sync()

	opts, err := cfg.StoreOptions(log)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enable {
		registry := prometheus.NewRegistry()
		opts.Metrics = metrics.New(registry)

		srv := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", zap.String("address", cfg.Metrics.Address))
	}

	s, err := store.New(opts)
	if err != nil {
		if ve := storeerrors.AsValidationError(err); ve != nil {
			log.Error("invalid store options", zap.String("field", ve.Field), zap.Any("value", ve.Value), zap.Error(ve.Err))
		}
		return err
	}

	fetcher := fetch.New(s, fetch.Options{
		Workers:   cfg.Fetch.Workers,
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		Logger:    log.Named("fetch"),
	})

	result, runErr := fetchAll(ctx, fetcher, args, input)
	log.Info("fetch finished",
		zap.Uint64("fetched", result.Fetched),
		zap.Uint64("duplicates", result.Duplicates),
		zap.Uint64("failed", result.Failed),
		zap.Uint64("rotations", s.Stats().Rotations),
	)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := system.RunWithContext(shutdownCtx, s.Close); err != nil {
		log.Error("failed to close store", zap.Error(err))
		return multierr.Append(runErr, fmt.Errorf("closing store: %w", err))
	}
	return runErr
}

// fetchAll runs fetcher over the URLs from args and input. The feeder stops
// as soon as the fetcher returns, including after a fatal store error, and
// has exited by the time fetchAll returns.
func fetchAll(ctx context.Context, fetcher *fetch.Fetcher, args []string, input io.Reader) (fetch.Result, error) {
	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()

	urls := make(chan string)
	fed := make(chan struct{})
	go func() {
		defer close(fed)
		feedURLs(feedCtx, urls, args, input)
	}()

	result, err := fetcher.Run(ctx, urls)
	stopFeed()
	<-fed
	return result, err
}

// feedURLs sends args, or else every non-empty line of input, to urls and
// closes it.
func feedURLs(ctx context.Context, urls chan<- string, args []string, input io.Reader) {
	defer close(urls)

	send := func(u string) bool {
		select {
		case urls <- u:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, u := range args {
		if !send(u) {
			return
		}
	}

	if input == nil {
		return
	}

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !send(line) {
			return
		}
	}
}
