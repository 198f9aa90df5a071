// ABOUTME: Root Cobra command and global flags
// ABOUTME: Wires config, logging, the archive database and the fetch API

package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/cache"
	"github.com/harper/vkattach/internal/config"
	"github.com/harper/vkattach/internal/db"
	"github.com/harper/vkattach/internal/kv"
	"github.com/harper/vkattach/internal/logging"
	"github.com/harper/vkattach/internal/vkapi"
)

// skipSetup marks commands that only touch the config file.
const skipSetup = "skip-setup"

var (
	dbPath      string
	verbose     bool
	showMetrics bool

	cfg      *config.Config
	logger   = zap.NewNop()
	dbConn   *sql.DB
	registry = prometheus.NewRegistry()
	store    cache.Store
	api      attachment.API
	closers  []io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "vkattach",
	Short: "Browse and fill attachments of archived messages",
	Long: `vkattach keeps an archive of message objects and lets you inspect
their photos, polls and graffiti, including everything carried by nested
forwarded messages.

Attachments start with whatever the message carried. Loading one fetches
its full payload through the API and caches it locally.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print API and cache metrics on exit")
}

func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err = logging.New(verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	path := dbPath
	if path == "" {
		path = db.GetDefaultDBPath()
	}
	dbConn, err = db.InitDB(path)
	if err != nil {
		return err
	}
	logger.Debug("database open", zap.String("path", path))

	store, err = openStore()
	if err != nil {
		return err
	}
	api = buildAPI()
	return nil
}

// openStore opens the configured payload cache backend. It returns nil for
// the "none" backend.
func openStore() (cache.Store, error) {
	switch cfg.GetCacheBackend() {
	case config.CacheNone:
		return nil, nil
	case config.CacheBadger:
		s, err := kv.Open(cfg.GetKVPath(), cfg.GetCacheTTL())
		if err != nil {
			return nil, err
		}
		closers = append(closers, s)
		return s, nil
	default:
		return db.NewPayloadStore(dbConn), nil
	}
}

// buildAPI returns the fetch API, or nil when no access token is set.
func buildAPI() attachment.API {
	if !cfg.IsConfigured() {
		logger.Debug("no access token configured; attachments will not load")
		return nil
	}

	client := vkapi.New(cfg.GetAccessToken(),
		vkapi.WithBaseURL(cfg.GetAPIBaseURL()),
		vkapi.WithVersion(cfg.GetAPIVersion()),
		vkapi.WithRateLimit(cfg.GetRateLimit()),
		vkapi.WithLogger(logger),
		vkapi.WithMetrics(vkapi.NewMetrics(registry)),
	)
	if store == nil {
		return client
	}
	return cache.New(client, store,
		cache.WithLogger(logger),
		cache.WithMetrics(cache.NewMetrics(registry)),
	)
}

func teardown() error {
	if showMetrics {
		printMetrics(os.Stderr)
	}

	var firstErr error
	for _, c := range closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if dbConn != nil {
		if err := dbConn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = logger.Sync()
	return firstErr
}

// printMetrics writes every non-zero counter and histogram count.
func printMetrics(w io.Writer) {
	families, err := registry.Gather()
	if err != nil {
		fmt.Fprintf(w, "gather metrics: %v\n", err)
		return
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName() + "{" + strings.Join(labels, ",") + "}"
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.3fs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
