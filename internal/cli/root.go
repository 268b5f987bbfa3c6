// Package cli provides the movierec command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"movierec/internal/config"
	"movierec/internal/corpus"
	"movierec/internal/logger"
	"movierec/internal/modelcache"
	"movierec/internal/resolver"
	"movierec/internal/service"
	"movierec/internal/wiki"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dataPath   string
	logLevel   string
}

// app is the wired runtime built before a command runs.
type app struct {
	cfg    *config.AppConfig
	log    *slog.Logger
	medium modelcache.Medium
	rec    *service.Recommender
}

func (a *app) Close() error {
	if a.medium == nil {
		return nil
	}
	return a.medium.Close()
}

// Execute runs the root command until it finishes or the process is
// interrupted, printing any failure to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", describeError(err))
	}
	return err
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "movierec",
		Short: "Content-based movie recommendations",
		Long: `movierec recommends movies whose plot summaries read most like the one
you name, using TF-IDF vectors and cosine similarity over a movie dataset or,
in live mode, over encyclopedia summaries fetched on demand.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config YAML (default ./config.yaml or ~/.config/movierec/config.yaml)")
	root.PersistentFlags().StringVar(&opts.dataPath, "data", "", "Path to the movie dataset CSV")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newRecommendCmd(opts),
		newLiveCmd(opts),
		newBuildCmd(opts),
		newTUICmd(opts),
	)
	return root
}

// bootstrap loads .env and config, then wires the logger, cache and recommender.
func bootstrap(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	_ = godotenv.Load()

	var (
		cfg *config.AppConfig
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dataPath != "" {
		cfg.Corpus.Path = opts.dataPath
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	log := logger.New(cfg.Log, cmd.ErrOrStderr())
	medium, err := openMedium(cfg.Cache)
	if err != nil {
		return nil, err
	}
	cache := modelcache.NewManager(medium, cfg.Vectorizer, modelcache.WithLogger(log))

	live, err := newLive(cfg.Live, log)
	if err != nil {
		if medium != nil {
			medium.Close()
		}
		return nil, err
	}
	return &app{
		cfg:    cfg,
		log:    log,
		medium: medium,
		rec:    service.NewRecommender(cache, live, cfg.Vectorizer, log),
	}, nil
}

// openMedium returns the configured cache medium, or nil when caching is off.
func openMedium(cfg config.CacheConfig) (modelcache.Medium, error) {
	switch cfg.Type {
	case config.CacheFile, "":
		return modelcache.NewFileMedium(cfg.Dir)
	case config.CacheSQLite:
		return modelcache.NewSQLiteMedium(cfg.Path)
	case config.CacheBadger:
		return modelcache.NewBadgerMedium(cfg.Dir)
	case config.CacheMemory:
		return modelcache.NewMemoryMedium(), nil
	case config.CacheNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}

func newLive(cfg config.LiveConfig, log *slog.Logger) (*resolver.Live, error) {
	client, err := wiki.NewClient(wiki.Config{
		Endpoint:          cfg.Endpoint,
		UserAgent:         cfg.UserAgent,
		Timeout:           time.Duration(cfg.TimeoutSecs) * time.Second,
		RequestsPerSecond: cfg.RequestsPerSecond,
		MemoSize:          cfg.MemoSize,
	})
	if err != nil {
		return nil, err
	}
	return resolver.NewLive(client, cfg.MaxCandidates, cfg.SummarySentences, log), nil
}

// loadCorpus resolves the dataset path and normalises the table. A path given
// by --data or config must exist; the fallback paths are searched only when
// none is given.
func (a *app) loadCorpus() (*corpus.Corpus, string, error) {
	path := corpus.ResolvePath(a.cfg.Corpus.Candidates()...)
	if path == "" {
		return nil, "", errors.New("no dataset path configured")
	}
	table, err := corpus.LoadCSV(path)
	if err != nil {
		return nil, path, fmt.Errorf("could not load dataset from %s: %w", path, err)
	}
	c, err := corpus.Normalize(table, corpus.Columns{
		Title:       a.cfg.Corpus.TitleColumn,
		Description: a.cfg.Corpus.DescriptionColumn,
	})
	if err != nil {
		return nil, path, fmt.Errorf("could not load dataset from %s: %w", path, err)
	}
	a.log.Debug("dataset loaded", "path", path, "rows", c.Len())
	return c, path, nil
}

// session loads the corpus and prepares its model.
func (a *app) session(ctx context.Context) (*service.Session, error) {
	c, _, err := a.loadCorpus()
	if err != nil {
		return nil, err
	}
	return service.NewSession(ctx, a.rec, c)
}

// topN resolves the -n flag text against the configured default.
func (a *app) topN(flag string) int {
	if flag == "" {
		return service.ClampTopN(a.cfg.Recommend.DefaultTopN)
	}
	return service.ParseTopN(flag)
}
