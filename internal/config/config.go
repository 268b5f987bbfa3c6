package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"movierec/internal/embedding/tfidf"
	"movierec/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. MOVIEREC_CACHE_TYPE.
const EnvPrefix = "MOVIEREC"

// Cache medium types.
const (
	CacheFile   = "file"
	CacheSQLite = "sqlite"
	CacheBadger = "badger"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// CorpusConfig locates the dataset and names its columns.
type CorpusConfig struct {
	// Path, when set, is the only dataset tried. FallbackPaths are tried in
	// order only when Path is empty.
	Path              string   `yaml:"path" split_words:"true"`
	FallbackPaths     []string `yaml:"fallback_paths" split_words:"true"`
	TitleColumn       string   `yaml:"title_column" split_words:"true" validate:"required"`
	DescriptionColumn string   `yaml:"description_column" split_words:"true" validate:"required"`
}

// Candidates returns the dataset paths in lookup order.
func (c CorpusConfig) Candidates() []string {
	if c.Path != "" {
		return []string{c.Path}
	}
	return c.FallbackPaths
}

// CacheConfig selects where fitted models are persisted.
type CacheConfig struct {
	Type string `yaml:"type" split_words:"true" validate:"oneof=file sqlite badger memory none"`
	// Dir is used by the file and badger media. An empty badger dir runs in memory.
	Dir string `yaml:"dir" split_words:"true"`
	// Path is the sqlite database file.
	Path string `yaml:"path" split_words:"true" validate:"required_if=Type sqlite"`
}

// LiveConfig configures live mode and its MediaWiki provider.
type LiveConfig struct {
	Endpoint          string  `yaml:"endpoint" split_words:"true" validate:"omitempty,url"`
	UserAgent         string  `yaml:"user_agent" split_words:"true"`
	MaxCandidates     int     `yaml:"max_candidates" split_words:"true" validate:"gte=1,lte=50"`
	SummarySentences  int     `yaml:"summary_sentences" split_words:"true" validate:"gte=1"`
	TimeoutSecs       int     `yaml:"timeout_secs" split_words:"true" validate:"gte=1"`
	RequestsPerSecond float64 `yaml:"requests_per_second" split_words:"true" validate:"gte=0"`
	MemoSize          int     `yaml:"memo_size" split_words:"true" validate:"gte=1"`
}

// NoTruncation disables overview truncation in MaxDescriptionChars.
const NoTruncation = -1

// RecommendConfig holds presentation defaults.
type RecommendConfig struct {
	DefaultTopN int `yaml:"default_top_n" split_words:"true" validate:"gte=1,lte=10"`
	// MaxDescriptionChars cuts overviews in table and TUI output. 0 selects
	// the default of 500 and NoTruncation (-1) prints them whole.
	MaxDescriptionChars int `yaml:"max_description_chars" split_words:"true" validate:"gte=-1"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus     CorpusConfig    `yaml:"corpus" split_words:"true"`
	Vectorizer tfidf.Config    `yaml:"vectorizer" split_words:"true"`
	Cache      CacheConfig     `yaml:"cache" split_words:"true"`
	Live       LiveConfig      `yaml:"live" split_words:"true"`
	Recommend  RecommendConfig `yaml:"recommend" split_words:"true"`
	Log        logger.Config   `yaml:"log" split_words:"true"`
}

var validate = validator.New()

// Load reads a config from a specified path, applies environment overrides and
// validates the result. If the file does not exist, defaults are used.
func Load(path string) (*AppConfig, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/movierec/config.yaml.
// If neither exists, it writes defaults to ~/.config/movierec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	if err := finish(cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func readFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

func finish(cfg *AppConfig) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	applyConfigDefaults(cfg)
	return cfg.Validate()
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "movierec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if len(cfg.Corpus.FallbackPaths) == 0 {
		cfg.Corpus.FallbackPaths = []string{
			"/mnt/data/tmdb_5000_movies.csv",
			filepath.Join("data", "tmdb_5000_movies.csv"),
		}
	}
	if cfg.Corpus.TitleColumn == "" {
		cfg.Corpus.TitleColumn = "title"
	}
	if cfg.Corpus.DescriptionColumn == "" {
		cfg.Corpus.DescriptionColumn = "overview"
	}
	cfg.Vectorizer = cfg.Vectorizer.WithDefaults()

	cfg.Cache.Type = strings.ToLower(cfg.Cache.Type)
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = CacheFile
	}
	if cfg.Cache.Dir == "" && cfg.Cache.Type == CacheFile {
		cfg.Cache.Dir = "models"
	}
	if cfg.Cache.Path == "" && cfg.Cache.Type == CacheSQLite {
		cfg.Cache.Path = filepath.Join("models", "cache.db")
	}

	if cfg.Live.Endpoint == "" {
		cfg.Live.Endpoint = "https://en.wikipedia.org/w/api.php"
	}
	if cfg.Live.UserAgent == "" {
		cfg.Live.UserAgent = "movierec/1.0"
	}
	if cfg.Live.MaxCandidates == 0 {
		cfg.Live.MaxCandidates = 20
	}
	if cfg.Live.SummarySentences == 0 {
		cfg.Live.SummarySentences = 3
	}
	if cfg.Live.TimeoutSecs == 0 {
		cfg.Live.TimeoutSecs = 10
	}
	if cfg.Live.MemoSize == 0 {
		cfg.Live.MemoSize = 256
	}

	if cfg.Recommend.DefaultTopN == 0 {
		cfg.Recommend.DefaultTopN = 5
	}
	if cfg.Recommend.MaxDescriptionChars == 0 {
		cfg.Recommend.MaxDescriptionChars = 500
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
