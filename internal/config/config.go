// Package config loads application settings in three layers: built-in
// defaults, an optional YAML file, then CINEGENRE_ environment variables.
//
// Nested keys use a double underscore in the environment:
//
//	CINEGENRE_SERVER__PORT=9000        -> server.port
//	CINEGENRE_TRAINING__MODELS=svm,naive_bayes
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/cognicore/cinegenre/internal/logging"
	rescfg "github.com/cognicore/cinegenre/pkg/cinegenre/config"
	"github.com/cognicore/cinegenre/pkg/cinegenre/internalerr"
	"github.com/cognicore/cinegenre/pkg/cinegenre/model"
	"github.com/cognicore/cinegenre/pkg/cinegenre/train"
	"github.com/cognicore/cinegenre/pkg/cinegenre/vectorize"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CINEGENRE_"

	// PathEnvVar names the config file when no path is passed to Load.
	PathEnvVar = EnvPrefix + "CONFIG"
)

// DefaultPaths are tried in order when neither a path nor PathEnvVar is set.
var DefaultPaths = []string{"cinegenre.yaml", "cinegenre.yml"}

// Config is the complete application configuration
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Resources ResourceConfig  `koanf:"resources"`
	Training  TrainingConfig  `koanf:"training"`
	Models    ModelsConfig    `koanf:"models"`
	Server    ServerConfig    `koanf:"server"`
	Translate TranslateConfig `koanf:"translate"`
	Logging   logging.Config  `koanf:"logging"`
}

// DataConfig locates the raw sources and the corpus database
type DataConfig struct {
	Primary       string   `koanf:"primary" validate:"required"`
	Supplementary []string `koanf:"supplementary"`
	DBPath        string   `koanf:"db_path" validate:"required"`
}

// ResourceConfig points at optional resource files; empty paths use the
// built-in tables.
type ResourceConfig struct {
	Stoplist         string `koanf:"stoplist"`
	Taxonomy         string `koanf:"taxonomy"`
	Lexicon          string `koanf:"lexicon"`
	GenreInfo        string `koanf:"genre_info"`
	DictionaryLemmas bool   `koanf:"dictionary_lemmas"`
}

// TrainingConfig controls model evaluation
type TrainingConfig struct {
	TestSize   float64           `koanf:"test_size" validate:"gt=0,lt=1"`
	Seed       uint64            `koanf:"seed"`
	Folds      int               `koanf:"folds" validate:"gte=0"`
	MinSupport int               `koanf:"min_support" validate:"gte=0"`
	Models     []string          `koanf:"models" validate:"required,min=1,dive,oneof=naive_bayes svm random_forest linear_svm"`
	Vectorizer vectorize.Options `koanf:"vectorizer"`

	// PlotsDir receives confusion matrices, ROC curves and reports; empty
	// disables them.
	PlotsDir string `koanf:"plots_dir"`
}

// ModelsConfig locates the champion files
type ModelsConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimit is the number of requests per minute allowed per client IP;
	// 0 disables limiting.
	RateLimit    int   `koanf:"rate_limit" validate:"gte=0"`
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"gt=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TranslateConfig selects the pivot-language translator
type TranslateConfig struct {
	Provider string        `koanf:"provider" validate:"oneof=none google openai"`
	Source   string        `koanf:"source" validate:"required"`
	Target   string        `koanf:"target" validate:"required"`
	Endpoint string        `koanf:"endpoint" validate:"omitempty,url"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`

	OpenAIModel  string `koanf:"openai_model"`
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// BreakerFailures consecutive failures open the circuit.
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Primary:       "data/Top_10000_Movies_IMDb.csv",
			Supplementary: []string{"data/poe_verisi.csv"},
			DBPath:        "data/cinegenre.db",
		},
		Resources: ResourceConfig{
			DictionaryLemmas: true,
		},
		Training: TrainingConfig{
			TestSize:   0.2,
			Seed:       42,
			Folds:      5,
			MinSupport: 50,
			Models:     append([]string(nil), model.DefaultRoster...),
			Vectorizer: vectorize.DefaultOptions(),
			PlotsDir:   "plots",
		},
		Models: ModelsConfig{
			Dir: "models",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       120,
			MaxBodyBytes:    1 << 20,
		},
		Translate: TranslateConfig{
			Provider:        "google",
			Source:          "tr",
			Target:          "en",
			Endpoint:        "https://translate.google.com/m",
			Timeout:         10 * time.Second,
			OpenAIModel:     "gpt-4o-mini",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// the one PathEnvVar or DefaultPaths name) and the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = findFile()
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: config file: %v", internalerr.ErrInvalidConfig, err)
			}
		} else if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: load %s: %v", internalerr.ErrInvalidConfig, path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitLists(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps CINEGENRE_SERVER__PORT to server.port.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// listKeys hold slices that arrive from the environment as comma-separated
// strings.
var listKeys = []string{
	"data.supplementary",
	"training.models",
	"server.cors_origins",
}

func splitLists(k *koanf.Koanf) error {
	for _, key := range listKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if c.Translate.Provider == "openai" && c.Translate.OpenAIAPIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("%w: translate.openai_api_key required for the openai provider", internalerr.ErrInvalidConfig)
	}
	if c.Training.Vectorizer.NGramMax < 1 {
		return fmt.Errorf("%w: training.vectorizer.ngram_max must be at least 1", internalerr.ErrInvalidConfig)
	}
	return nil
}

// TrainOptions converts the training section into evaluation options.
func (c *Config) TrainOptions() train.Options {
	opts := train.DefaultOptions("")
	opts.TestSize = c.Training.TestSize
	opts.Seed = c.Training.Seed
	opts.Folds = c.Training.Folds
	opts.MinSupport = c.Training.MinSupport
	opts.Models = append([]string(nil), c.Training.Models...)
	opts.Vectorizer = c.Training.Vectorizer
	if c.Training.PlotsDir != "" {
		opts.Reporter = train.NewFileReporter(c.Training.PlotsDir)
	}
	return opts
}

// Loader returns the resource loader for the resources section.
func (c *Config) Loader() *rescfg.Loader {
	return &rescfg.Loader{
		StoplistPath:     c.Resources.Stoplist,
		TaxonomyPath:     c.Resources.Taxonomy,
		LexiconPath:      c.Resources.Lexicon,
		GenreInfoPath:    c.Resources.GenreInfo,
		DictionaryLemmas: c.Resources.DictionaryLemmas,
	}
}
