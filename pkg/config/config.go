// Package config provides configuration loading and validation for artifactminer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/units"
)

// EnvPrefix is the prefix for environment overrides (ARTIFACTMINER_CACHE_DIRECTORY, ...).
const EnvPrefix = "ARTIFACTMINER"

// LegacyCacheDirEnv is still honoured as an override of cache.directory.
const LegacyCacheDirEnv = "BOW_CACHE_DIR"

// Sentinel validation errors.
var (
	ErrInvalidLimit       = errors.New("invalid size limit")
	ErrInvalidTokenLength = errors.New("min token length must be positive")
	ErrInvalidChunkSize   = errors.New("redaction chunk size must be positive")
	ErrInvalidTopics      = errors.New("topic count and iterations must be positive")
	ErrInvalidTimeout     = errors.New("summarizer timeouts must be positive")
	ErrInvalidRetries     = errors.New("summarizer retries must not be negative")
	ErrMissingDSN         = errors.New("store dsn is required when the store is enabled")
)

// Config holds all configuration for an analysis run.
type Config struct {
	Limits     LimitsConfig     `mapstructure:"limits" yaml:"limits"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess"`
	Identity   IdentityConfig   `mapstructure:"identity" yaml:"identity"`
	Topics     TopicsConfig     `mapstructure:"topics" yaml:"topics"`
	Summarizer SummarizerConfig `mapstructure:"summarizer" yaml:"summarizer"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry" yaml:"telemetry"`
}

// LimitsConfig bounds ingestion. Values are human sizes ("4GiB").
type LimitsConfig struct {
	MaxFileSize  string `mapstructure:"max_file_size" yaml:"max_file_size"`
	MaxTotalSize string `mapstructure:"max_total_size" yaml:"max_total_size"`
}

// FileBytes returns the per-file bound in bytes.
func (l LimitsConfig) FileBytes() (int64, error) {
	return units.ParseSize(l.MaxFileSize)
}

// TotalBytes returns the aggregate bound in bytes.
func (l LimitsConfig) TotalBytes() (int64, error) {
	return units.ParseSize(l.MaxTotalSize)
}

// CacheConfig locates the bag-of-words cache.
type CacheConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
}

// PreprocessConfig enumerates every option that changes preprocessing output.
type PreprocessConfig struct {
	Stopwords          string   `mapstructure:"stopwords" yaml:"stopwords"`
	Filters            []string `mapstructure:"filters" yaml:"filters"`
	IncludeCategories  []string `mapstructure:"include_categories" yaml:"include_categories"`
	ExcludeCategories  []string `mapstructure:"exclude_categories" yaml:"exclude_categories"`
	MinTokenLength     int      `mapstructure:"min_token_length" yaml:"min_token_length"`
	RedactionChunkSize int      `mapstructure:"redaction_chunk_size" yaml:"redaction_chunk_size"`
	Lemmatize          bool     `mapstructure:"lemmatize" yaml:"lemmatize"`
	PIIRemoval         bool     `mapstructure:"pii_removal" yaml:"pii_removal"`
	NormalizeCode      bool     `mapstructure:"normalize_code" yaml:"normalize_code"`
}

// IdentityConfig names the user whose activity is mined.
type IdentityConfig struct {
	UserEmail    string `mapstructure:"user_email" yaml:"user_email"`
	MatchNoreply bool   `mapstructure:"match_noreply" yaml:"match_noreply"`
}

// TopicsConfig tunes the topic model.
type TopicsConfig struct {
	NumTopics  int `mapstructure:"num_topics" yaml:"num_topics"`
	Iterations int `mapstructure:"iterations" yaml:"iterations"`
	TopTerms   int `mapstructure:"top_terms" yaml:"top_terms"`
}

// SummarizerConfig configures the external summary client.
type SummarizerConfig struct {
	OnlineEndpoint string        `mapstructure:"online_endpoint" yaml:"online_endpoint"`
	LocalEndpoint  string        `mapstructure:"local_endpoint" yaml:"local_endpoint"`
	Model          string        `mapstructure:"model" yaml:"model"`
	APIKey         string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	OnlineTimeout  time.Duration `mapstructure:"online_timeout" yaml:"online_timeout"`
	LocalTimeout   time.Duration `mapstructure:"local_timeout" yaml:"local_timeout"`
	MaxRetries     int           `mapstructure:"max_retries" yaml:"max_retries"`
	Enabled        bool          `mapstructure:"enabled" yaml:"enabled"`
}

// StoreConfig configures the relational result store.
type StoreConfig struct {
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	MetricsFile  string `mapstructure:"metrics_file" yaml:"metrics_file"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure" yaml:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches the default locations; a missing file there is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("artifactminer")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")

		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(filepath.Join(home, ".config", "artifactminer"))
		}
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindErr := viperCfg.BindEnv("cache.directory", EnvPrefix+"_CACHE_DIRECTORY", LegacyCacheDirEnv)
	if bindErr != nil {
		return nil, fmt.Errorf("bind cache env: %w", bindErr)
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// DefaultCacheDir returns <workdir>/cache/bow.
func DefaultCacheDir() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return filepath.Join(wd, DefaultCacheSubdir)
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("limits.max_file_size", DefaultMaxFileSize)
	viperCfg.SetDefault("limits.max_total_size", DefaultMaxTotalSize)

	viperCfg.SetDefault("cache.enabled", DefaultCacheEnabled)
	viperCfg.SetDefault("cache.directory", DefaultCacheDir())

	viperCfg.SetDefault("preprocess.lemmatize", DefaultLemmatize)
	viperCfg.SetDefault("preprocess.stopwords", DefaultStopwords)
	viperCfg.SetDefault("preprocess.pii_removal", DefaultPIIRemoval)
	viperCfg.SetDefault("preprocess.filters", DefaultFilters)
	viperCfg.SetDefault("preprocess.normalize_code", DefaultNormalizeCode)
	viperCfg.SetDefault("preprocess.min_token_length", DefaultMinTokenLength)
	viperCfg.SetDefault("preprocess.redaction_chunk_size", DefaultRedactionChunkSize)
	viperCfg.SetDefault("preprocess.include_categories", []string{"identifier"})
	viperCfg.SetDefault("preprocess.exclude_categories", []string{"comment", "string"})

	viperCfg.SetDefault("identity.match_noreply", DefaultMatchNoreply)

	viperCfg.SetDefault("topics.num_topics", DefaultNumTopics)
	viperCfg.SetDefault("topics.iterations", DefaultIterations)
	viperCfg.SetDefault("topics.top_terms", DefaultTopTerms)

	viperCfg.SetDefault("summarizer.enabled", DefaultSummarizerEnabled)
	viperCfg.SetDefault("summarizer.local_endpoint", DefaultLocalEndpoint)
	viperCfg.SetDefault("summarizer.model", DefaultSummarizerModel)
	viperCfg.SetDefault("summarizer.online_timeout", DefaultOnlineTimeout)
	viperCfg.SetDefault("summarizer.local_timeout", DefaultLocalTimeout)
	viperCfg.SetDefault("summarizer.max_retries", DefaultMaxRetries)

	viperCfg.SetDefault("store.enabled", DefaultStoreEnabled)
	viperCfg.SetDefault("store.dsn", DefaultStoreDSN)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	fileBytes, err := config.Limits.FileBytes()
	if err != nil || fileBytes <= 0 {
		return fmt.Errorf("%w: max_file_size=%q", ErrInvalidLimit, config.Limits.MaxFileSize)
	}

	totalBytes, err := config.Limits.TotalBytes()
	if err != nil || totalBytes <= 0 {
		return fmt.Errorf("%w: max_total_size=%q", ErrInvalidLimit, config.Limits.MaxTotalSize)
	}

	if config.Preprocess.MinTokenLength <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTokenLength, config.Preprocess.MinTokenLength)
	}

	if config.Preprocess.RedactionChunkSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChunkSize, config.Preprocess.RedactionChunkSize)
	}

	if config.Topics.NumTopics <= 0 || config.Topics.Iterations <= 0 {
		return fmt.Errorf("%w: topics=%d iterations=%d", ErrInvalidTopics, config.Topics.NumTopics, config.Topics.Iterations)
	}

	if config.Summarizer.OnlineTimeout <= 0 || config.Summarizer.LocalTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if config.Summarizer.MaxRetries < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRetries, config.Summarizer.MaxRetries)
	}

	if config.Store.Enabled && config.Store.DSN == "" {
		return ErrMissingDSN
	}

	return nil
}
