package config

import (
	stderrors "errors"
	"os"
	"runtime"
	"strconv"

	"ssea/domain/core"
	"ssea/domain/enrichment"
	"ssea/domain/significance"
	"ssea/internal/errors"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults for the analysis and application settings
const (
	DefaultName       = "myssea"
	DefaultWeightHit  = "weighted"
	DefaultWeightMiss = "weighted"
	DefaultPerms      = 1000
	DefaultConfInt    = significance.DefaultLevel
	DefaultCIMethod   = string(significance.CIPercentile)
	DefaultResamples  = significance.DefaultResamples
	DefaultZeroPolicy = string(enrichment.ZeroToPositive)
	DefaultEnvelope   = true
	DefaultServeAddr  = ":8080"
	DefaultGinMode    = "release"
	DefaultLogLevel   = "INFO"
	EnvConfigFile     = "SSEA_CONFIG"
)

// Config represents the complete application configuration
type Config struct {
	Name      string       `yaml:"name"`
	OutputDir string       `yaml:"output_dir"`
	LogLevel  string       `yaml:"log_level"`
	Server    ServerConfig `yaml:"server"`
	Analysis  Analysis     `yaml:"analysis"`
}

// ServerConfig holds report server settings
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	GinMode string `yaml:"gin_mode"`
}

// Analysis holds the knobs that determine a run's numbers
type Analysis struct {
	WeightMethodHit    string  `yaml:"weight_method_hit"`
	WeightMethodMiss   string  `yaml:"weight_method_miss"`
	Perms              int     `yaml:"perms"`
	ConfInt            float64 `yaml:"conf_int"`
	CIMethod           string  `yaml:"ci_method"`
	BootstrapResamples int     `yaml:"bootstrap_resamples"`
	ZeroPolicy         string  `yaml:"zero_policy"`
	Seed               *int64  `yaml:"seed"`
	Workers            int     `yaml:"workers"`
	Envelope           bool    `yaml:"envelope"`
}

// Settings is a validated Analysis with every name resolved
type Settings struct {
	Hit                enrichment.WeightMethod
	Miss               enrichment.WeightMethod
	Perms              int
	PermsCoerced       bool
	ConfInt            float64
	CIMethod           significance.CIMethod
	BootstrapResamples int
	ZeroPolicy         enrichment.ZeroPolicy
	Workers            int
	Envelope           bool
	Seed               int64
	SeedSet            bool
}

// Default returns a Config with every default populated
func Default() *Config {
	return &Config{
		Name:     DefaultName,
		LogLevel: DefaultLogLevel,
		Server: ServerConfig{
			Addr:    DefaultServeAddr,
			GinMode: DefaultGinMode,
		},
		Analysis: DefaultAnalysis(),
	}
}

// DefaultAnalysis returns the default analysis settings
func DefaultAnalysis() Analysis {
	return Analysis{
		WeightMethodHit:    DefaultWeightHit,
		WeightMethodMiss:   DefaultWeightMiss,
		Perms:              DefaultPerms,
		ConfInt:            DefaultConfInt,
		CIMethod:           DefaultCIMethod,
		BootstrapResamples: DefaultResamples,
		ZeroPolicy:         DefaultZeroPolicy,
		Workers:            runtime.NumCPU(),
		Envelope:           DefaultEnvelope,
	}
}

// Validate checks every analysis field, reporting the first bad one as an
// InvalidConfigError
func (a Analysis) Validate() error {
	_, err := a.Settings()
	return err
}

// Settings validates a and resolves names into typed values. Perms below 1
// are coerced to 1; Workers of 0 means one per CPU.
func (a Analysis) Settings() (Settings, error) {
	var s Settings
	var err error

	if s.Hit, err = enrichment.ParseWeightMethod("weight_method_hit", a.WeightMethodHit); err != nil {
		return Settings{}, err
	}
	if s.Miss, err = enrichment.ParseWeightMethod("weight_method_miss", a.WeightMethodMiss); err != nil {
		return Settings{}, err
	}
	if err = significance.CheckLevel(a.ConfInt); err != nil {
		return Settings{}, err
	}
	s.ConfInt = a.ConfInt
	if s.CIMethod, err = significance.ParseCIMethod(a.CIMethod); err != nil {
		return Settings{}, err
	}
	if s.ZeroPolicy, err = enrichment.ParseZeroPolicy(a.ZeroPolicy); err != nil {
		return Settings{}, err
	}

	s.BootstrapResamples = a.BootstrapResamples
	if s.CIMethod == significance.CIBootstrap && s.BootstrapResamples < 1 {
		return Settings{}, core.NewInvalidConfigError("bootstrap_resamples", a.BootstrapResamples, "must be at least 1")
	}

	switch {
	case a.Workers < 0:
		return Settings{}, core.NewInvalidConfigError("workers", a.Workers, "must not be negative")
	case a.Workers == 0:
		s.Workers = runtime.NumCPU()
	default:
		s.Workers = a.Workers
	}

	s.Perms = a.Perms
	if s.Perms < 1 {
		s.Perms = 1
		s.PermsCoerced = true
	}

	s.Envelope = a.Envelope
	if a.Seed != nil {
		s.Seed = *a.Seed
		s.SeedSet = true
	}
	return s, nil
}

// Load builds the configuration from defaults, then the YAML file at path
// (or $SSEA_CONFIG), then SSEA_* environment variables. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to load .env")
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read environment")
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IOError(path, err)
	}
	// fields absent from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(errors.ConfigInvalid(err.Error()), "parsing %s", path)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Name = getEnvOrDefault("SSEA_NAME", cfg.Name)
	cfg.OutputDir = getEnvOrDefault("SSEA_OUTPUT_DIR", cfg.OutputDir)
	cfg.LogLevel = getEnvOrDefault("SSEA_LOG_LEVEL", cfg.LogLevel)
	cfg.Server.Addr = getEnvOrDefault("SSEA_SERVE_ADDR", cfg.Server.Addr)
	cfg.Server.GinMode = getEnvOrDefault("GIN_MODE", cfg.Server.GinMode)

	a := &cfg.Analysis
	a.WeightMethodHit = getEnvOrDefault("SSEA_WEIGHT_HIT", a.WeightMethodHit)
	a.WeightMethodMiss = getEnvOrDefault("SSEA_WEIGHT_MISS", a.WeightMethodMiss)
	a.CIMethod = getEnvOrDefault("SSEA_CI_METHOD", a.CIMethod)
	a.ZeroPolicy = getEnvOrDefault("SSEA_ZERO_POLICY", a.ZeroPolicy)

	var err error
	if a.Perms, err = getEnvInt("SSEA_PERMS", a.Perms); err != nil {
		return err
	}
	if a.Workers, err = getEnvInt("SSEA_WORKERS", a.Workers); err != nil {
		return err
	}
	if a.BootstrapResamples, err = getEnvInt("SSEA_BOOTSTRAP_RESAMPLES", a.BootstrapResamples); err != nil {
		return err
	}
	if a.ConfInt, err = getEnvFloat("SSEA_CONF_INT", a.ConfInt); err != nil {
		return err
	}
	if a.Envelope, err = getEnvBool("SSEA_ENVELOPE", a.Envelope); err != nil {
		return err
	}
	if value := os.Getenv("SSEA_SEED"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return core.NewInvalidConfigError("SSEA_SEED", value, "not an integer")
		}
		a.Seed = &seed
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, core.NewInvalidConfigError(key, value, "not an integer")
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, core.NewInvalidConfigError(key, value, "not a number")
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, core.NewInvalidConfigError(key, value, "not a boolean")
	}
	return v, nil
}
