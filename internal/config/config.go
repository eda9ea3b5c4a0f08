// Package config reads and writes bukutani.yaml and applies environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bukutani/bukutani/internal/accounts"
	"github.com/bukutani/bukutani/internal/ledger"
	"github.com/bukutani/bukutani/internal/logger"
)

// FileName is the config file looked for in the data directory.
const FileName = "bukutani.yaml"

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Environment variables that override the file.
const (
	EnvOwner    = "BUKUTANI_OWNER"
	EnvData     = "BUKUTANI_DATA"
	EnvLogLevel = "BUKUTANI_LOG_LEVEL"
	EnvBackend  = "BUKUTANI_BACKEND"
)

// Config represents the top-level bukutani.yaml configuration.
type Config struct {
	Owner      string           `yaml:"owner"`
	Storage    StorageConfig    `yaml:"storage"`
	Reversal   ReversalConfig   `yaml:"reversal"`
	Categories CategoriesConfig `yaml:"categories"`
	Log        LogConfig        `yaml:"log"`
}

// StorageConfig selects where records are kept.
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"oneof=csv sqlite"`
	// Path is the CSV root directory or the SQLite database file. Relative
	// paths are resolved against the data directory.
	Path string `yaml:"path"`
}

// ReversalConfig controls how reversing entries are dated.
type ReversalConfig struct {
	Date string `yaml:"date" validate:"omitempty,oneof=now original"`
}

// CategoriesConfig is the income source and expense category taxonomy.
type CategoriesConfig struct {
	Income  []string            `yaml:"income"`
	Expense []accounts.Category `yaml:"expense"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
}

// Load reads a bukutani.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default(owner string) *Config {
	return &Config{
		Owner: owner,
		Storage: StorageConfig{
			Backend: BackendCSV,
			Path:    "data",
		},
		Reversal: ReversalConfig{
			Date: string(ledger.ReversalDateNow),
		},
		Categories: CategoriesConfig{
			Income:  accounts.DefaultIncomeSources(),
			Expense: accounts.DefaultExpenseCategories(),
		},
		Log: LogConfig{
			Level: logger.DefaultLevel,
		},
	}
}

// Resolve loads <dataDir>/bukutani.yaml when it exists, fills unset
// fields with defaults and applies environment overrides.
func Resolve(dataDir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dataDir, FileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = Default("")
	case err != nil:
		return nil, err
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendCSV
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadEnv loads a .env file into the process environment. An empty path
// means ".env" in the working directory, which may be absent.
func LoadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

// ApplyEnv overrides fields from BUKUTANI_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvOwner); v != "" {
		c.Owner = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// DataDir returns the data directory named by BUKUTANI_DATA, or fallback.
func DataDir(fallback string) string {
	if v := os.Getenv(EnvData); v != "" {
		return v
	}
	return fallback
}

// StoragePath resolves Storage.Path against dataDir. SQLite paths
// without an extension get ".db".
func (c *Config) StoragePath(dataDir string) string {
	p := c.Storage.Path
	if p == "" {
		p = "data"
	}
	if c.Storage.Backend == BackendSQLite && filepath.Ext(p) == "" {
		p += ".db"
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML keys.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []string
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating config: %w", err)
		}
		for _, fe := range verrs {
			field := strings.TrimPrefix(fe.Namespace(), "Config.")
			problems = append(problems, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		}
	}
	if _, err := c.Taxonomy(); err != nil {
		problems = append(problems, "categories: "+err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Taxonomy builds the category taxonomy, falling back to the built-in
// lists for any part left empty.
func (c *Config) Taxonomy() (*accounts.Taxonomy, error) {
	income := c.Categories.Income
	if len(income) == 0 {
		income = accounts.DefaultIncomeSources()
	}
	expense := c.Categories.Expense
	if len(expense) == 0 {
		expense = accounts.DefaultExpenseCategories()
	}
	return accounts.NewTaxonomy(income, expense)
}
