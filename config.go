package scache

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"SCache/registry"
	"SCache/store"
)

// Config describes a cache server: where it listens, how its caches are
// stored and where it registers itself.
type Config struct {
	Addr        string          `yaml:"addr"`
	ServiceName string          `yaml:"service_name"`
	LogLevel    string          `yaml:"log_level"`
	Store       StoreConfig     `yaml:"store"`
	Caches      []string        `yaml:"caches"`
	Registry    registry.Config `yaml:"registry"`
}

type StoreConfig struct {
	Type     string `yaml:"type"`
	Capacity int    `yaml:"capacity"`
}

var DefaultConfig = Config{
	Addr:        "127.0.0.1:8000",
	ServiceName: "SCache",
	LogLevel:    "info",
	Store: StoreConfig{
		Type:     string(store.TypeLRU),
		Capacity: store.DefaultCapacity,
	},
	Registry: registry.Config{
		DialTimeout: 5 * time.Second,
		LeaseTTL:    10,
	},
}

// LoadConfig reads a YAML config file. Fields missing from the file keep the
// values of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.ServiceName == "" {
		return errors.New("config: service_name is required")
	}
	if _, err := c.StoreOptions(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	seen := make(map[string]bool, len(c.Caches))
	for _, name := range c.Caches {
		if name == "" {
			return fmt.Errorf("config: %w", ErrNameRequired)
		}
		if seen[name] {
			return fmt.Errorf("config: duplicate cache %s", name)
		}
		seen[name] = true
	}
	return nil
}

// StoreOptions converts the store section into store.Options.
func (c Config) StoreOptions() (store.Options, error) {
	typ, err := store.ParseType(c.Store.Type)
	if err != nil {
		return store.Options{}, err
	}
	opts := store.Options{Type: typ, Capacity: c.Store.Capacity}
	if err := opts.Validate(); err != nil {
		return store.Options{}, err
	}
	return opts, nil
}
