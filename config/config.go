// Package config loads the configuration of the digraph command line tool.
//
// Values come from a YAML file, then from the process environment. A .env
// file next to the working directory is loaded into the environment first,
// without overriding variables that are already set.
//
//	database:
//	  dialect: sqlite
//	  dsn: file:digraph.db?_pragma=foreign_keys(1)
//	cache:
//	  size: 1024
//	  ttl: 5m
//	traversal:
//	  policy: all
//	  max_depth: 0
//	types:
//	  - source: Order
//	    attribute: Event
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/syssam/digraph"
	"github.com/syssam/digraph/dialect"
	"github.com/syssam/digraph/storage/memstore"
)

// EnvPrefix prefixes the environment variables that override file values.
const EnvPrefix = "DIGRAPH_"

// MaxFileSize is the maximum accepted size of a configuration file.
const MaxFileSize = 1 << 20

// Config is the root configuration.
type Config struct {
	Database  Database   `yaml:"database"`
	Cache     Cache      `yaml:"cache"`
	Traversal Traversal  `yaml:"traversal"`
	Log       Log        `yaml:"log"`
	Types     []TypeSpec `yaml:"types"`
}

// Database selects the storage backend.
type Database struct {
	// Dialect is one of sqlite, postgres, pgx, mysql or memory.
	Dialect            string        `yaml:"dialect"`
	DSN                string        `yaml:"dsn"`
	ForeignKeys        bool          `yaml:"foreign_keys"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
	Debug              bool          `yaml:"debug"`
}

// Cache configures the edge list cache. A zero size disables it.
type Cache struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// Traversal configures graph building.
type Traversal struct {
	Policy   string `yaml:"policy"`
	MaxDepth int    `yaml:"max_depth"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TypeSpec registers one source type by name. Source rows are referenced by
// id only, the tables are owned by the application.
type TypeSpec struct {
	Source         string `yaml:"source"`
	SourceTable    string `yaml:"source_table"`
	Attribute      string `yaml:"attribute"`
	AttributeTable string `yaml:"attribute_table"`
	Accessor       string `yaml:"accessor"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: Database{
			Dialect:            dialect.SQLite,
			DSN:                "file:digraph.db?_pragma=foreign_keys(1)",
			ForeignKeys:        true,
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		Cache:     Cache{Size: 1024, TTL: 5 * time.Minute},
		Traversal: Traversal{Policy: digraph.TraverseAll.String()},
		Log:       Log{Level: "info", Format: "text"},
	}
}

// Load reads the file at path on top of the defaults and applies the
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	if len(data) > MaxFileSize {
		return fmt.Errorf("file exceeds %d bytes", MaxFileSize)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	parse := func(key string, fn func(string) error) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		if err := fn(strings.TrimSpace(v)); err != nil {
			errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
		}
	}
	str("DIALECT", &c.Database.Dialect)
	str("DSN", &c.Database.DSN)
	parse("FOREIGN_KEYS", func(v string) (err error) {
		c.Database.ForeignKeys, err = strconv.ParseBool(v)
		return err
	})
	parse("SLOW_QUERY_THRESHOLD", func(v string) (err error) {
		c.Database.SlowQueryThreshold, err = time.ParseDuration(v)
		return err
	})
	parse("DEBUG", func(v string) (err error) {
		c.Database.Debug, err = strconv.ParseBool(v)
		return err
	})
	parse("CACHE_SIZE", func(v string) (err error) {
		c.Cache.Size, err = strconv.Atoi(v)
		return err
	})
	parse("CACHE_TTL", func(v string) (err error) {
		c.Cache.TTL, err = time.ParseDuration(v)
		return err
	})
	str("TRAVERSAL", &c.Traversal.Policy)
	parse("MAX_DEPTH", func(v string) (err error) {
		c.Traversal.MaxDepth, err = strconv.Atoi(v)
		return err
	})
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	return errors.Join(errs...)
}

// Validate reports every invalid value of the configuration.
func (c *Config) Validate() error {
	var errs []error
	switch dialect.Normalize(c.Database.Dialect) {
	case dialect.SQLite, dialect.Postgres, dialect.MySQL:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("config: database.dsn is required"))
		}
	case memstore.Dialect:
	default:
		errs = append(errs, fmt.Errorf("config: unsupported database.dialect %q", c.Database.Dialect))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, errors.New("config: cache.size must not be negative"))
	}
	if _, err := digraph.ParseTraversal(c.Traversal.Policy); err != nil {
		errs = append(errs, fmt.Errorf("config: traversal.policy: %w", err))
	}
	if c.Traversal.MaxDepth < 0 {
		errs = append(errs, errors.New("config: traversal.max_depth must not be negative"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unsupported log.format %q", c.Log.Format))
	}
	seen := make(map[string]bool, len(c.Types))
	for i, t := range c.Types {
		switch {
		case t.Source == "" || t.Attribute == "":
			errs = append(errs, fmt.Errorf("config: types[%d]: source and attribute are required", i))
		case seen[t.Source]:
			errs = append(errs, fmt.Errorf("config: types[%d]: source %s listed twice", i, t.Source))
		}
		seen[t.Source] = true
	}
	return errors.Join(errs...)
}
