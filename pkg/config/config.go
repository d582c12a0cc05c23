// Package config loads the beerxml configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/beerxml/config.toml
// (~/.config/beerxml/config.toml when XDG_CONFIG_HOME is unset). Every
// section is optional; a missing file yields [Default]. Command-line flags
// override file values, and a few environment variables override both the
// file and the defaults (see [Config.ApplyEnv]).
//
// Example:
//
//	[defaults]
//	cache_ttl_seconds = 43200
//	units = "metric"
//	timeout = "10s"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	rate_limit = 10
//	rate_burst = 20
//
//	[s3]
//	region = "eu-west-1"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/beerxml/pkg/cache"
	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/pipeline"
	"github.com/matzehuels/beerxml/pkg/source"
	"github.com/matzehuels/beerxml/pkg/units"
)

const appName = "beerxml"

// Environment variables read by ApplyEnv.
const (
	EnvBackend   = "BEERXML_BACKEND"
	EnvRedisAddr = "BEERXML_REDIS_ADDR"
	EnvMongoURI  = "BEERXML_MONGO_URI"
	EnvAddr      = "BEERXML_ADDR"
)

// Config is the parsed configuration file.
type Config struct {
	Defaults Defaults `toml:"defaults"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
	S3       S3       `toml:"s3"`

	// Path is the file the configuration was read from, or empty when
	// defaults are in use.
	Path string `toml:"-"`
}

// Defaults are the pipeline options used when a flag or query parameter
// does not set them.
type Defaults struct {
	CacheTTLSeconds *int          `toml:"cache_ttl_seconds"`
	Units           string        `toml:"units"`
	Timeout         time.Duration `toml:"timeout"`
	MaxBytes        int64         `toml:"max_bytes"`
	Scope           string        `toml:"scope"`
	Format          string        `toml:"format"`
}

// Cache selects and configures the store backend.
type Cache struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	// KeyPrefix namespaces every key, for deployments sharing one backend.
	KeyPrefix string `toml:"key_prefix"`
}

// Server configures `beerxml serve`.
type Server struct {
	Addr            string        `toml:"addr"`
	RateLimit       float64       `toml:"rate_limit"` // requests per second
	RateBurst       int           `toml:"rate_burst"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// S3 configures access to s3:// sources.
type S3 struct {
	Region   string `toml:"region"`
	Profile  string `toml:"profile"`
	Endpoint string `toml:"endpoint"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			CacheTTLSeconds: pipeline.Seconds(pipeline.DefaultCacheTTLSeconds),
			Units:           string(units.DefaultSystem),
			Timeout:         pipeline.DefaultTimeout,
			MaxBytes:        source.DefaultMaxBytes,
			Format:          pipeline.DefaultFormat,
		},
		Cache: Cache{
			Backend: cache.BackendFile,
		},
		Server: Server{
			Addr:            ":8080",
			RateLimit:       10,
			RateBurst:       20,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
	}
}

// Load reads the configuration at path. An empty path means [DefaultPath];
// a missing file at the default location is not an error. An explicit path
// must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late, at first use.
func (c *Config) Validate() error {
	if _, err := units.ParseSystem(c.Defaults.Units); err != nil {
		return err
	}
	if c.Defaults.Format != "" {
		if err := pipeline.ValidateFormat(c.Defaults.Format); err != nil {
			return err
		}
	}
	if err := errors.ValidateScope(c.Defaults.Scope); err != nil {
		return err
	}
	if c.Defaults.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "defaults.timeout must not be negative")
	}
	switch c.Cache.Backend {
	case "", cache.BackendMemory, cache.BackendFile, cache.BackendSQLite,
		cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server rate limits must not be negative")
	}
	return nil
}

// ApplyEnv overrides settings from the BEERXML_* environment variables.
// Deployments use these to point a shared config file at their own
// backing services.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Cache.MongoURI = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// CacheOptions converts the [cache] section for cache.Open. An empty dir
// falls back to [CacheDir].
func (c *Config) CacheOptions() (cache.Options, error) {
	dir := c.Cache.Dir
	if dir == "" {
		d, err := CacheDir()
		if err != nil {
			return cache.Options{}, err
		}
		dir = d
	}
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           dir,
		SQLitePath:    c.Cache.SQLitePath,
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
	}, nil
}

// Keyer returns the cache keyer for the [cache] section: the default keyer,
// wrapped in a prefix when key_prefix is set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.KeyPrefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.KeyPrefix)
}

// S3Options converts the [s3] section for source.NewFetcher.
func (c *Config) S3Options() []source.S3Option {
	var opts []source.S3Option
	if c.S3.Profile != "" {
		opts = append(opts, source.WithS3Profile(c.S3.Profile))
	}
	if c.S3.Region != "" {
		opts = append(opts, source.WithS3Region(c.S3.Region))
	}
	if c.S3.Endpoint != "" {
		opts = append(opts, source.WithS3Endpoint(c.S3.Endpoint))
	}
	return opts
}

// PipelineOptions returns pipeline options seeded from [defaults].
// Callers set Source and override fields from their own inputs.
func (c *Config) PipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		Scope:    c.Defaults.Scope,
		Timeout:  c.Defaults.Timeout,
		MaxBytes: c.Defaults.MaxBytes,
		Units:    units.System(c.Defaults.Units),
		Format:   c.Defaults.Format,
	}
	if c.Defaults.CacheTTLSeconds != nil {
		opts.CacheTTLSeconds = pipeline.Seconds(*c.Defaults.CacheTTLSeconds)
	}
	return opts
}

// DefaultPath returns the XDG config file location.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/beerxml/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
