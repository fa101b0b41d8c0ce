// Package config loads hivedoc project configuration.
//
// Configuration lives in a TOML file, by default hivedoc.toml in the project
// directory:
//
//	source_dir   = "docs"
//	output_dir   = "site"
//	build_dir    = "_build"
//	image_format = "svg"
//	title        = "Pipeline documentation"
//
//	[cache]
//	backend = "file"   # none, file, redis or mongo
//	ttl     = "720h"
//
//	[publish]
//	bucket = "docs.example.org"
//	prefix = "pipelines/"
//
// Defaults are applied first, then the file, then command-line flags. The
// eHive installation is located through the EHIVE_ROOT_DIR environment
// variable rather than the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hivedoc/pkg/errors"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "hivedoc.toml"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full project configuration.
type Config struct {
	SourceDir     string   `toml:"source_dir"`
	OutputDir     string   `toml:"output_dir"`
	BuildDir      string   `toml:"build_dir"`
	ImageFormat   string   `toml:"image_format"`
	Title         string   `toml:"title"`
	RenderTimeout Duration `toml:"render_timeout"`

	Cache   CacheConfig   `toml:"cache"`
	Publish PublishConfig `toml:"publish"`
	Serve   ServeConfig   `toml:"serve"`
}

// CacheConfig selects and configures the image cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	Namespace string   `toml:"namespace"`

	RedisAddr string `toml:"redis_addr"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// PublishConfig describes the S3 bucket the site is uploaded to.
type PublishConfig struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	Prefix    string `toml:"prefix"`
	PathStyle bool   `toml:"path_style"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		SourceDir:   "docs",
		OutputDir:   "site",
		BuildDir:    "_build",
		ImageFormat: "svg",
		Title:       "Pipeline documentation",
		Cache: CacheConfig{
			Backend:         BackendFile,
			TTL:             Duration{30 * 24 * time.Hour},
			MongoDatabase:   "hivedoc",
			MongoCollection: "images",
		},
		Serve: ServeConfig{Addr: "127.0.0.1:8080"},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}

	cfg.resolve(filepath.Dir(path))
	return cfg, cfg.Validate()
}

// resolve makes relative directories relative to base.
func (c *Config) resolve(base string) {
	if base == "" || base == "." {
		return
	}
	for _, p := range []*string{&c.SourceDir, &c.OutputDir, &c.BuildDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	if c.Cache.Dir != "" && !filepath.IsAbs(c.Cache.Dir) {
		c.Cache.Dir = filepath.Join(base, c.Cache.Dir)
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.SourceDir == "" {
		return invalid("source_dir is required")
	}
	if c.OutputDir == "" {
		return invalid("output_dir is required")
	}
	if c.BuildDir == "" {
		return invalid("build_dir is required")
	}
	if filepath.Clean(c.SourceDir) == filepath.Clean(c.OutputDir) {
		return invalid("output_dir must differ from source_dir")
	}
	if err := errors.ValidateImageFormat(c.ImageFormat); err != nil {
		return invalid("image_format: %s", errors.UserMessage(err))
	}
	if c.RenderTimeout.Duration < 0 {
		return invalid("render_timeout must not be negative")
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return invalid("cache.mongo_uri is required for the mongo backend")
		}
	default:
		return invalid("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return invalid("cache.ttl must not be negative")
	}
	return nil
}

// ValidatePublish checks the settings needed by the publish command.
func (c Config) ValidatePublish() error {
	if c.Publish.Bucket == "" {
		return invalid("publish.bucket is required")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, "%s", fmt.Sprintf(format, args...))
}
