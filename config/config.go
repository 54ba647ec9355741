package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

// ErrMissingMongoURI is returned by Load when MONGO_URI is not set.
var ErrMissingMongoURI = errors.New("MONGO_URI is not set")

type AppConfig struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Pagination PaginationConfig `yaml:"pagination"`
	CORS       CORSConfig       `yaml:"cors"`
	Static     StaticConfig     `yaml:"static"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MongoConfig holds the store settings. URI is never read from config.yaml,
// only from the MONGO_URI environment variable.
type MongoConfig struct {
	URI            string        `yaml:"-"`
	Database       string        `yaml:"database"`
	Collection     string        `yaml:"collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type PaginationConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StaticConfig enables serving a built frontend. Dir empty means API only.
type StaticConfig struct {
	Dir      string `yaml:"dir"`
	BlogPath string `yaml:"blog_path"`
}

// Default returns the configuration used when config.yaml omits a value.
func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Server: ServerConfig{
			Addr:            ":5000",
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: MongoConfig{
			Database:       "blog",
			Collection:     "blogs",
			ConnectTimeout: 10 * time.Second,
		},
		Pagination: PaginationConfig{DefaultLimit: 6},
		CORS:       CORSConfig{AllowedOrigins: []string{"*"}},
		Static:     StaticConfig{BlogPath: "/blog"},
	}
}

// Load reads .env and config.yaml from the base path and applies environment
// overrides. A missing config.yaml is not an error; a missing MONGO_URI is.
func Load() (*AppConfig, error) {
	base := GetBasePath()

	// existing environment variables take precedence over .env
	_ = godotenv.Load(filepath.Join(base, ENV_FILE))

	c := Default()
	data, err := os.ReadFile(filepath.Join(base, CONFIG_FILE))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", CONFIG_FILE, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", CONFIG_FILE, err)
	}

	applyEnv(&c)
	fillDefaults(&c)

	if c.Mongo.URI == "" {
		return nil, ErrMissingMongoURI
	}
	return &c, nil
}

func applyEnv(c *AppConfig) {
	c.Mongo.URI = os.Getenv("MONGO_URI")
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if port := os.Getenv("PORT"); port != "" {
		host, _, err := net.SplitHostPort(c.Server.Addr)
		if err != nil {
			host = ""
		}
		c.Server.Addr = net.JoinHostPort(host, port)
	}
}

// fillDefaults restores defaults for keys present in config.yaml but left empty.
func fillDefaults(c *AppConfig) {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = d.Mongo.Database
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = d.Mongo.Collection
	}
	if c.Mongo.ConnectTimeout <= 0 {
		c.Mongo.ConnectTimeout = d.Mongo.ConnectTimeout
	}
	if c.Pagination.DefaultLimit <= 0 {
		c.Pagination.DefaultLimit = d.Pagination.DefaultLimit
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = d.CORS.AllowedOrigins
	}
	if c.Static.BlogPath == "" {
		c.Static.BlogPath = d.Static.BlogPath
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
