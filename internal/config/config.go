package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at configPath, applies environment overrides and
// defaults, and validates the result. A missing file yields the defaults.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	default:
		if err := decode(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	applyEnv(&cfg, os.LookupEnv)
	normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &cfg, nil
}

// Parse builds a config from raw YAML without touching the environment.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if err := decode(content, &cfg); err != nil {
		return nil, err
	}
	normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(content []byte, cfg *AppConfig) error {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	return decoder.Decode(cfg)
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:          defaultPort,
		Env:           defaultEnv,
		SiteTitle:     defaultSiteTitle,
		JWTExpireDays: defaultJWTExpireDays,
		CacheTTL:      defaultCacheTTLSec,
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
		},
		Database: DatabaseRuntimeConfig{
			Driver:   defaultDriver,
			Name:     defaultDBName,
			MongoURI: defaultMongoURI,
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Charset:  defaultDBCharset,
			Loc:      defaultDBLoc,
		},
		Upload: UploadConfig{
			Driver:         UploadLocal,
			Dir:            defaultUploadDir,
			MaxSizeMB:      defaultUploadMaxMB,
			AllowedFormats: append([]string(nil), defaultUploadFormats...),
		},
		RateLimit: RateLimitConfig{
			Requests:      defaultRateRequests,
			WindowSeconds: defaultRateWindowSec,
		},
	}
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return resolvePath(RuntimeRoot(), "", defaultLogDir)
	}
	return resolvePath(RuntimeRoot(), c.Paths.Logs, defaultLogDir)
}

func (c *AppConfig) LogRotateSizeMB() (int, bool) {
	if c == nil || c.LogRotateSize == nil {
		return 0, false
	}
	return *c.LogRotateSize, true
}

func (c *AppConfig) LogRotateKeepCount() (int, bool) {
	if c == nil || c.LogRotateKeep == nil {
		return 0, false
	}
	return *c.LogRotateKeep, true
}

// UploadDir is the absolute directory of the local upload backend.
func (c *AppConfig) UploadDir() string {
	return resolvePath(RuntimeRoot(), c.Upload.Dir, defaultUploadDir)
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxSizeMB) << 20
}

func (c *AppConfig) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpireDays) * 24 * time.Hour
}

// ResponseCacheTTL is zero when the response cache is disabled.
func (c *AppConfig) ResponseCacheTTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func (c *AppConfig) RateWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}
