package config

import "strings"

func normalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	if strings.TrimSpace(cfg.SiteTitle) == "" {
		cfg.SiteTitle = defaultSiteTitle
	}
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.RedisURL = normalizeRedisRawURL(cfg.RedisURL)
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Upload = normalizeUploadConfig(cfg.Upload)
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.Paths.Logs = strings.TrimSpace(cfg.Paths.Logs)
}

func normalizeDatabaseConfig(cfg DatabaseRuntimeConfig) DatabaseRuntimeConfig {
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.MongoURI = strings.TrimSpace(cfg.MongoURI)
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Charset = strings.TrimSpace(cfg.Charset)
	cfg.Loc = strings.TrimSpace(cfg.Loc)

	if cfg.Driver == "" {
		cfg.Driver = defaultDriver
	}
	if cfg.Name == "" {
		cfg.Name = defaultDBName
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = defaultMongoURI
	}
	if cfg.Host == "" {
		cfg.Host = defaultDBHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultDBPort
	}
	if cfg.User == "" {
		cfg.User = defaultDBUser
	}
	if cfg.Charset == "" {
		cfg.Charset = defaultDBCharset
	}
	if cfg.Loc == "" {
		cfg.Loc = defaultDBLoc
	}
	cfg.Params = copyStringMap(cfg.Params)
	return cfg
}

func normalizeUploadConfig(cfg UploadConfig) UploadConfig {
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	if cfg.Driver == "" {
		cfg.Driver = UploadLocal
	}
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	if cfg.Dir == "" {
		cfg.Dir = defaultUploadDir
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = defaultUploadMaxMB
	}

	formats := make([]string, 0, len(cfg.AllowedFormats))
	for _, f := range cfg.AllowedFormats {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f != "" {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		formats = append(formats, defaultUploadFormats...)
	}
	cfg.AllowedFormats = formats

	cfg.S3.Bucket = strings.TrimSpace(cfg.S3.Bucket)
	cfg.S3.Region = strings.TrimSpace(cfg.S3.Region)
	cfg.S3.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.S3.Endpoint), "/")
	cfg.S3.Prefix = strings.Trim(strings.TrimSpace(cfg.S3.Prefix), "/")
	cfg.S3.PublicURL = strings.TrimRight(strings.TrimSpace(cfg.S3.PublicURL), "/")
	cfg.S3.Enabled = cfg.Driver == UploadS3
	return cfg
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
