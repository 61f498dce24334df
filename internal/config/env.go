package config

import "strings"

type lookupFunc func(key string) (string, bool)

// applyEnv lets deployment secrets stay out of the YAML file.
func applyEnv(cfg *AppConfig, lookup lookupFunc) {
	if v, ok := nonEmpty(lookup, envJWTSecret); ok {
		cfg.JWTSecret = v
	}
	if v, ok := nonEmpty(lookup, envMongoURI); ok {
		cfg.Database.MongoURI = v
	}
	if v, ok := nonEmpty(lookup, envMySQLDSN); ok {
		cfg.Database.DSN = v
	}
	if v, ok := nonEmpty(lookup, envRedisURL); ok {
		cfg.RedisURL = v
	}
}

func nonEmpty(lookup lookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
