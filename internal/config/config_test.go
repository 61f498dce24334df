package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "penline", cfg.Database.Name)
	assert.Equal(t, UploadLocal, cfg.Upload.Driver)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
	assert.Equal(t, []string{"jpg", "jpeg", "png", "gif", "webp"}, cfg.Upload.AllowedFormats)
	assert.Equal(t, 15*time.Second, cfg.ResponseCacheTTL())
}

func TestParseOverridesAndNormalizes(t *testing.T) {
	cfg, err := Parse([]byte(`
port: 8080
env: " Production "
jwt_secret: s3cret
site_url: https://blog.example.com/
database:
  driver: MySQL
  name: blog
upload:
  allowed_formats: [".PNG", " jpg "]
allowed_origins: [" https://*.example.com ", ""]
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "https://blog.example.com", cfg.SiteURL)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, []string{"png", "jpg"}, cfg.Upload.AllowedFormats)
	assert.Equal(t, []string{"https://*.example.com"}, cfg.AllowedOrigins)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("prot: 1\n"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	_, err := Parse([]byte("port: 70000\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("database:\n  driver: sqlite\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("env: production\n"))
	assert.ErrorContains(t, err, "jwt_secret")

	_, err = Parse([]byte("upload:\n  driver: s3\n"))
	assert.Error(t, err, "s3 without bucket")
}

func TestApplyEnvOverridesSecrets(t *testing.T) {
	cfg := defaultAppConfig()
	env := map[string]string{
		envJWTSecret: " from-env ",
		envMongoURI:  "mongodb://db:27017",
		envMySQLDSN:  "",
		envRedisURL:  "cache:6379/1",
	}
	applyEnv(&cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	normalize(&cfg)

	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.MongoURI)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURLValue())
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 6000\n"), 0o644))
	t.Setenv(envJWTSecret, "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
}

func TestMySQLDSN(t *testing.T) {
	db := normalizeDatabaseConfig(DatabaseRuntimeConfig{
		Host:     "db.internal",
		Port:     3307,
		User:     "blog",
		Password: "pw",
		Name:     "penline",
		Loc:      "UTC",
	})
	dsn := db.MySQLDSN()
	assert.Contains(t, dsn, "blog:pw@tcp(db.internal:3307)/penline?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	db.DSN = "root@tcp(localhost)/x"
	assert.Equal(t, "root@tcp(localhost)/x", db.MySQLDSN())
}

func TestRedisURLFromFields(t *testing.T) {
	cfg := defaultAppConfig()
	assert.Empty(t, cfg.RedisURLValue())

	cfg.Redis.Enable = true
	cfg.Redis.Password = "pw"
	cfg.Redis.DB = 2
	assert.Equal(t, "redis://:pw@localhost:6379/2", cfg.RedisURLValue())
}

func TestResolvePath(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "srv", "penline")
	abs := filepath.Join(string(filepath.Separator), "var", "uploads")

	assert.Equal(t, filepath.Join(root, "uploads"), resolvePath(root, "", "uploads"))
	assert.Equal(t, filepath.Join(root, "media"), resolvePath(root, " media ", "uploads"))
	assert.Equal(t, abs, resolvePath(root, abs+string(filepath.Separator), "uploads"))
	assert.Equal(t, root, resolvePath(root, "", ""))
}

func TestRuntimeRootHonorsHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envHome, dir)

	assert.Equal(t, filepath.Clean(dir), RuntimeRoot())
	cfg, err := Parse([]byte("upload:\n  dir: files\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "files"), cfg.UploadDir())
}
