package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"

	UploadLocal = "local"
	UploadS3    = "s3"

	defaultPort          = 5000
	defaultEnv           = EnvDevelopment
	defaultDriver        = DriverMongo
	defaultDBName        = "penline"
	defaultMongoURI      = "mongodb://127.0.0.1:27017"
	defaultDBHost        = "127.0.0.1"
	defaultDBPort        = 3306
	defaultDBUser        = "root"
	defaultDBCharset     = "utf8mb4"
	defaultDBLoc         = "Local"
	defaultRedisHost     = "localhost"
	defaultRedisPort     = 6379
	defaultJWTExpireDays = 30
	defaultUploadDir     = "uploads"
	defaultLogDir        = "logs"
	defaultUploadMaxMB   = 5
	defaultSiteTitle     = "Penline"
	defaultRateRequests  = 120
	defaultRateWindowSec = 60
	defaultCacheTTLSec   = 15

	envJWTSecret = "PENLINE_JWT_SECRET"
	envMongoURI  = "PENLINE_MONGO_URI"
	envMySQLDSN  = "PENLINE_MYSQL_DSN"
	envRedisURL  = "PENLINE_REDIS_URL"
	envHome      = "PENLINE_HOME"
)

var defaultUploadFormats = []string{"jpg", "jpeg", "png", "gif", "webp"}
