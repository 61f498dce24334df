package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"              validate:"min=1,max=65535"`
	Env            string                `yaml:"env"               validate:"oneof=development production test"` // "development" | "production" | "test"
	SiteURL        string                `yaml:"site_url"          validate:"omitempty,url"`
	SiteTitle      string                `yaml:"site_title"`
	JWTSecret      string                `yaml:"jwt_secret"`
	JWTExpireDays  int                   `yaml:"jwt_expire_days"   validate:"min=1"`
	RedisURL       string                `yaml:"redis_url"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Upload         UploadConfig          `yaml:"upload"`
	RateLimit      RateLimitConfig       `yaml:"rate_limit"`
	CacheTTL       int                   `yaml:"cache_ttl_seconds" validate:"min=0"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	LogRotateSize  *int                  `yaml:"log_rotate_size_mb" validate:"omitempty,min=1"`
	LogRotateKeep  *int                  `yaml:"log_rotate_keep"    validate:"omitempty,min=0"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
}

type DatabaseRuntimeConfig struct {
	Driver   string `yaml:"driver"    validate:"oneof=mongo mysql memory"`
	Name     string `yaml:"name"      validate:"required"`
	MongoURI string `yaml:"mongo_uri"`

	// MySQL connection; DSN wins over the discrete parts.
	DSN      string            `yaml:"dsn"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"     validate:"min=1,max=65535"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Charset  string            `yaml:"charset"`
	Loc      string            `yaml:"loc"`
	Params   map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	Enable   bool   `yaml:"enable"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"     validate:"min=1,max=65535"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"       validate:"min=0"`
	TLS      bool   `yaml:"tls"`
}

type UploadConfig struct {
	Driver         string   `yaml:"driver"          validate:"oneof=local s3"`
	Dir            string   `yaml:"dir"`
	MaxSizeMB      int      `yaml:"max_size_mb"     validate:"min=1"`
	AllowedFormats []string `yaml:"allowed_formats" validate:"min=1,dive,required"`
	S3             S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"            validate:"required_if=Enabled true"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"          validate:"omitempty,url"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	PublicURL       string `yaml:"public_url"        validate:"omitempty,url"`
	Enabled         bool   `yaml:"-"`
}

type RateLimitConfig struct {
	Enable        bool `yaml:"enable"`
	Requests      int  `yaml:"requests"       validate:"min=1"`
	WindowSeconds int  `yaml:"window_seconds" validate:"min=1"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}
