package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "yanc-cms-dev-secret"

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	AppName            string        `yaml:"app_name" env:"APP_NAME" env-default:"YANC CMS"`
	Env                string        `yaml:"env" env:"APP_ENV" env-default:"development"`
	Port               string        `yaml:"port" env:"PORT" env-default:"8080"`
	ListenAddr         string        `yaml:"listen_addr" env:"LISTEN_ADDR"`
	GinMode            string        `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
}

// DatabaseConfig selects the gorm dialector.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DATABASE_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path" env:"DATABASE_PATH" env-default:"data/yanc-cms.db"`
	URL    string `yaml:"url" env:"DATABASE_URL"`
}

// AuthConfig controls bearer token issuing and the seeded super user.
type AuthConfig struct {
	JWTSecret         string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"yanc-cms-dev-secret"`
	JWTTTL            time.Duration `yaml:"jwt_ttl" env:"JWT_TTL" env-default:"24h"`
	SuperRootUserName string        `yaml:"super_root_user_name" env:"SUPER_ROOT_USER_NAME"`
	SuperRootPassword string        `yaml:"super_root_password" env:"SUPER_ROOT_PASSWORD"`
}

// StorageConfig describes where uploaded media objects live.
type StorageConfig struct {
	Driver        string        `yaml:"driver" env:"STORAGE_DRIVER" env-default:"local"`
	UploadDir     string        `yaml:"upload_dir" env:"UPLOAD_DIR" env-default:"data/uploads"`
	UploadURLPath string        `yaml:"upload_url_path" env:"UPLOAD_URL_PATH" env-default:"/uploads"`
	MaxBytes      int64         `yaml:"max_bytes" env:"MEDIA_MAX_BYTES" env-default:"10485760"`
	Timeout       time.Duration `yaml:"timeout" env:"STORAGE_TIMEOUT" env-default:"2m"`

	S3Endpoint     string `yaml:"s3_endpoint" env:"S3_ENDPOINT"`
	S3AccessKey    string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
	S3SecretKey    string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
	S3Bucket       string `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Region       string `yaml:"s3_region" env:"S3_REGION"`
	S3PublicURL    string `yaml:"s3_public_url" env:"S3_PUBLIC_URL"`
	S3CreateBucket bool   `yaml:"s3_create_bucket" env:"S3_CREATE_BUCKET"`
}

// Load 从 .env、可选的 YAML 文件（CONFIG_PATH）以及环境变量读取配置，并为缺失项提供默认值。
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	var cfg AppConfig
	var err error
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.AppName = strings.TrimSpace(c.AppName)
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.Port = strings.TrimSpace(c.Port)
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	origins := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, origin := range c.CORSAllowedOrigins {
		if trimmed := strings.TrimRight(strings.TrimSpace(origin), "/"); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.CORSAllowedOrigins = origins

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Storage.UploadURLPath = "/" + strings.Trim(strings.TrimSpace(c.Storage.UploadURLPath), "/")
}

// IsProduction reports whether the service runs with production defaults.
func (c AppConfig) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate rejects configurations the server cannot start with.
func (c AppConfig) Validate() error {
	var problems []error

	switch c.Database.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Database.Path) == "" {
			problems = append(problems, errors.New("DATABASE_PATH is required for the sqlite driver"))
		}
	case "postgres":
		if strings.TrimSpace(c.Database.URL) == "" {
			problems = append(problems, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		problems = append(problems, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver))
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		problems = append(problems, errors.New("JWT_SECRET must not be empty"))
	} else if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		problems = append(problems, errors.New("JWT_SECRET must be changed in production"))
	}
	if c.Auth.JWTTTL <= 0 {
		problems = append(problems, errors.New("JWT_TTL must be positive"))
	}

	switch c.Storage.Driver {
	case "local":
		if strings.TrimSpace(c.Storage.UploadDir) == "" {
			problems = append(problems, errors.New("UPLOAD_DIR is required for the local storage driver"))
		}
	case "s3":
		if c.Storage.S3Endpoint == "" || c.Storage.S3AccessKey == "" || c.Storage.S3SecretKey == "" || c.Storage.S3Bucket == "" {
			problems = append(problems, errors.New("S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET are required for the s3 storage driver"))
		}
	default:
		problems = append(problems, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if c.Storage.MaxBytes <= 0 {
		problems = append(problems, errors.New("MEDIA_MAX_BYTES must be positive"))
	}

	return errors.Join(problems...)
}
