package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBDriver               string        `env:"DB_DRIVER" envDefault:"mysql"` // mysql or sqlite
	DBUser                 string        `env:"DB_USER"`
	DBPassword             string        `env:"DB_PASSWORD"`
	DBHost                 string        `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string        `env:"DB_NAME"`
	DBPort                 string        `env:"DB_PORT" envDefault:"3306"`
	DBPath                 string        `env:"DB_PATH" envDefault:"feed.db"`
	InstanceConnectionName string        `env:"INSTANCE_CONNECTION_NAME"`
	DBMaxOpenConns         int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns         int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime      time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	AutoMigrate            bool          `env:"AUTO_MIGRATE" envDefault:"true"`

	StorageBucket     string `env:"STORAGE_BUCKET"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	CORSAllowedSuffix string `env:"CORS_ALLOWED_SUFFIX" envDefault:"vercel.app"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	GitSHA    string `env:"GIT_SHA" envDefault:"dev"`
	BuildTime string `env:"BUILD_TIME"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.DBUser == "" || c.DBName == "" {
			return errors.New("DB_USER and DB_NAME are required for mysql")
		}
		if c.DBHost == "" && c.InstanceConnectionName == "" {
			return errors.New("DB_HOST or INSTANCE_CONNECTION_NAME is required for mysql")
		}
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	default:
		return errors.New("DB_DRIVER must be mysql or sqlite")
	}
	return nil
}
