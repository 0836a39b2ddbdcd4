package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type (
	Properties struct {
		Env string `env:"APP_ENV" envDefault:"development"`

		Server HTTPProperties  `envPrefix:"HTTP_"`
		DB     DBProperties    `envPrefix:"DB_"`
		JWT    JWTProperties   `envPrefix:"JWT_"`
		S3     S3Properties    `envPrefix:"S3_"`
		Redis  RedisProperties `envPrefix:"REDIS_"`
		Mail   MailProperties  `envPrefix:"MAIL_"`
	}

	HTTPProperties struct {
		Port       string `env:"PORT" envDefault:"8080"`
		CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	}

	DBProperties struct {
		DSN string `env:"DSN" envDefault:"root:123456@tcp(127.0.0.1:3306)/xplore?charset=utf8mb4&parseTime=True&loc=Local"`
	}

	JWTProperties struct {
		Secret     string        `env:"SECRET" envDefault:"my_secret_key"`
		AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"24h"`
		RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"360h"`
	}

	S3Properties struct {
		Endpoint  string `env:"ENDPOINT" envDefault:"127.0.0.1:9000"`
		AccessKey string `env:"ACCESS_KEY" envDefault:"admin"`
		SecretKey string `env:"SECRET_KEY" envDefault:"password123"`
		Bucket    string `env:"BUCKET" envDefault:"xplore"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
	}

	RedisProperties struct {
		// Empty Addr disables the like-count mirror; toggles then keep
		// the counter column current themselves.
		Addr     string        `env:"ADDR" envDefault:""`
		Password string        `env:"PASSWORD" envDefault:""`
		DB       int           `env:"DB" envDefault:"0"`
		SyncTick time.Duration `env:"SYNC_TICK" envDefault:"1m"`
	}

	MailProperties struct {
		Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
		Port     int    `env:"PORT" envDefault:"587"`
		User     string `env:"USER"`
		Password string `env:"PASS"`
	}
)

// IsDev reports whether the service runs in development mode. Session
// cookies are only marked Secure outside of it.
func (p *Properties) IsDev() bool {
	return p.Env == "development"
}

func Read() (*Properties, error) {
	p := &Properties{}
	if err := env.Parse(p); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return p, nil
}
