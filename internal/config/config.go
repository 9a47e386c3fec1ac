package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	DBDSN      string `env:"DB_DSN"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"productattr"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	StorageDriver        string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	MigrateProductTables bool   `env:"MIGRATE_PRODUCT_TABLES" envDefault:"false"`
	SeedDemo             bool   `env:"SEED_DEMO" envDefault:"false"`

	JWTSecret          string `env:"JWT_SECRET"`
	AdminAPIKey        string `env:"ADMIN_API_KEY"`
	AdminAllowedEmails string `env:"ADMIN_ALLOWED_EMAILS"`
	CORSOrigins        string `env:"CORS_ORIGINS" envDefault:"*"`
}

// Load reads the given env files (".env" when none), then the process
// environment. Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if cfg.StorageDriver != DriverPostgres && cfg.StorageDriver != DriverMemory {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.AppEnv)
	return e == "production" || e == "prod"
}

func (c *Config) IsDevelopment() bool {
	e := strings.ToLower(c.AppEnv)
	return e == "" || e == "development" || e == "dev"
}

// DSN returns DB_DSN when set, otherwise one built from the DB_* parts.
func (c *Config) DSN() string {
	if strings.TrimSpace(c.DBDSN) != "" {
		return c.DBDSN
	}
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
		" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=" + c.DBSSLMode
}

// AllowedEmails parses ADMIN_ALLOWED_EMAILS. Entries are lowercased.
func (c *Config) AllowedEmails() []string {
	return splitList(c.AdminAllowedEmails, true)
}

func (c *Config) Origins() []string {
	return splitList(c.CORSOrigins, false)
}

func splitList(s string, lower bool) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lower {
			part = strings.ToLower(part)
		}
		out = append(out, part)
	}
	return out
}
