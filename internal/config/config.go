package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tetraeducacao/leadtracker/internal/infra/integration/jornada"
)

type Config struct {
	Server    ServerConfig
	Jornada   JornadaConfig
	Log       LogConfig
	Database  DatabaseConfig
	RabbitMQ  RabbitMQConfig
	Redis     RedisConfig
	Security  SecurityConfig
	Session   SessionConfig
	Retention RetentionConfig
}

type ServerConfig struct {
	Port         int
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// JornadaConfig aponta para o webhook do n8n que procura o lead.
type JornadaConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig vazio desliga o histórico de consultas.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RabbitMQConfig vazio faz o histórico ir direto para o banco.
type RabbitMQConfig struct {
	URL string
}

// RedisConfig sem Addr deixa o cache só em memória. CacheTTL zero desliga o cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type SecurityConfig struct {
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
	CleanupInterval   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SessionConfig struct {
	TTL          time.Duration
	SecureCookie bool
}

type RetentionConfig struct {
	Days     int
	Interval time.Duration
}

// Load lê a configuração do ambiente (o .env já foi carregado pelo main).
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("PORT", 8080),
			Environment:  env,
			ReadTimeout:  getEnvAsSeconds("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsSeconds("WRITE_TIMEOUT", 45),
			IdleTimeout:  getEnvAsSeconds("IDLE_TIMEOUT", 60),
		},
		Jornada: JornadaConfig{
			WebhookURL: getEnv("JORNADA_WEBHOOK_URL", jornada.DefaultWebhookURL),
			Timeout:    getEnvAsSeconds("JORNADA_WEBHOOK_TIMEOUT", 30),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 5),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsSeconds("DB_CONN_MAX_LIFETIME", 1800),
			ConnMaxIdleTime: getEnvAsSeconds("DB_CONN_MAX_IDLE_TIME", 300),
		},
		RabbitMQ: RabbitMQConfig{
			URL: getEnv("RABBITMQ_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsSeconds("CACHE_TTL", 0),
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 30),
				BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
				CleanupInterval:   getEnvAsSeconds("RATE_LIMIT_CLEANUP", 60),
			},
			CORS: CORSConfig{
				AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			},
		},
		Session: SessionConfig{
			TTL:          getEnvAsSeconds("SESSION_TTL", 2*60*60),
			SecureCookie: getEnvAsBool("SESSION_SECURE_COOKIE", env == "production"),
		},
		Retention: RetentionConfig{
			Days:     getEnvAsInt("SEARCH_LOG_RETENTION_DAYS", 90),
			Interval: getEnvAsSeconds("SEARCH_LOG_RETENTION_INTERVAL", 6*60*60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Jornada.WebhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("JORNADA_WEBHOOK_URL inválida: %q", c.Jornada.WebhookURL)
	}
	if c.Jornada.Timeout <= 0 {
		return fmt.Errorf("JORNADA_WEBHOOK_TIMEOUT deve ser maior que zero")
	}
	if c.Security.RateLimit.RequestsPerMinute <= 0 || c.Security.RateLimit.BurstSize <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPM e RATE_LIMIT_BURST devem ser maiores que zero")
	}
	if c.Retention.Days <= 0 {
		return fmt.Errorf("SEARCH_LOG_RETENTION_DAYS deve ser maior que zero")
	}
	return nil
}

// Addr é o endereço de escuta do servidor HTTP.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// RequestTimeout cobre a chamada ao webhook com folga para renderizar a resposta.
func (c *Config) RequestTimeout() time.Duration {
	return c.Jornada.Timeout + 5*time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
