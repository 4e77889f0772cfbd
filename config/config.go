package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv 读取 .env（可选），已存在的环境变量优先
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.Printf("config: load .env: %v", err)
	}
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type BootstrapConfig struct {
	Email    string
	Password string
	Name     string
	Carnet   string
}

type Config struct {
	Port      string
	WebOrigin string

	Database DatabaseConfig
	Redis    RedisConfig

	SessionTTL   time.Duration
	SessionTouch time.Duration
	LoginPerMin  int

	// 0 表示不启用定时逾期扫描
	SweepInterval time.Duration

	LogLevel  string
	LogFormat string

	// 报表中日期的显示时区
	ReportTZ string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelInsecure    bool
	OtelSampleRatio float64

	Bootstrap BootstrapConfig
}

func Load() Config {
	return Config{
		Port:      get("PORT", "3001"),
		WebOrigin: get("WEB_ORIGIN", "http://localhost:5173"),
		Database: DatabaseConfig{
			Host:     get("DB_HOST", "localhost"),
			Port:     getInt("DB_PORT", 5432),
			User:     get("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     get("DB_NAME", "inventario"),
			SSLMode:  get("DB_SSLMODE", "disable"),
			MaxConns: getInt("DB_MAX_CONNS", 20),
		},
		Redis: RedisConfig{
			Addr:     get("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		SessionTTL:      seconds("SESSION_TTL_SECONDS", 24*time.Hour),
		SessionTouch:    seconds("SESSION_TOUCH_SECONDS", 5*time.Minute),
		LoginPerMin:     getInt("LOGIN_RATE_PER_MINUTE", 5),
		SweepInterval:   duration("SWEEP_INTERVAL", 0),
		LogLevel:        get("LOG_LEVEL", "info"),
		LogFormat:       get("LOG_FORMAT", "json"),
		ReportTZ:        get("REPORT_TZ", "UTC"),
		OtelEnabled:     getBool("OTEL_ENABLED", false),
		OtelEndpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OtelInsecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampleRatio: ratio("OTEL_SAMPLER_RATIO", 1),
		Bootstrap: BootstrapConfig{
			Email:    strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")),
			Password: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
			Name:     get("BOOTSTRAP_ADMIN_NAME", "Administrador del Sistema"),
			Carnet:   get("BOOTSTRAP_ADMIN_CARNET", "ADMIN001"),
		},
	}
}

func get(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

// ratio 限制在 [0, 1]
func ratio(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func seconds(k string, def time.Duration) time.Duration {
	n := getInt(k, -1)
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func duration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
