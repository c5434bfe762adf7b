package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, business hours, etc.), standard settings
// -----------------------------------------------------------------------------

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	DB        DBConfig
	Redis     RedisConfig
	Session   SessionConfig
	Booking   BookingConfig
	Retry     RetryConfig
	Extractor ExtractorConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type StoreConfig struct {
	ReservationBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	SessionBackend     string `envconfig:"SESSION_BACKEND" default:"memory"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"roomchat"`
	Password string `envconfig:"DB_PASSWORD" default:""`
	DBName   string `envconfig:"DB_NAME" default:"roomchat"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Seoul"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
	LockTTL       time.Duration `envconfig:"SESSION_LOCK_TTL" default:"2m"`
}

// BookingConfig carries the business rules. Conflicting values seen in older
// booking flows (3h/4h/9h maximum, 2 week/30 day windows) are deliberately
// exposed as settings instead of being hard-coded.
type BookingConfig struct {
	TimeZone         string        `envconfig:"BOOKING_TIMEZONE" default:"Asia/Seoul"`
	Open             string        `envconfig:"BOOKING_OPEN" default:"09:00"`
	Close            string        `envconfig:"BOOKING_CLOSE" default:"18:00"`
	Weekdays         []string      `envconfig:"BOOKING_WEEKDAYS" default:"Mon,Tue,Wed,Thu,Fri"`
	MinDuration      time.Duration `envconfig:"BOOKING_MIN_DURATION" default:"1h"`
	MaxDuration      time.Duration `envconfig:"BOOKING_MAX_DURATION" default:"4h"`
	Granularity      time.Duration `envconfig:"BOOKING_GRANULARITY" default:"1h"`
	MaxLookaheadDays int           `envconfig:"BOOKING_MAX_LOOKAHEAD_DAYS" default:"14"`
	AdvanceDays      int           `envconfig:"BOOKING_ADVANCE_DAYS" default:"30"`
	Suggestions      int           `envconfig:"BOOKING_SUGGESTIONS" default:"3"`
	// id:name:capacity
	Rooms []string `envconfig:"ROOMS" default:"1:Room 1:4,2:Room 2:4,3:Room 3:6,4:Room 4:6,5:Room 5:8,6:Room 6:10"`
}

type RetryConfig struct {
	MaxAttempts int           `envconfig:"COMMIT_MAX_ATTEMPTS" default:"2"`
	Backoff     time.Duration `envconfig:"COMMIT_BACKOFF" default:"100ms"`
}

type ExtractorConfig struct {
	Provider string        `envconfig:"EXTRACTOR_PROVIDER" default:"openai"`
	Model    string        `envconfig:"EXTRACTOR_MODEL" default:"gpt-4o-mini"`
	BaseURL  string        `envconfig:"EXTRACTOR_BASE_URL" default:"https://api.openai.com/v1"`
	APIKey   string        `envconfig:"EXTRACTOR_API_KEY" default:""`
	Timeout  time.Duration `envconfig:"EXTRACTOR_TIMEOUT" default:"20s"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Seoul"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		Store: StoreConfig{
			ReservationBackend: BackendMemory,
			SessionBackend:     BackendMemory,
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Seoul",
			MaxConns: 10,
		},
		Session: SessionConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
			LockTTL:       time.Minute,
		},
		Booking: BookingConfig{
			TimeZone:         "Asia/Seoul",
			Open:             "09:00",
			Close:            "18:00",
			Weekdays:         []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			MinDuration:      time.Hour,
			MaxDuration:      4 * time.Hour,
			Granularity:      time.Hour,
			MaxLookaheadDays: 14,
			AdvanceDays:      30,
			Suggestions:      3,
			Rooms: []string{
				"1:Room 1:4", "2:Room 2:4", "3:Room 3:6",
				"4:Room 4:6", "5:Room 5:8", "6:Room 6:10",
			},
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			Backoff:     time.Millisecond,
		},
		Extractor: ExtractorConfig{
			Provider: ProviderOpenAI,
			Model:    "test-model",
			BaseURL:  "http://localhost:0/v1",
			Timeout:  time.Second,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Seoul",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		RateLimit: RateLimitConfig{
			RPS:   100,
			Burst: 100,
		},
	}
}
