package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Client    ClientConfig
	Notify    NotifyConfig
	DevServer DevServerConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Environment string `validate:"required"`
	LogFilePath string `validate:"required"`
}

type ClientConfig struct {
	ServerURL         string        `validate:"required,url"`
	StreamProtocol    string        `validate:"oneof=sentinel tagged"`
	HTTPTimeout       time.Duration `validate:"gt=0"`
	DialTimeout       time.Duration `validate:"gt=0"`
	StreamIdleTimeout time.Duration `validate:"gte=0"` // 0 disables the idle timeout
}

type NotifyConfig struct {
	NatsURL       string // empty disables forwarding
	SubjectPrefix string `validate:"required"`
}

type DevServerConfig struct {
	Port               string `validate:"required,numeric"`
	CorsAllowedOrigins string
	TokenDelay         time.Duration `validate:"gte=0"` // pause between streamed frames
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "coreader.log"),
		},
		Client: ClientConfig{
			ServerURL:         getEnv("COREADER_SERVER_URL", "http://localhost:8000"),
			StreamProtocol:    getEnv("COREADER_STREAM_PROTOCOL", "sentinel"),
			HTTPTimeout:       getEnvAsDuration("COREADER_HTTP_TIMEOUT", 30*time.Second),
			DialTimeout:       getEnvAsDuration("COREADER_DIAL_TIMEOUT", 10*time.Second),
			StreamIdleTimeout: getEnvAsDuration("COREADER_STREAM_IDLE_TIMEOUT", 60*time.Second),
		},
		Notify: NotifyConfig{
			NatsURL:       getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NOTIFY_SUBJECT_PREFIX", "coreader.notifications"),
		},
		DevServer: DevServerConfig{
			Port:               getEnv("DEVSERVER_PORT", "8000"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			TokenDelay:         getEnvAsDuration("DEVSERVER_TOKEN_DELAY", 30*time.Millisecond),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "coreader-client"),
		},
	}
}

// Validate checks the loaded values; flags may have overridden them after Load.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	// Bare integers are read as seconds.
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
