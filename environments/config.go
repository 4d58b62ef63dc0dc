package environments

import (
	"os"
	"strconv"
	"time"
)

const (
	// StoreDriverMemory keeps all conversation state in process memory.
	StoreDriverMemory = "memory"
	// StoreDriverMySQL persists conversations and messages in MySQL.
	StoreDriverMySQL = "mysql"
)

type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Hub      HubConfig
}

type ServerConfig struct {
	Port string
}

type ProviderConfig struct {
	BaseURL string
	APIKey  string
	// Timeout of zero means no timeout; a hung provider call then stalls
	// only the request that issued it.
	Timeout time.Duration
	// MarkReadInbound toggles the read-receipt call back to the provider
	// for every ingested inbound message.
	MarkReadInbound bool
}

type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type HubConfig struct {
	PingInterval time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "3000"),
		},
		Provider: ProviderConfig{
			BaseURL:         GetEnv("WABA_BASE_URL", "https://waba-v2.360dialog.io"),
			APIKey:          GetEnv("D360_API_KEY", ""),
			Timeout:         time.Duration(GetEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 0)) * time.Second,
			MarkReadInbound: GetEnvAsBool("MARK_READ_INBOUND", false),
		},
		Store: StoreConfig{
			Driver: GetEnv("STORE_DRIVER", StoreDriverMemory),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "waba"),
			Password: GetEnv("DB_PASSWORD", "waba123"),
			DBName:   GetEnv("DB_NAME", "waba_relay"),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Hub: HubConfig{
			PingInterval: GetEnvAsDuration("HUB_PING_INTERVAL", 30*time.Second),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
