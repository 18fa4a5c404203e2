package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Port       string
	AdminToken string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type BookingConfig struct {
	// CancelCutoff is how long before a session starts that member
	// cancellation closes.
	CancelCutoff time.Duration
	// ScheduleCacheTTL bounds staleness of the cached upcoming list.
	ScheduleCacheTTL time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Booking:  GetBookingConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // test DB runs on 5433
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // test Redis runs on 6380
		Password: "",
		DB:       1,
	}

	return &Config{
		Server: ServerConfig{
			Port:       "8081",
			AdminToken: "test-admin-token",
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Booking: BookingConfig{
			CancelCutoff:     24 * time.Hour,
			ScheduleCacheTTL: time.Minute,
		},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:       getEnv("SERVER_PORT", "8080"),
		AdminToken: getEnv("ADMIN_TOKEN", "admin"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetBookingConfig() BookingConfig {
	cutoffHours, err := strconv.Atoi(getEnv("CANCEL_CUTOFF_HOURS", "24"))
	if err != nil {
		panic(err)
	}

	cacheSeconds, err := strconv.Atoi(getEnv("SCHEDULE_CACHE_TTL_SECONDS", "60"))
	if err != nil {
		panic(err)
	}

	return BookingConfig{
		CancelCutoff:     time.Duration(cutoffHours) * time.Hour,
		ScheduleCacheTTL: time.Duration(cacheSeconds) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
