package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	DBDriver       string
	DBHost         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPort         string
	DBSSLMode      string
	SQLitePath     string
	DBMaxOpenConns int

	SequenceStrategy      string
	CreateRetries         int
	Timezone              string
	SequenceRetentionDays int
	SequencePruneSchedule string

	KafkaBrokers    string
	KafkaOrderTopic string
	RedisAddr       string
	RedisChannel    string

	PublicDir         string
	CORSOrigins       string
	InternalSecretKey string
	MigrationsDir     string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:  os.Getenv("APP_ENV"),
		AppPort: getenv("APP_PORT", "5000"),

		DBDriver:       getenv("DB_DRIVER", "postgres"),
		DBHost:         os.Getenv("DB_HOST"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBPort:         os.Getenv("DB_PORT"),
		DBSSLMode:      getenv("DB_SSLMODE", "disable"),
		SQLitePath:     getenv("SQLITE_PATH", "data/orders.db"),
		DBMaxOpenConns: getenvInt("DB_MAX_OPEN_CONNS", 10),

		SequenceStrategy:      getenv("ORDER_SEQUENCE_STRATEGY", "counter"),
		CreateRetries:         getenvInt("ORDER_CREATE_RETRIES", 3),
		Timezone:              getenv("ORDER_TIMEZONE", "UTC"),
		SequenceRetentionDays: getenvInt("SEQUENCE_RETENTION_DAYS", 7),
		SequencePruneSchedule: getenv("SEQUENCE_PRUNE_SCHEDULE", "0 0 3 * * *"),

		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		KafkaOrderTopic: getenv("KAFKA_ORDER_TOPIC", "orders.events"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisChannel:    getenv("REDIS_CHANNEL", "orders"),

		PublicDir:         os.Getenv("PUBLIC_DIR"),
		CORSOrigins:       getenv("CORS_ORIGINS", "*"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
		MigrationsDir:     getenv("MIGRATIONS_DIR", "migrations/sqlite"),
	}

	if cfg.DBDriver == "postgres" && cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
