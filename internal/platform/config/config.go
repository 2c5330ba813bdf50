package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBMaxConns int
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTimeout  time.Duration

	MailQueueName     string
	MailMaxAttempts   int
	VerificationTTL   time.Duration
	VerificationDelay time.Duration // per-email throttle window

	DefaultPageSize int
	MaxPageSize     int

	BcryptCost    int
	SnowflakeNode int64

	LogLevel string
	LogDev   bool
	LogFile  string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:           getEnv("API_PORT", "8080"),
		JWTKey:            []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:            time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "user"),
		DBPassword:        getEnv("DB_PASSWORD", "password"),
		DBName:            getEnv("DB_NAME", "coursehub"),
		DBSslMode:         getEnv("DB_SSLMODE", "disable"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		RedisTimeout:      time.Duration(getEnvAsInt("REDIS_TIMEOUT_SECONDS", 5)) * time.Second,
		MailQueueName:     getEnv("MAIL_QUEUE_NAME", "verification_mail_queue"),
		MailMaxAttempts:   getEnvAsInt("MAIL_MAX_ATTEMPTS", 3),
		VerificationTTL:   time.Duration(getEnvAsInt("VERIFICATION_CODE_TTL_SECONDS", 900)) * time.Second,
		VerificationDelay: time.Duration(getEnvAsInt("VERIFICATION_THROTTLE_SECONDS", 60)) * time.Second,
		DefaultPageSize:   getEnvAsInt("PAGINATION_DEFAULT_PAGE_SIZE", 12),
		MaxPageSize:       getEnvAsInt("PAGINATION_MAX_PAGE_SIZE", 100),
		BcryptCost:        getEnvAsInt("BCRYPT_COST", 10),
		SnowflakeNode:     int64(getEnvAsInt("SNOWFLAKE_NODE", 1)),
		LogLevel:          getEnv("LOG_LEVEL", ""),
		LogDev:            getEnv("LOG_DEV", "") == "1",
		LogFile:           getEnv("LOG_FILE", ""),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
