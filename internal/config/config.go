package config

import (
	"errors"  // Missing required settings
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
	"golang.org/x/crypto/bcrypt"
)

// Supported database drivers
const (
	DriverMySQL  = "mysql"  // Production database
	DriverSQLite = "sqlite" // Local development database
)

// Config holds the application configuration
type Config struct {
	AppPort      string // Application port
	DBDriver     string // Database driver: mysql or sqlite
	DBUser       string // Database user
	DBPassword   string // Database password
	DBHost       string // Database host
	DBPort       string // Database port
	DBName       string // Database name
	DBPath       string // SQLite database file
	SecretKey    string // Signs session and reset tokens
	RedisAddr    string // Redis server address
	RedisPass    string // Redis password
	RedisDB      int    // Redis database number
	AMQPURL      string // RabbitMQ URL, empty disables the broker
	ResetQueue   string // Queue receiving password reset notifications
	ResetURLBase string // Prefix of the link sent in reset notifications
	UploadDir    string // Directory for profile photos
	BcryptCost   int    // Bcrypt work factor
	IsProd       bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cost, err := strconv.Atoi(os.Getenv("BCRYPT_COST"))
	if err != nil {
		cost = bcrypt.DefaultCost // Industry standard work factor
	}
	return &Config{
		AppPort:      getEnv("APP_PORT", "8000"),                                        // Application port
		DBDriver:     getEnv("DB_DRIVER", DriverSQLite),                                 // Database driver
		DBUser:       os.Getenv("DB_USER"),                                              // Database user
		DBPassword:   os.Getenv("DB_PASSWORD"),                                          // Database password
		DBHost:       getEnv("DB_HOST", "127.0.0.1"),                                    // Database host
		DBPort:       getEnv("DB_PORT", "3306"),                                         // Database port
		DBName:       os.Getenv("DB_NAME"),                                              // Database name
		DBPath:       getEnv("DB_PATH", "budget.db"),                                    // SQLite file
		SecretKey:    os.Getenv("SECRET_KEY"),                                           // Token signing key
		RedisAddr:    getEnv("REDIS_ADDR", "127.0.0.1:6379"),                            // Redis server address
		RedisPass:    os.Getenv("REDIS_PASS"),                                           // Redis password
		RedisDB:      redisDB,                                                           // Redis database number
		AMQPURL:      os.Getenv("AMQP_URL"),                                             // RabbitMQ URL
		ResetQueue:   getEnv("RESET_QUEUE", "password_reset"),                           // Reset queue name
		ResetURLBase: getEnv("RESET_URL_BASE", "http://127.0.0.1:8000/reset_password/"), // Reset link prefix
		UploadDir:    getEnv("UPLOAD_DIR", "static/profile_pics"),                       // Photo directory
		BcryptCost:   cost,                                                              // Bcrypt work factor
		IsProd:       os.Getenv("IS_PROD") == "true",                                    // Is production environment
	}
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY must be set")
	}
	if c.DBDriver != DriverMySQL && c.DBDriver != DriverSQLite {
		return errors.New("DB_DRIVER must be mysql or sqlite")
	}
	return nil
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.DBPath // SQLite only needs the file path
	}
	// Database Source Name (DSN) for MySQL connection
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// getEnv returns the variable or a fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
