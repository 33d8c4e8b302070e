package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type DatabaseConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

type Config struct {
	Port                string
	Env                 string // either prod or dev, dev logs to the console and binds to localhost
	Database            DatabaseConfig
	JwtSigningKey       []byte
	TokenTTL            time.Duration // lifetime of issued bearer tokens
	RequestTimeout      time.Duration // deadline put on every request context
	SimilarJobsCacheTTL time.Duration // how long similar job candidates are cached per employment type
	BcryptCost          int
	SentryDSN           string // optional, errors are reported to sentry when set
}

// LoadDotEnv loads variables from a .env file in the working directory,
// if there is one. Variables already set in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "unable to load .env")
	}
	return nil
}

func LoadDatabaseConfig() (DatabaseConfig, error) {
	databaseUser := os.Getenv("DATABASE_USER")
	if databaseUser == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_USER cannot be empty")
	}
	databasePassword := os.Getenv("DATABASE_PASSWORD")
	if databasePassword == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_PASSWORD cannot be empty")
	}
	databaseHost := os.Getenv("DATABASE_HOST")
	if databaseHost == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_HOST cannot be empty")
	}
	databasePort := os.Getenv("DATABASE_PORT")
	if databasePort == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_PORT cannot be empty")
	}
	databaseName := os.Getenv("DATABASE_NAME")
	if databaseName == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_NAME cannot be empty")
	}
	databaseSSLMode := os.Getenv("DATABASE_SSL_MODE")
	if databaseSSLMode == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_SSL_MODE cannot be empty")
	}
	return DatabaseConfig{
		User:     databaseUser,
		Password: databasePassword,
		Host:     databaseHost,
		Port:     databasePort,
		Name:     databaseName,
		SSLMode:  databaseSSLMode,
	}, nil
}

// LoadBcryptCost reads BCRYPT_COST, defaulting to 10.
func LoadBcryptCost() (int, error) {
	cost, err := positiveIntFromEnv("BCRYPT_COST", 10)
	if err != nil {
		return 0, err
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return 0, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return cost, nil
}

func LoadConfig() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, fmt.Errorf("PORT cannot be empty")
	}
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		return Config{}, fmt.Errorf("ENV cannot be empty")
	}
	database, err := LoadDatabaseConfig()
	if err != nil {
		return Config{}, err
	}
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		return Config{}, fmt.Errorf("JWT_SIGNING_KEY cannot be empty")
	}
	jwtSigningKeyBytes, err := base64.StdEncoding.DecodeString(jwtSigningKey)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode jwt signing key to bytes")
	}
	tokenTTLHours, err := positiveIntFromEnv("TOKEN_TTL_HOURS", 30*24)
	if err != nil {
		return Config{}, err
	}
	requestTimeoutSeconds, err := positiveIntFromEnv("REQUEST_TIMEOUT_SECONDS", 10)
	if err != nil {
		return Config{}, err
	}
	similarJobsCacheTTLSeconds, err := positiveIntFromEnv("SIMILAR_JOBS_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return Config{}, err
	}
	bcryptCost, err := LoadBcryptCost()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:                port,
		Env:                 env,
		Database:            database,
		JwtSigningKey:       jwtSigningKeyBytes,
		TokenTTL:            time.Duration(tokenTTLHours) * time.Hour,
		RequestTimeout:      time.Duration(requestTimeoutSeconds) * time.Second,
		SimilarJobsCacheTTL: time.Duration(similarJobsCacheTTLSeconds) * time.Second,
		BcryptCost:          bcryptCost,
		SentryDSN:           os.Getenv("SENTRY_DSN"),
	}, nil
}

func positiveIntFromEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "could not convert %s to int", key)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero", key)
	}
	return n, nil
}
