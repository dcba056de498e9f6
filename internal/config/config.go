package config

import (
	"crypto/rsa"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	JWTPrivateKey     *rsa.PrivateKey
	JWTPublicKey      *rsa.PublicKey
	DatabaseURL       string
	RedisAddress      string
	RedisPassword     string
	RabbitMQURL       string
	ScheduleQueueName string
	Port              string
}

func Load() *Config {
	privateKeyPath := getEnv("PRIVATE_KEY_PATH", "/etc/certs/private.pem")
	privateKey, err := loadPrivateKey(privateKeyPath)
	if err != nil {
		panic("Failed to load private key: " + err.Error())
	}

	publicKeyPath := getEnv("PUBLIC_KEY_PATH", "/etc/certs/public.pem")
	publicKey, err := loadPublicKey(publicKeyPath)
	if err != nil {
		panic("Failed to load public key: " + err.Error())
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		panic("REDIS_ADDRESS environment variable is required")
	}

	return &Config{
		JWTPrivateKey:     privateKey,
		JWTPublicKey:      publicKey,
		DatabaseURL:       dbURL,
		RedisAddress:      redisAddr,
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
		ScheduleQueueName: getEnv("SCHEDULE_QUEUE_NAME", "schedules"),
		Port:              getEnv("PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(keyData)
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(keyData)
}
