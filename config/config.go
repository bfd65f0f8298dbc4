package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port               string
	PostgresUser       string
	PostgresPassword   string
	PostgresDB         string
	PostgresHost       string
	PostgresPort       string
	PostgresSSLMode    string
	PostgresTimeZone   string
	RedisURL           string
	KafkaBrokers       string
	OrderEventsTopic   string
	PaymentEventsTopic string
	GatewayBaseURL     string
	GatewayKeyID       string
	GatewayKeySecret   string
	GatewayCurrency    string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8085"),
		PostgresUser:       os.Getenv("POSTGRES_USER"),
		PostgresPassword:   os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:         os.Getenv("POSTGRES_DB"),
		PostgresHost:       os.Getenv("POSTGRES_HOST"),
		PostgresPort:       getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:    getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone:   getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		OrderEventsTopic:   getEnv("ORDER_EVENTS_TOPIC", "order.events"),
		PaymentEventsTopic: getEnv("PAYMENT_EVENTS_TOPIC", "payment.events"),
		GatewayBaseURL:     getEnv("GATEWAY_BASE_URL", "https://api.razorpay.com"),
		GatewayKeyID:       os.Getenv("GATEWAY_KEY_ID"),
		GatewayKeySecret:   os.Getenv("GATEWAY_KEY_SECRET"),
		GatewayCurrency:    getEnv("GATEWAY_CURRENCY", "INR"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.GatewayKeyID == "" || cfg.GatewayKeySecret == "" {
		return nil, fmt.Errorf("GATEWAY_KEY_ID and GATEWAY_KEY_SECRET are required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
