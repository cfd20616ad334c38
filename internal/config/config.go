package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	HTTPAddr string
	DBDSN    string

	SessionDriver string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	ClassifierBaseURL string
	ClassifierModel   string
	ClassifierAPIKey  string
	ClassifierTimeout time.Duration

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	KeywordTablePath string
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := ServerConfig{
		HTTPAddr: getenvDefault("TURNERO_HTTP_ADDR", ":9020"),
		DBDSN:    os.Getenv("DB_DSN"),

		SessionDriver: getenvDefault("SESSION_DRIVER", "memory"),
		RedisAddr:     getenvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvIntDefault("REDIS_DB", 0),
		SessionTTL:    time.Duration(getenvIntDefault("SESSION_TTL_HOURS", 24)) * time.Hour,

		ClassifierBaseURL: strings.TrimRight(os.Getenv("CLASSIFIER_BASE_URL"), "/"),
		ClassifierModel:   getenvDefault("CLASSIFIER_MODEL", ""),
		ClassifierAPIKey:  os.Getenv("CLASSIFIER_API_KEY"),
		ClassifierTimeout: time.Duration(getenvIntDefault("CLASSIFIER_TIMEOUT_SECONDS", 3)) * time.Second,

		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    getenvDefault("TURNERO_MQTT_CLIENT_ID", "turnero-server"),
		MQTTUsername:    os.Getenv("MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix: getenvDefault("MQTT_TOPIC_PREFIX", "turnero"),

		KeywordTablePath: os.Getenv("KEYWORD_TABLE_PATH"),
	}

	if cfg.DBDSN == "" {
		return ServerConfig{}, fmt.Errorf("DB_DSN is required")
	}
	if cfg.SessionDriver != "memory" && cfg.SessionDriver != "redis" {
		return ServerConfig{}, fmt.Errorf("SESSION_DRIVER must be memory or redis, got %q", cfg.SessionDriver)
	}

	return cfg, nil
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}
