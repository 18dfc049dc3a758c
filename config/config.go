package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type PostgreSQLConfig struct {
	DBHost     string
	DBName     string
	DBPort     string
	DBUsername string
	DBPassword string
}

type KafkaConfig struct {
	BrokerAddress string
	BrokerTopic   string
}

type MidtransConfig struct {
	ServerKey string
}

type TracingConfig struct {
	CollectorHost string
}

type ReconcileConfig struct {
	OrderIntervalSeconds int
	ListIntervalSeconds  int
	BackendBaseURL       string
}

type Config struct {
	ServicePort      string
	MetricsPort      string
	Environment      string
	PostgreSQLConfig PostgreSQLConfig
	KafkaConfig      KafkaConfig
	JWTSecret        string
	MidtransConfig   MidtransConfig
	TracingConfig    TracingConfig
	ReconcileConfig  ReconcileConfig
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	conf := Config{
		ServicePort: os.Getenv("SERVICE_PORT"),
		MetricsPort: os.Getenv("METRICS_PORT"),
		Environment: os.Getenv("ENVIRONMENT"),
		PostgreSQLConfig: PostgreSQLConfig{
			DBHost:     os.Getenv("DB_HOST"),
			DBName:     os.Getenv("DB_NAME"),
			DBPort:     os.Getenv("DB_PORT"),
			DBUsername: os.Getenv("DB_USERNAME"),
			DBPassword: os.Getenv("DB_PASSWORD"),
		},
		KafkaConfig: KafkaConfig{
			BrokerAddress: os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:   os.Getenv("BROKER_TOPIC"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		MidtransConfig: MidtransConfig{
			ServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
		ReconcileConfig: ReconcileConfig{
			OrderIntervalSeconds: getEnvInt("RECONCILE_ORDER_INTERVAL_SECONDS", 3),
			ListIntervalSeconds:  getEnvInt("RECONCILE_LIST_INTERVAL_SECONDS", 10),
			BackendBaseURL:       os.Getenv("BACKEND_BASE_URL"),
		},
	}

	return &conf
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}

	return parsed
}
