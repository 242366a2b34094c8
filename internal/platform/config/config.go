// Package config reads the service configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-level setting of the service. Endpoints may be
// empty; the code path that needs one reports a configuration error when called.
type Config struct {
	Port        string
	ServiceName string
	DatabaseURL string

	KafkaBrokers          string
	KafkaGroupID          string
	PaymentRequestsQueue  string
	PaymentDecisionsQueue string
	ProductionQueue       string
	ReadyOrdersQueue      string

	PaymentMode             string // queue | http
	PaymentServiceURL       string
	ProductionMode          string // queue | webhook
	ProductionWebhookURL    string
	PaymentCancelWebhookURL string

	HTTPClientTimeout time.Duration
	OTLPEndpoint      string
}

// Load reads a .env file when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	timeoutMS, err := strconv.Atoi(getenv("HTTP_CLIENT_TIMEOUT_MS", "5000"))
	if err != nil || timeoutMS <= 0 {
		timeoutMS = 5000
	}
	return Config{
		Port:        getenv("APP_PORT", "8080"),
		ServiceName: getenv("SERVICE_NAME", "ms-pedido"),
		DatabaseURL: getenv("DATABASE_URL", ""),

		KafkaBrokers:          getenv("KAFKA_BROKERS", ""),
		KafkaGroupID:          getenv("KAFKA_GROUP_ID", "ms-pedido"),
		PaymentRequestsQueue:  getenv("QUEUE_PAYMENT_REQUESTS", "pedidos"),
		PaymentDecisionsQueue: getenv("QUEUE_PAYMENT_DECISIONS", "pagamentos"),
		ProductionQueue:       getenv("QUEUE_PRODUCTION", "producao"),
		ReadyOrdersQueue:      getenv("QUEUE_READY_ORDERS", "prontos"),

		PaymentMode:             strings.ToLower(getenv("PAYMENT_MODE", "queue")),
		PaymentServiceURL:       strings.TrimRight(getenv("PAYMENT_SERVICE_URL", ""), "/"),
		ProductionMode:          strings.ToLower(getenv("PRODUCTION_MODE", "queue")),
		ProductionWebhookURL:    strings.TrimRight(getenv("PRODUCTION_WEBHOOK_URL", ""), "/"),
		PaymentCancelWebhookURL: strings.TrimRight(getenv("PAYMENT_CANCEL_WEBHOOK_URL", ""), "/"),

		HTTPClientTimeout: time.Duration(timeoutMS) * time.Millisecond,
		OTLPEndpoint:      getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
