package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stayhub/service-booking/pkg/database"
)

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker and consumer-group configuration.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// SweepConfig controls the scheduled status sweeper.
type SweepConfig struct {
	Interval       time.Duration
	CheckInGrace   time.Duration
	CheckOutCutoff time.Duration
}

// RefundConfig is the cancellation refund policy. A cancellation at least
// FullRefundCutoff before check-in refunds everything; later cancellations
// refund PartialRefundPercent of the total.
type RefundConfig struct {
	FullRefundCutoff     time.Duration
	PartialRefundPercent int
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    database.PostgresConfig
	JWTConfig   JWTConfig
	KafkaConfig KafkaConfig
	Sweep       SweepConfig
	Refund      RefundConfig
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8083")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", "dev-secret")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "stayhub-")
	v.SetDefault("SWEEP_INTERVAL", "5m")
	v.SetDefault("SWEEP_CHECKIN_GRACE", "6h")
	v.SetDefault("SWEEP_CHECKOUT_CUTOFF", "12h")
	v.SetDefault("REFUND_FULL_CUTOFF", "24h")
	v.SetDefault("REFUND_PARTIAL_PERCENT", 50)

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{Secret: v.GetString("JWT_SECRET")},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Sweep: SweepConfig{
			Interval:       v.GetDuration("SWEEP_INTERVAL"),
			CheckInGrace:   v.GetDuration("SWEEP_CHECKIN_GRACE"),
			CheckOutCutoff: v.GetDuration("SWEEP_CHECKOUT_CUTOFF"),
		},
		Refund: RefundConfig{
			FullRefundCutoff:     v.GetDuration("REFUND_FULL_CUTOFF"),
			PartialRefundPercent: v.GetInt("REFUND_PARTIAL_PERCENT"),
		},
	}, nil
}
