package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores database connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores broker and topic settings.
type Kafka struct {
	Brokers            []string
	ShopStatusTopic    string
	NotificationsTopic string
	GroupID            string
}

// Assignment stores the tunables of the assignment engine.
type Assignment struct {
	AcceptWindow  time.Duration
	SweepInterval time.Duration
}

// Otp stores hand-off code settings.
type Otp struct {
	TTL time.Duration
}

// Config stores the service settings.
type Config struct {
	Port       int
	DB         DB
	Kafka      Kafka
	Assignment Assignment
	Otp        Otp
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:       DefaultPort(),
		DB:         DefaultDB(),
		Kafka:      DefaultKafka(),
		Assignment: DefaultAssignment(),
		Otp:        DefaultOtp(),
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.DB.Host = envStr("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = envStr("DB_PORT", cfg.DB.Port)
	cfg.DB.User = envStr("DB_USER", cfg.DB.User)
	cfg.DB.Pass = envStr("DB_PASS", cfg.DB.Pass)
	cfg.DB.Name = envStr("DB_NAME", cfg.DB.Name)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	cfg.Kafka.ShopStatusTopic = envStr("KAFKA_SHOP_STATUS_TOPIC", cfg.Kafka.ShopStatusTopic)
	cfg.Kafka.NotificationsTopic = envStr("KAFKA_NOTIFICATIONS_TOPIC", cfg.Kafka.NotificationsTopic)
	cfg.Kafka.GroupID = envStr("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	cfg.Assignment.AcceptWindow = envDuration("ASSIGN_ACCEPT_WINDOW", cfg.Assignment.AcceptWindow)
	cfg.Assignment.SweepInterval = envDuration("ASSIGN_SWEEP_INTERVAL", cfg.Assignment.SweepInterval)
	cfg.Otp.TTL = envDuration("OTP_TTL", cfg.Otp.TTL)

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Assignment.AcceptWindow <= 0 {
		return nil, fmt.Errorf("invalid accept window: %s", cfg.Assignment.AcceptWindow)
	}
	if cfg.Otp.TTL <= 0 {
		return nil, fmt.Errorf("invalid otp ttl: %s", cfg.Otp.TTL)
	}
	return cfg, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
