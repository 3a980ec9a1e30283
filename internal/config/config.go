package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
	JWT      JWTConfig
	Mpesa    MpesaConfig
	Kafka    KafkaConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// DSN renders the keyword/value connection string accepted by pgx.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	TTL      time.Duration
}

type HTTPConfig struct {
	Addr string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type MpesaConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
	Timeout        time.Duration
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

// minJWTSecretLen matches the shortest HS256 key the token issuer accepts.
const minJWTSecretLen = 32

var defaults = map[string]any{
	"db_host":               "localhost",
	"db_port":               "5432",
	"db_user":               "app_user",
	"db_password":           "postgres_password",
	"db_name":               "retailshop",
	"db_sslmode":            "disable",
	"db_max_conns":          10,
	"redis_url":             "localhost:6379",
	"redis_password":        "",
	"redis_db":              0,
	"cache_ttl":             "5m",
	"http_addr":             ":8080",
	"jwt_secret":            "",
	"jwt_ttl":               "24h",
	"mpesa_base_url":        "https://sandbox.safaricom.co.ke",
	"mpesa_consumer_key":    "",
	"mpesa_consumer_secret": "",
	"mpesa_shortcode":       "174379",
	"mpesa_passkey":         "",
	"mpesa_callback_url":    "",
	"mpesa_timeout":         "15s",
	"kafka_brokers":         "",
	"kafka_order_topic":     "retailshop.orders",
}

// LoadConfig reads an optional .env file and then the process environment.
// A missing .env is not an error; every key has a default.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
			MaxConns: v.GetInt32("db_max_conns"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("redis_url"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
			TTL:      v.GetDuration("cache_ttl"),
		},
		HTTP: HTTPConfig{
			Addr: v.GetString("http_addr"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt_secret"),
			TTL:    v.GetDuration("jwt_ttl"),
		},
		Mpesa: MpesaConfig{
			BaseURL:        strings.TrimRight(v.GetString("mpesa_base_url"), "/"),
			ConsumerKey:    v.GetString("mpesa_consumer_key"),
			ConsumerSecret: v.GetString("mpesa_consumer_secret"),
			ShortCode:      v.GetString("mpesa_shortcode"),
			Passkey:        v.GetString("mpesa_passkey"),
			CallbackURL:    v.GetString("mpesa_callback_url"),
			Timeout:        v.GetDuration("mpesa_timeout"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(v.GetString("kafka_brokers")),
			OrderTopic: v.GetString("kafka_order_topic"),
		},
	}

	if len(cfg.JWT.Secret) < minJWTSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", minJWTSecretLen, len(cfg.JWT.Secret))
	}
	if cfg.Mpesa.Timeout <= 0 {
		return nil, fmt.Errorf("MPESA_TIMEOUT must be positive, got %s", cfg.Mpesa.Timeout)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
