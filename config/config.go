package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/model"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Shop     ShopConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type StoreConfig struct {
	Driver  string // postgres or memory
	Migrate bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    []string
	SaleTopic  string
	OrderTopic string
	GroupID    string
}

type ElasticsearchConfig struct {
	Enabled   bool
	Addresses []string
	Username  string
	Password  string
}

type ShopConfig struct {
	CartExpiryMinutes       int
	OptionTypes             string // Ordered "id:Name" pairs, comma separated
	UseUpsellProducts       bool
	ReserveStockOnAdd       bool
	CartSweepIntervalSecond int
	SessionTTLHours         int
}

func (c ShopConfig) CartExpiry() time.Duration {
	return time.Duration(c.CartExpiryMinutes) * time.Minute
}

func (c ShopConfig) CartSweepInterval() time.Duration {
	return time.Duration(c.CartSweepIntervalSecond) * time.Second
}

func (c ShopConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			GRPCPort: getEnv("GRPC_PORT", ":8082"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Store: StoreConfig{
			Driver:  getEnv("STORE_DRIVER", "postgres"),
			Migrate: getEnvBool("STORE_MIGRATE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "cartridge"),
			Password:        getEnv("POSTGRES_PASSWORD", "cartridge"),
			DBName:          getEnv("POSTGRES_DB", "cartridge"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:    getEnvBool("KAFKA_ENABLED", true),
			Brokers:    getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			SaleTopic:  getEnv("KAFKA_TOPIC_SALES", "shop.sales"),
			OrderTopic: getEnv("KAFKA_TOPIC_ORDERS", "shop.orders"),
			GroupID:    getEnv("KAFKA_GROUP_SALES", "cartridge-sales"),
		},
		Elastic: ElasticsearchConfig{
			Enabled:   getEnvBool("ELASTICSEARCH_ENABLED", true),
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Shop: ShopConfig{
			CartExpiryMinutes:       getEnvInt("SHOP_CART_EXPIRY_MINUTES", 30),
			OptionTypes:             getEnv("SHOP_OPTION_TYPES", "1:Size,2:Colour"),
			UseUpsellProducts:       getEnvBool("SHOP_USE_UPSELL_PRODUCTS", true),
			ReserveStockOnAdd:       getEnvBool("SHOP_RESERVE_STOCK_ON_ADD", false),
			CartSweepIntervalSecond: getEnvInt("SHOP_CART_SWEEP_INTERVAL_SECONDS", 300),
			SessionTTLHours:         getEnvInt("SHOP_SESSION_TTL_HOURS", 336),
		},
	}
}

// ParseOptionTypes reads the ordered option type list, e.g. "1:Size,2:Colour".
func ParseOptionTypes(raw string) ([]model.OptionType, error) {
	var types []model.OptionType
	seen := map[int]bool{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idPart, name, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("option type %q: want id:Name", pair)
		}
		id, err := strconv.Atoi(strings.TrimSpace(idPart))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("option type %q: id must be a positive integer", pair)
		}
		if seen[id] {
			return nil, fmt.Errorf("option type id %d listed twice", id)
		}
		seen[id] = true
		types = append(types, model.OptionType{ID: id, Name: strings.TrimSpace(name)})
	}
	return types, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
