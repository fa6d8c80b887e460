// Package config предоставляет структуры и функции для загрузки и проверки конфига.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrInvalidConfiguration — конфигурация токенов заполнена некорректно:
// пустой секрет или неположительный срок жизни. Это ошибка вызывающей
// стороны, на старте приложение с таким конфигом не поднимается.
var ErrInvalidConfiguration = errors.New("invalid token configuration")

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQConnection      `yaml:"rabbitmq_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Sweeper                 `yaml:"sweeper"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQConnection структура для настройки подключения к rabbitmq.
type RabbitMQConnection struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"10"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
}

// JWTToken структура с настройками выпуска токенов.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
}

// Sweeper структура с настройками фоновой проверки истёкших подписок.
type Sweeper struct {
	SweepInterval  time.Duration `yaml:"sweep_interval" env-default:"1h"`
	MetricsAddress string        `yaml:"metrics_address" env-default:"localhost:9091"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс,
// если файл отсутствует или не читается.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if err := cfg.JWTToken.Validate(); err != nil {
		log.Fatalf("bad config: %s", err)
	}
	return &cfg
}

// Validate проверяет настройки токенов: секрет не пуст, TTL положителен.
func (j JWTToken) Validate() error {
	if j.JWTSecretKey == "" {
		return fmt.Errorf("%w: jwt_secret_key is empty", ErrInvalidConfiguration)
	}
	if j.TokenTTL <= 0 {
		return fmt.Errorf("%w: token_ttl must be positive, got %s", ErrInvalidConfiguration, j.TokenTTL)
	}
	return nil
}
