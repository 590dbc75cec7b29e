package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Redis      RedisConfig      `yaml:"redis"`
	YooKassa   YooKassaConfig   `yaml:"yookassa"`
	SMS        SMSConfig        `yaml:"sms"`
	Storage    StorageConfig    `yaml:"storage"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address        string        `yaml:"address" env-default:"localhost:8080"`
	Timeout        time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env-default:"http://127.0.0.1:3000"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

// JWTConfig настройка jwt
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// RedisConfig хранилище кодов подтверждения
type RedisConfig struct {
	Address  string `yaml:"address" env-default:"localhost:6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
}

// YooKassaConfig настройки платежного провайдера
type YooKassaConfig struct {
	BaseURL   string        `yaml:"base_url" env-default:"https://api.yookassa.ru/v3"`
	ShopID    string        `yaml:"shop_id" env-required:"true"`
	SecretKey string        `yaml:"-" env:"YOOKASSA_SECRET_KEY" env-required:"true"`
	ReturnURL string        `yaml:"return_url" env-default:"http://127.0.0.1:3000/cart"`
	Currency  string        `yaml:"currency" env-default:"RUB"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

// SMSConfig настройки sms.ru
type SMSConfig struct {
	BaseURL string        `yaml:"base_url" env-default:"https://sms.ru"`
	APIID   string        `yaml:"-" env:"SMS_API_ID" env-required:"true"`
	CodeTTL time.Duration `yaml:"code_ttl" env-default:"5m"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// StorageConfig каталог с изображениями товаров
type StorageConfig struct {
	MediaRoot string `yaml:"media_root" env-default:"./media"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	return &cfg
}

// DSN собирает строку подключения к postgres
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}
