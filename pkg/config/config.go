package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Favorites  FavoritesConfig  `mapstructure:"favorites"`
	Session    SessionConfig    `mapstructure:"session"`
	Inactivity InactivityConfig `mapstructure:"inactivity"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type ChatConfig struct {
	URL                  string        `mapstructure:"url"`
	MaxReconnectAttempts int           `mapstructure:"maxReconnectAttempts"`
	ReconnectBackoff     time.Duration `mapstructure:"reconnectBackoff"`
}

type FavoritesConfig struct {
	BaseURL        string        `mapstructure:"baseUrl"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

type SessionConfig struct {
	TokenKey string        `mapstructure:"tokenKey"`
	TTL      time.Duration `mapstructure:"ttl"`
	Redis    RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type InactivityConfig struct {
	Limit     time.Duration `mapstructure:"limit"`
	Warning   time.Duration `mapstructure:"warning"`
	LoginPath string        `mapstructure:"loginPath"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("STORESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)

	v.SetDefault("chat.url", "ws://localhost:9000/ws/chat")
	v.SetDefault("chat.maxReconnectAttempts", 5)
	v.SetDefault("chat.reconnectBackoff", 3*time.Second)

	v.SetDefault("favorites.baseUrl", "http://localhost:9000/api")
	v.SetDefault("favorites.requestTimeout", 10*time.Second)

	v.SetDefault("session.tokenKey", "default")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.redis.addr", "")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)

	v.SetDefault("inactivity.limit", 15*time.Minute)
	v.SetDefault("inactivity.warning", 2*time.Minute)
	v.SetDefault("inactivity.loginPath", "/login")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}
