package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	SQLite     SQLiteConfig
	Redis      RedisConfig
	Hub        HubConfig
	Analysis   AnalysisConfig
	Compliance ComplianceConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
	RateLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type HubConfig struct {
	BaseURL        string
	Token          string
	RateLimitMS    int
	BatchSize      int
	RequestTimeout int
}

type AnalysisConfig struct {
	BSIThreshold     float64
	UseReferenceData bool
}

type ComplianceConfig struct {
	EvidenceDir string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/risk-sentinel")

	viper.SetEnvPrefix("RISK_SENTINEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 4194304)
	viper.SetDefault("server.rateLimit", 120)

	viper.SetDefault("sqlite.path", "./data/sentinel.db")

	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 300)

	viper.SetDefault("hub.baseURL", "https://huggingface.co")
	viper.SetDefault("hub.rateLimitMS", 1000)
	viper.SetDefault("hub.batchSize", 100)
	viper.SetDefault("hub.requestTimeout", 15)

	viper.SetDefault("analysis.bsiThreshold", 0.15)
	viper.SetDefault("analysis.useReferenceData", true)

	viper.SetDefault("compliance.evidenceDir", "./evidence")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
