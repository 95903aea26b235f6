package config

import (
	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Thornode  ThornodeConfig  `mapstructure:"thornode"`
	Midgard   MidgardConfig   `mapstructure:"midgard"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Indexer   IndexerConfig   `mapstructure:"indexer"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ThornodeConfig points at the authoritative node registry.
type ThornodeConfig struct {
	BaseUrl        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// MidgardConfig points at the transfer event feed.
type MidgardConfig struct {
	BaseUrl        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	BatchLimit     int    `mapstructure:"batch_limit"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NotifyConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Queue      string `mapstructure:"queue"`       // redis list key
	WebhookUrl string `mapstructure:"webhook_url"` // optional dispatch target
}

// IndexerConfig drives the memo indexing loop.
type IndexerConfig struct {
	Interval             int            `mapstructure:"interval"` // seconds between ticks
	Concurrency          int            `mapstructure:"concurrency"`
	MinUserMessageAmount int64          `mapstructure:"min_user_message_amount"` // base units, gates USER chat
	Sources              []SourceConfig `mapstructure:"sources"`
}

// SourceConfig is one watched inbound address with its memo templates.
type SourceConfig struct {
	Address   string           `mapstructure:"address"`
	Templates []TemplateConfig `mapstructure:"templates"`
}

// TemplateConfig maps memo prefixes to a parser. HeightFrom/HeightTo bound
// the heights at which the template applies (0 means unbounded), which is
// how protocol versions are activated per source.
type TemplateConfig struct {
	Prefixes   []string `mapstructure:"prefixes"`
	Parser     string   `mapstructure:"parser"`
	MinAmount  int64    `mapstructure:"min_amount"` // base units required on the transfer
	HeightFrom int64    `mapstructure:"height_from"`
	HeightTo   int64    `mapstructure:"height_to"`
}

// WhitelistConfig drives the status reconciliation loop.
type WhitelistConfig struct {
	Interval        int `mapstructure:"interval"`         // seconds between cycles
	InactivityHours int `mapstructure:"inactivity_hours"` // pending -> rejected window
	DelayMs         int `mapstructure:"delay_ms"`         // pause between record updates
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // stdout, file
	File   string `mapstructure:"file"`
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/thorchain-indexer")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "thorchain_indexer")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("thornode.base_url", "https://thornode-v2.ninerealms.com")
	viper.SetDefault("thornode.timeout_seconds", 10)
	viper.SetDefault("midgard.base_url", "https://midgard.ninerealms.com")
	viper.SetDefault("midgard.timeout_seconds", 15)
	viper.SetDefault("midgard.batch_limit", 600)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("notify.enabled", false)
	viper.SetDefault("notify.queue", "notifications")
	viper.SetDefault("indexer.interval", 60)
	viper.SetDefault("indexer.concurrency", 4)
	viper.SetDefault("indexer.min_user_message_amount", 10000000)
	viper.SetDefault("whitelist.interval", 180)
	viper.SetDefault("whitelist.inactivity_hours", 72)
	viper.SetDefault("whitelist.delay_ms", 500)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
