package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "POST_CATALOG_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"
	httpAddrEnv       = "HTTP_ADDR"
	portEnv           = "PORT"
	corsOriginEnv     = "CORS_ORIGIN"
	storageDriverEnv  = "STORAGE_DRIVER"
	catalogPathEnv    = "CATALOG_PATH"
	databaseDSNEnv    = "DATABASE_DSN"
	redisAddrEnv      = "REDIS_ADDR"
	scannerEnv        = "POST_SCANNER"
	elasticURLEnv     = "ELASTICSEARCH_URL"
	kafkaBrokersEnv   = "KAFKA_BROKERS"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	webhookURLEnv     = "SYNC_WEBHOOK_URL"
	webhookKeyEnv     = "SYNC_WEBHOOK_API_KEY"
)

// Storage drivers understood by the app wiring.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Storage       StorageConfig      `yaml:"storage"`
	Source        SourceConfig       `yaml:"source"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Search        SearchConfig       `yaml:"search"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig describes the read API listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// StorageConfig selects and configures the snapshot store.
type StorageConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	DSN       string `yaml:"dsn"`
	Table     string `yaml:"table"`
	RedisAddr string `yaml:"redisAddr"`
	RedisKey  string `yaml:"redisKey"`
}

// SourceConfig picks the post scanner strategy.
type SourceConfig struct {
	Scanner  string `yaml:"scanner"`
	HTMLPath string `yaml:"htmlPath"`
}

// PipelineConfig tunes the transformation defaults.
type PipelineConfig struct {
	DefaultLanguage string        `yaml:"defaultLanguage"`
	DefaultCurrency string        `yaml:"defaultCurrency"`
	ExtractPricing  *bool         `yaml:"extractPricing"`
	IncludeMedia    *bool         `yaml:"includeMedia"`
	FetchTimeout    time.Duration `yaml:"fetchTimeout"`
}

// PricingEnabled reports the effective extractPricing flag.
func (p PipelineConfig) PricingEnabled() bool {
	return p.ExtractPricing == nil || *p.ExtractPricing
}

// MediaEnabled reports the effective includeMedia flag.
func (p PipelineConfig) MediaEnabled() bool {
	return p.IncludeMedia == nil || *p.IncludeMedia
}

// SchedulerConfig defines when configured pages are re-synced.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	RunOnStart     bool           `yaml:"runOnStart"`
	Pages          []PageConfig   `yaml:"pages"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// PageConfig is one page the scheduler keeps in sync.
type PageConfig struct {
	PageURL          string   `yaml:"pageUrl"`
	DisplayName      string   `yaml:"displayName"`
	Description      string   `yaml:"description"`
	CustomCategories []string `yaml:"customCategories"`
	Language         string   `yaml:"language"`
	PostLimit        int      `yaml:"postLimit"`
}

// SearchConfig enables the Elasticsearch product mirror.
type SearchConfig struct {
	Addresses []string `yaml:"addresses"`
	Index     string   `yaml:"index"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

// Enabled reports whether any cluster address is configured.
func (s SearchConfig) Enabled() bool {
	return len(s.Addresses) > 0
}

// NotificationConfig encapsulates outbound channels (Telegram, Kafka, webhook).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	APIBase  string `yaml:"apiBase"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// KafkaConfig describes the sync event topic.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// WebhookConfig points sync summaries at an HTTP endpoint.
type WebhookConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"apiKey"`
}

// Load reads .env files and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	loadDotEnv(".env", ".env.local")

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func loadDotEnv(files ...string) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("config: cannot load %s: %v", file, err)
		}
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(portEnv); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			c.Server.Addr = ":" + v
		}
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(corsOriginEnv); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	if v := os.Getenv(storageDriverEnv); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(catalogPathEnv); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Storage.RedisAddr = v
	}

	if v := os.Getenv(scannerEnv); v != "" {
		c.Source.Scanner = v
	}

	if v := os.Getenv(elasticURLEnv); v != "" {
		c.Search.Addresses = splitList(v)
	}
	if v := os.Getenv(kafkaBrokersEnv); v != "" {
		c.Notifications.Kafka.Brokers = splitList(v)
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Notifications.Webhook.URL = v
	}
	if v := os.Getenv(webhookKeyEnv); v != "" {
		c.Notifications.Webhook.APIKey = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if len(override.Server.CORSOrigins) > 0 {
		base.Server.CORSOrigins = override.Server.CORSOrigins
	}
	if override.Server.ShutdownTimeout > 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = strings.ToLower(override.Storage.Driver)
	}
	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}
	if override.Storage.Table != "" {
		base.Storage.Table = override.Storage.Table
	}
	if override.Storage.RedisAddr != "" {
		base.Storage.RedisAddr = override.Storage.RedisAddr
	}
	if override.Storage.RedisKey != "" {
		base.Storage.RedisKey = override.Storage.RedisKey
	}

	if override.Source.Scanner != "" {
		base.Source.Scanner = override.Source.Scanner
	}
	if override.Source.HTMLPath != "" {
		base.Source.HTMLPath = override.Source.HTMLPath
	}

	if override.Pipeline.DefaultLanguage != "" {
		base.Pipeline.DefaultLanguage = override.Pipeline.DefaultLanguage
	}
	if override.Pipeline.DefaultCurrency != "" {
		base.Pipeline.DefaultCurrency = override.Pipeline.DefaultCurrency
	}
	if override.Pipeline.ExtractPricing != nil {
		base.Pipeline.ExtractPricing = override.Pipeline.ExtractPricing
	}
	if override.Pipeline.IncludeMedia != nil {
		base.Pipeline.IncludeMedia = override.Pipeline.IncludeMedia
	}
	if override.Pipeline.FetchTimeout > 0 {
		base.Pipeline.FetchTimeout = override.Pipeline.FetchTimeout
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.RunOnStart {
		base.Scheduler.RunOnStart = true
	}
	if len(override.Scheduler.Pages) > 0 {
		base.Scheduler.Pages = override.Scheduler.Pages
	}

	if len(override.Search.Addresses) > 0 {
		base.Search = override.Search
	}

	if override.Notifications.Telegram.APIBase != "" {
		base.Notifications.Telegram.APIBase = override.Notifications.Telegram.APIBase
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if len(override.Notifications.Kafka.Brokers) > 0 {
		base.Notifications.Kafka.Brokers = override.Notifications.Kafka.Brokers
	}
	if override.Notifications.Kafka.Topic != "" {
		base.Notifications.Kafka.Topic = override.Notifications.Kafka.Topic
	}
	if override.Notifications.Webhook.URL != "" {
		base.Notifications.Webhook = override.Notifications.Webhook
	}

	return base
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server:  ServerConfig{Addr: ":3001", ShutdownTimeout: 10 * time.Second},
		Storage: StorageConfig{
			Driver:    DriverFile,
			Path:      "data/catalog.json",
			Table:     "catalog_snapshots",
			RedisAddr: "localhost:6379",
			RedisKey:  "postcatalog:snapshot:default",
		},
		Source:    SourceConfig{Scanner: "mock"},
		Pipeline:  PipelineConfig{DefaultLanguage: "bn", DefaultCurrency: "BDT"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Notifications: NotificationConfig{
			Kafka: KafkaConfig{Topic: "catalog-synced"},
		},
	}
}
