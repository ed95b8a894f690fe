package configuration

import (
	"fmt"
	"os"
	"strings"
	"time"

	"my-site/infrastructure/logger"

	"github.com/spf13/viper"
)

const (
	DefaultChannelID    = "UC1ajCC-_nKsdSMbY95XMucg"
	DefaultCacheKey     = "youtube-rss-leoveio"
	DefaultChannelTitle = "LeoVeio"
	DefaultPort         = 10001
)

type Config struct {
	App       App       `mapstructure:"app"`
	YouTube   YouTube   `mapstructure:"youtube"`
	Media     Media     `mapstructure:"media"`
	RateLimit RateLimit `mapstructure:"rateLimit"`
}

type App struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	LogLevel       string   `mapstructure:"logLevel"`
}

type YouTube struct {
	ChannelID    string `mapstructure:"channelId"`
	FeedURL      string `mapstructure:"feedUrl"`
	CacheKey     string `mapstructure:"cacheKey"`
	ChannelTitle string `mapstructure:"channelTitle"`
	UserAgent    string `mapstructure:"userAgent"`
	// TTLSeconds is the default freshness window of a cached feed.
	TTLSeconds      int           `mapstructure:"ttlSeconds"`
	FetchTimeout    time.Duration `mapstructure:"fetchTimeout"`
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
	// FetchItems is how many entries are parsed into the cache on every upstream fetch.
	FetchItems int `mapstructure:"fetchItems"`
}

type Media struct {
	// Backend is "fs" (default) or "minio".
	Backend   string `mapstructure:"backend"`
	Root      string `mapstructure:"root"`
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	UseSSL    bool   `mapstructure:"useSSL"`
}

type RateLimit struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// TTL returns the default cache TTL as a duration.
func (y YouTube) TTL() time.Duration {
	return time.Duration(y.TTLSeconds) * time.Second
}

// Load reads config[-ENV].json (optional) from the working directory or its parents,
// then applies environment overrides. Env files must be loaded beforehand, see LoadEnvFromFile.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName())
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Debug("Config file not found, using defaults and environment")
		} else {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	bindEnv(v)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	normalize(&c)

	logger.GetLogger().WithFields(map[string]interface{}{
		"config":     v.ConfigFileUsed(),
		"port":       c.App.Port,
		"ttlSeconds": c.YouTube.TTLSeconds,
		"media":      c.Media.Backend,
	}).Info("Config set up successfully")
	return &c, nil
}

func configName() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", DefaultPort)
	v.SetDefault("app.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("app.logLevel", "debug")

	v.SetDefault("youtube.channelId", DefaultChannelID)
	v.SetDefault("youtube.cacheKey", DefaultCacheKey)
	v.SetDefault("youtube.channelTitle", DefaultChannelTitle)
	v.SetDefault("youtube.userAgent", "LeoVeio-Site/1.0")
	v.SetDefault("youtube.ttlSeconds", 300)
	v.SetDefault("youtube.fetchTimeout", 10*time.Second)
	v.SetDefault("youtube.cleanupInterval", 10*time.Minute)
	v.SetDefault("youtube.fetchItems", 20)

	v.SetDefault("media.backend", "fs")
	v.SetDefault("media.root", "public")

	v.SetDefault("rateLimit.rps", 5.0)
	v.SetDefault("rateLimit.burst", 20)
}

// bindEnv maps the flat environment variables used in deployments onto config keys.
// YT_RSS_TTL wins over NEXT_PUBLIC_YT_RSS_TTL, which the frontend build shares.
func bindEnv(v *viper.Viper) {
	bindings := map[string][]string{
		"app.port":                {"APP_PORT", "PORT"},
		"app.logLevel":            {"LOG_LEVEL"},
		"youtube.channelId":       {"YOUTUBE_CHANNEL_ID"},
		"youtube.feedUrl":         {"YOUTUBE_FEED_URL"},
		"youtube.cacheKey":        {"YOUTUBE_CACHE_KEY"},
		"youtube.channelTitle":    {"YOUTUBE_CHANNEL_TITLE"},
		"youtube.ttlSeconds":      {"YT_RSS_TTL", "NEXT_PUBLIC_YT_RSS_TTL"},
		"youtube.fetchTimeout":    {"YT_RSS_FETCH_TIMEOUT"},
		"youtube.cleanupInterval": {"YT_RSS_CLEANUP_INTERVAL"},
		"media.backend":           {"MEDIA_BACKEND"},
		"media.root":              {"MEDIA_ROOT"},
		"media.endpoint":          {"S3_ENDPOINT"},
		"media.bucket":            {"S3_BUCKET"},
		"media.accessKey":         {"S3_ACCESS_KEY"},
		"media.secretKey":         {"S3_SECRET_KEY"},
		"media.useSSL":            {"S3_USE_SSL"},
		"rateLimit.rps":           {"RATE_LIMIT_RPS"},
		"rateLimit.burst":         {"RATE_LIMIT_BURST"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		_ = v.BindEnv(args...)
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		v.Set("app.allowedOrigins", splitList(origins))
	}
}

func normalize(c *Config) {
	if c.App.Port <= 0 {
		c.App.Port = DefaultPort
	}
	if c.YouTube.ChannelID == "" {
		c.YouTube.ChannelID = DefaultChannelID
	}
	if c.YouTube.FeedURL == "" {
		c.YouTube.FeedURL = "https://www.youtube.com/feeds/videos.xml?channel_id=" + c.YouTube.ChannelID
	}
	if c.YouTube.TTLSeconds <= 0 {
		c.YouTube.TTLSeconds = 300
	}
	if c.YouTube.FetchTimeout <= 0 {
		c.YouTube.FetchTimeout = 10 * time.Second
	}
	if c.YouTube.CleanupInterval <= 0 {
		c.YouTube.CleanupInterval = 10 * time.Minute
	}
	if c.YouTube.FetchItems <= 0 {
		c.YouTube.FetchItems = 20
	}
	c.Media.Backend = strings.ToLower(strings.TrimSpace(c.Media.Backend))
	if c.Media.Backend == "" {
		c.Media.Backend = "fs"
	}
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
