package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config はアプリケーション設定を保持する
type Config struct {
	// NetSapiens API接続設定
	APIHost      string `envconfig:"NS_API_HOST" required:"true"`
	APIKey       string `envconfig:"NS_API_KEY" required:"true"`
	APIPageLimit int    `envconfig:"NS_API_PAGE_LIMIT" default:"1000"`

	// Webhookサーバー設定
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Valkey接続設定
	RedisHost string `envconfig:"REDIS_HOST" required:"true"`
	RedisPort string `envconfig:"REDIS_PORT" required:"true"`
	RedisPass string `envconfig:"REDIS_PASS"`

	// ディレクトリキャッシュ設定
	CacheEnabled     bool          `envconfig:"CACHE_ENABLED" default:"true"`
	CacheTTL         time.Duration `envconfig:"CACHE_TTL" default:"300s"`
	CachePurgeChance int           `envconfig:"CACHE_PURGE_CHANCE" default:"100"`

	// 音声・言語デフォルト
	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"en-US"`
	DefaultVoice    string `envconfig:"DEFAULT_VOICE" default:"female"`

	// ディレクトリ動作デフォルト
	DefaultMaxDigits  int `envconfig:"DEFAULT_MAX_DIGITS" default:"4"`
	DefaultMaxResults int `envconfig:"DEFAULT_MAX_RESULTS" default:"8"`

	// 0キーで転送するオペレーター内線（空なら無効）
	OperatorExtension string `envconfig:"OPERATOR_EXTENSION"`

	// *キーでの退出動作
	ExitURL    string `envconfig:"EXIT_URL"`
	ExitAction string `envconfig:"EXIT_ACTION" default:"forward"`

	// ログ設定
	LogLevel       string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogMaskNumbers bool   `envconfig:"LOG_MASK_NUMBERS" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ValkeyAddr はValkey接続アドレスを "host:port" 形式で返す
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	if c.APIPageLimit < 1 || c.APIPageLimit > MaxAPIPageLimit {
		return fmt.Errorf("NS_API_PAGE_LIMIT must be between 1 and %d", MaxAPIPageLimit)
	}
	if c.DefaultMaxDigits < MinGatherDigits || c.DefaultMaxDigits > MaxGatherDigits {
		return fmt.Errorf("DEFAULT_MAX_DIGITS must be between %d and %d", MinGatherDigits, MaxGatherDigits)
	}
	if c.DefaultMaxResults < 1 || c.DefaultMaxResults > MaxMenuResults {
		return fmt.Errorf("DEFAULT_MAX_RESULTS must be between 1 and %d", MaxMenuResults)
	}
	switch strings.ToLower(c.ExitAction) {
	case "forward", "hangup", "restart":
	default:
		return fmt.Errorf("EXIT_ACTION must be forward, hangup, or restart")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return nil
}
