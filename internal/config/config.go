// Package config は環境変数からサービス設定を読み込む。
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config はorderlyサービスの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `envconfig:"PORT" default:"8080"`
	// DatabasePath はSQLiteデータベースファイルのパス。
	DatabasePath string `envconfig:"DATABASE_PATH" default:"/data/orderly.db"`
	// JWTSecret はトークン署名用の秘密鍵。
	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-key"`
	// JWTIssuer はトークンのiss クレーム。
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"orderly"`
	// TokenTTL はトークンの有効期間。
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"10h"`
	// AllowedOrigins はCORSで許可するオリジン（カンマ区切り）。
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// LogFormat はログ形式（text または json）。
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	// AMQPURL は注文イベントを送信するRabbitMQの接続先。空の場合は送信しない。
	AMQPURL string `envconfig:"AMQP_URL"`
	// AMQPExchange は注文イベントを送信するtopic exchange名。
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"orders_topic"`
	// WebhookURL は注文イベントをPOSTするURL。空の場合は送信しない。
	WebhookURL string `envconfig:"ORDER_WEBHOOK_URL"`
	// WebhookTimeout はWebhookへの1回の送信にかける上限時間。
	WebhookTimeout time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"5s"`
	// EventQueueSize は外部送信先へ配信待ちにできるイベントの最大数。
	EventQueueSize int `envconfig:"EVENT_QUEUE_SIZE" default:"256"`
	// ShutdownTimeout はグレースフルシャットダウンの待ち時間。
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load は環境変数から設定を読み込み、検証する。
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "環境変数の読み込みに失敗")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値の整合性を検証する。
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRETが空です")
	}
	if c.TokenTTL <= 0 {
		return errors.Errorf("TOKEN_TTLは正の値である必要があります: %s", c.TokenTTL)
	}
	if c.WebhookTimeout <= 0 {
		return errors.Errorf("WEBHOOK_TIMEOUTは正の値である必要があります: %s", c.WebhookTimeout)
	}
	if c.EventQueueSize <= 0 {
		return errors.Errorf("EVENT_QUEUE_SIZEは正の値である必要があります: %d", c.EventQueueSize)
	}
	if c.Port == "" {
		return errors.New("PORTが空です")
	}
	if c.DatabasePath == "" {
		return errors.New("DATABASE_PATHが空です")
	}
	return nil
}

// Addr はHTTPサーバーのリッスンアドレスを返す。
func (c *Config) Addr() string {
	return ":" + c.Port
}
