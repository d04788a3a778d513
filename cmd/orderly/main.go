// 注文サービスのエントリポイント。
// serveでHTTP APIを起動し、migrateでスキーマを適用し、create-staffでSTAFFアカウントを作成する。
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nao1215/orderly/internal/auth"
	"github.com/nao1215/orderly/internal/config"
	"github.com/nao1215/orderly/internal/domain"
	"github.com/nao1215/orderly/internal/notify"
	"github.com/nao1215/orderly/internal/order"
	"github.com/nao1215/orderly/internal/server"
	"github.com/nao1215/orderly/internal/store"
	"github.com/nao1215/orderly/pkg/mq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "orderly",
		Usage: "飲食店向けの注文受付サービス",
		Before: func(*cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return setupLogging(cfg)
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "HTTP APIを起動する",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "データベースにスキーマを適用する",
				Action: migrate,
			},
			{
				Name:  "create-staff",
				Usage: "STAFFアカウントを作成する",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true, Usage: "ユーザー名"},
					&cli.StringFlag{Name: "password", Required: true, Usage: "パスワード（8文字以上）", EnvVars: []string{"STAFF_PASSWORD"}},
				},
				Action: createStaff,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("orderlyの実行に失敗")
	}
}

// setupLogging はログの形式とレベルを設定する。
func setupLogging(cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "LOG_LEVEL %q が不正です", cfg.LogLevel)
	}
	log.SetLevel(level)
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// serve はスキーマを適用してHTTP APIを起動する。SIGINT/SIGTERMで停止する。
func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.OpenAndMigrate(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	publisher, closePublisher, err := buildPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	srv := server.New(cfg, db, publisher)
	log.WithField("addr", cfg.Addr()).Info("注文サービスを起動します")
	if err := srv.Run(ctx, cfg.Addr(), cfg.ShutdownTimeout); err != nil {
		return errors.Wrap(err, "HTTPサーバーが異常終了しました")
	}
	log.Info("注文サービスを停止しました")
	return nil
}

// buildPublisher は設定された送信先から注文イベントのPublisherを組み立てる。
// 送信先がない場合はnilを返す。
func buildPublisher(ctx context.Context, cfg *config.Config) (order.Publisher, func(), error) {
	var (
		sinks   notify.Multi
		closers []func()
	)
	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}

	if cfg.AMQPURL != "" {
		p, err := mq.Dial(ctx, cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, p)
		closers = append(closers, func() {
			if err := p.Close(); err != nil {
				log.WithError(err).Warn("RabbitMQ接続のクローズに失敗")
			}
		})
		log.WithField("exchange", cfg.AMQPExchange).Info("注文イベントをRabbitMQへ送信します")
	}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.WebhookURL, cfg.WebhookTimeout))
		log.WithField("url", cfg.WebhookURL).Info("注文イベントをWebhookへ送信します")
	}

	if len(sinks) == 0 {
		return nil, closeAll, nil
	}
	return sinks, closeAll, nil
}

// migrate はスキーマを適用する。
func migrate(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := store.OpenAndMigrate(c.Context, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	log.WithField("path", cfg.DatabasePath).Info("スキーマを適用しました")
	return nil
}

// createStaff はSTAFFアカウントを作成する。
func createStaff(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	username := strings.TrimSpace(c.String("username"))
	password := c.String("password")
	if err := domain.ValidateCredentials(username, password); err != nil {
		return err
	}

	db, err := store.OpenAndMigrate(c.Context, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	account, err := store.NewAccountStore(db).Create(c.Context, username, hash, domain.RoleStaff)
	if err != nil {
		return errors.Wrapf(err, "STAFFアカウント %s の作成に失敗", username)
	}

	log.WithFields(log.Fields{"id": account.ID, "username": account.Username}).Info("STAFFアカウントを作成しました")
	return nil
}
