// Package mq はRabbitMQのtopic exchangeへイベントを送信するPublisherを提供する。
package mq

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/nao1215/orderly/pkg/event"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// dialAttempts はコンテナ起動直後などで接続できない場合の試行回数。
const (
	dialAttempts = 5
	dialInterval = 2 * time.Second
)

// channel はPublisherが使うAMQPチャネルの操作。
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher はイベントをtopic exchangeへ永続メッセージとして送信する。
type Publisher struct {
	mu       sync.Mutex
	conn     io.Closer
	ch       channel
	exchange string
}

// Dial はRabbitMQに接続し、exchangeをtopic型で宣言する。
func Dial(ctx context.Context, url, exchange string) (*Publisher, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	for i := range dialAttempts {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.WithError(err).WithField("attempt", i+1).Warn("RabbitMQへの接続に失敗")
		if i == dialAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dialInterval):
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "RabbitMQに接続できません")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "チャネルの作成に失敗")
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrapf(err, "exchange %s の宣言に失敗", exchange)
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish はイベントをJSONで送信する。ルーティングキーはイベント種別から決まる。
func (p *Publisher) Publish(ctx context.Context, e *event.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "イベントのシリアライズに失敗")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, e.EventType.RoutingKey(), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    e.ID,
		Type:         string(e.EventType),
		Timestamp:    e.CreatedAt,
		Body:         body,
	})
	return errors.Wrapf(err, "イベント %s の送信に失敗", e.ID)
}

// Close はチャネルと接続を閉じる。
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	chErr := p.ch.Close()
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}
	return chErr
}
