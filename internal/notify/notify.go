// Package notify は注文イベントを設定済みの送信先へ配信する。
package notify

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/nao1215/orderly/pkg/event"
	"github.com/nao1215/orderly/pkg/httpclient"
	"github.com/pkg/errors"
)

// Sink はイベントの送信先。
type Sink interface {
	Publish(ctx context.Context, e *event.Event) error
}

// Webhook はイベントをJSONでPOSTする送信先。
type Webhook struct {
	client  *httpclient.Client
	timeout time.Duration
}

// NewWebhook はurlへPOSTするWebhookを生成する。
func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		client:  httpclient.New(url, httpclient.WithTimeout(timeout), httpclient.WithHeader("User-Agent", "orderly-webhook")),
		timeout: timeout,
	}
}

// Publish はイベントを送信する。呼び出し元のリクエストが終了しても送信を続ける。
func (w *Webhook) Publish(ctx context.Context, e *event.Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()

	return errors.Wrapf(w.client.PostJSON(ctx, "", e, nil), "Webhookへのイベント %s の送信に失敗", e.EventType)
}

// Multi は全ての送信先へ順に配信する。1つが失敗しても残りへの配信は続ける。
type Multi []Sink

// Publish は全ての送信先へ配信し、失敗をまとめて返す。
func (m Multi) Publish(ctx context.Context, e *event.Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
