package notify

import (
	"context"
	"time"

	"github.com/nao1215/orderly/pkg/event"
	"github.com/nao1215/orderly/pkg/httpclient"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultQueueSize はキューの長さを指定しない場合の既定値。
	DefaultQueueSize = 256
	// deliverTimeout は1件の配信にかける上限時間。
	deliverTimeout = 30 * time.Second
	// drainTimeout は停止時に残りのイベントを配信する上限時間。
	drainTimeout = 10 * time.Second
)

// ErrQueueFull は配信待ちのイベントが上限に達していることを表す。
var ErrQueueFull = errors.New("イベントの配信キューが満杯です")

// queued はキューに積まれたイベントと、発生元リクエストのID。
type queued struct {
	event     *event.Event
	requestID string
}

// Dispatcher はイベントを固定長のキューに積み、Runのワーカーから送信先へ配信する。
// Publishは送信先の応答を待たない。
type Dispatcher struct {
	sink  Sink
	queue chan queued
}

// NewDispatcher はsinkへ配信するDispatcherを生成する。sizeが0以下の場合はDefaultQueueSizeを使う。
func NewDispatcher(sink Sink, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{sink: sink, queue: make(chan queued, size)}
}

// Publish はイベントをキューに積む。満杯の場合は待たずにErrQueueFullを返す。
func (d *Dispatcher) Publish(ctx context.Context, e *event.Event) error {
	requestID, _ := httpclient.RequestIDFrom(ctx)
	select {
	case d.queue <- queued{event: e, requestID: requestID}:
		return nil
	default:
		return errors.Wrapf(ErrQueueFull, "イベント %s を破棄しました", e.ID)
	}
}

// Run はctxが終了するまでキューのイベントを配信する。
// 終了時はキューに残ったイベントをdrainTimeoutの範囲で配信してから戻る。
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return nil
		case q := <-d.queue:
			d.deliver(context.Background(), q)
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case q := <-d.queue:
			d.deliver(ctx, q)
		default:
			return
		}
	}
}

// deliver は1件を配信する。失敗は警告として記録し、再送はしない。
func (d *Dispatcher) deliver(parent context.Context, q queued) {
	ctx, cancel := context.WithTimeout(parent, deliverTimeout)
	defer cancel()
	if q.requestID != "" {
		ctx = httpclient.WithRequestID(ctx, q.requestID)
	}

	if err := d.sink.Publish(ctx, q.event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"event_id":     q.event.ID,
			"event_type":   q.event.EventType,
			"aggregate_id": q.event.AggregateID,
			"request_id":   q.requestID,
		}).Warn("イベントの配信に失敗")
	}
}
