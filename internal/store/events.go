package store

import (
	"context"

	"github.com/nao1215/orderly/internal/domain"
	"github.com/nao1215/orderly/pkg/event"
	"github.com/pkg/errors"
)

// EventStore はorder_eventsテーブルに注文イベントを記録する。
type EventStore struct {
	db *DB
}

// NewEventStore は新しいEventStoreを生成する。
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// Publish はイベントを記録する。同じ集約・版番号のイベントが既にある場合はErrConflictを返す。
func (s *EventStore) Publish(ctx context.Context, e *event.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO order_events (id, aggregate_id, aggregate_type, event_type, data, version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AggregateID, string(e.AggregateType), string(e.EventType), []byte(e.Data), e.Version, e.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Wrapf(domain.ErrConflict, "%s %s の版 %d は記録済み", e.AggregateType, e.AggregateID, e.Version)
	}
	return errors.Wrap(err, "イベントの記録に失敗")
}

// ListByAggregate は集約のイベントを版番号順に返す。
func (s *EventStore) ListByAggregate(ctx context.Context, aggregateType event.AggregateType, aggregateID string) ([]event.Event, error) {
	events := []event.Event{}
	err := s.db.SelectContext(ctx, &events,
		`SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at
		 FROM order_events
		 WHERE aggregate_type = ? AND aggregate_id = ?
		 ORDER BY version`,
		string(aggregateType), aggregateID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "イベントの取得に失敗")
	}
	return events, nil
}
