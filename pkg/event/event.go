package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AggregateType はイベントの対象となる集約の種類。
type AggregateType string

// AggregateTypeOrder は注文集約。
const AggregateTypeOrder AggregateType = "Order"

// Type はイベントの種類。
type Type string

const (
	// TypeOrderPlaced は注文が確定したことを表す。
	TypeOrderPlaced Type = "OrderPlaced"
	// TypeOrderStatusChanged は注文のステータスが進んだことを表す。
	TypeOrderStatusChanged Type = "OrderStatusChanged"
)

// routingKeys はイベント種別ごとのメッセージブローカー向けルーティングキー。
var routingKeys = map[Type]string{
	TypeOrderPlaced:        "order.placed",
	TypeOrderStatusChanged: "order.status_changed",
}

// RoutingKey はtopic exchangeで使うルーティングキーを返す。
// 未登録の種別は "order.<小文字の種別>" とする。
func (t Type) RoutingKey() string {
	if k, ok := routingKeys[t]; ok {
		return k
	}
	return "order." + strings.ToLower(string(t))
}

// Event は送信するイベントのエンベロープ。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id" db:"id"`
	// AggregateID は対象集約の識別子。
	AggregateID string `json:"aggregateId" db:"aggregate_id"`
	// AggregateType は対象集約の種類。
	AggregateType AggregateType `json:"aggregateType" db:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"eventType" db:"event_type"`
	// Data はイベント固有のデータ。
	Data json.RawMessage `json:"data" db:"data"`
	// Version は発生時点の集約の版番号。受信側で重複や順序の判定に使える。
	Version int64 `json:"version" db:"version"`
	// CreatedAt はイベントの生成日時。
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// New は新しいイベントを生成する。dataはJSONにシリアライズされる。
func New(aggregateID string, aggregateType AggregateType, eventType Type, version int64, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("イベントデータのシリアライズに失敗: %w", err)
	}

	return &Event{
		ID:            uuid.NewString(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          raw,
		Version:       version,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// DecodeData はDataを指定した型にデシリアライズする。
func DecodeData[T any](e *Event) (*T, error) {
	var data T
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("イベントデータのデシリアライズに失敗: %w", err)
	}
	return &data, nil
}
