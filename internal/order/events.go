package order

import (
	"strconv"

	"github.com/nao1215/orderly/internal/domain"
	"github.com/nao1215/orderly/pkg/event"
	"github.com/shopspring/decimal"
)

// EventLine は注文イベントに含める明細。
type EventLine struct {
	MenuItemID   int64           `json:"menuItemId"`
	MenuItemName string          `json:"menuItemName"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// PlacedData はOrderPlacedイベントのデータ。
type PlacedData struct {
	AccountID  int64           `json:"accountId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Lines      []EventLine     `json:"lines"`
}

// StatusChangedData はOrderStatusChangedイベントのデータ。
type StatusChangedData struct {
	AccountID int64         `json:"accountId"`
	From      domain.Status `json:"from"`
	To        domain.Status `json:"to"`
}

// PlacedEvent は確定した注文からOrderPlacedイベントを生成する。
func PlacedEvent(o *domain.Order) (*event.Event, error) {
	lines := make([]EventLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, EventLine{
			MenuItemID:   it.MenuItemID,
			MenuItemName: it.MenuItemName,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     it.Subtotal,
		})
	}
	return event.New(aggregateID(o.ID), event.AggregateTypeOrder, event.TypeOrderPlaced, o.Version, PlacedData{
		AccountID:  o.AccountID,
		TotalPrice: o.TotalPrice,
		Lines:      lines,
	})
}

// StatusChangedEvent は更新後の注文からOrderStatusChangedイベントを生成する。
func StatusChangedEvent(o *domain.Order, from domain.Status) (*event.Event, error) {
	return event.New(aggregateID(o.ID), event.AggregateTypeOrder, event.TypeOrderStatusChanged, o.Version, StatusChangedData{
		AccountID: o.AccountID,
		From:      from,
		To:        o.Status,
	})
}

// aggregateID はイベントの集約IDとして使う注文IDの文字列表現。
func aggregateID(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}
