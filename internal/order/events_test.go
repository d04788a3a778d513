package order

import (
	"encoding/json"
	"testing"

	"github.com/nao1215/orderly/internal/domain"
	"github.com/nao1215/orderly/pkg/event"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPlacedEvent は注文からのイベント生成とデータの復元を検証する。
func TestPlacedEvent(t *testing.T) {
	t.Parallel()

	item := &domain.MenuItem{ID: 7, Name: "餃子", Price: decimal.RequireFromString("5.50")}
	line := domain.NewOrderItem(item, 2)
	o := &domain.Order{
		ID:         99,
		AccountID:  3,
		Status:     domain.StatusPending,
		TotalPrice: line.Subtotal,
		Version:    1,
		Items:      []domain.OrderItem{line},
	}

	e, err := PlacedEvent(o)
	require.NoError(t, err)
	assert.Equal(t, "99", e.AggregateID)
	assert.Equal(t, event.AggregateTypeOrder, e.AggregateType)
	assert.Equal(t, event.TypeOrderPlaced, e.EventType)
	assert.Equal(t, int64(1), e.Version)

	data, err := event.DecodeData[PlacedData](e)
	require.NoError(t, err)
	assert.Equal(t, int64(3), data.AccountID)
	assert.True(t, data.TotalPrice.Equal(decimal.RequireFromString("11")), "TotalPrice = %s", data.TotalPrice)
	require.Len(t, data.Lines, 1)
	assert.Equal(t, "餃子", data.Lines[0].MenuItemName)
	assert.Equal(t, 2, data.Lines[0].Quantity)
}

// TestStatusChangedEvent はステータス変更イベントの内容を検証する。
func TestStatusChangedEvent(t *testing.T) {
	t.Parallel()

	o := &domain.Order{ID: 5, AccountID: 2, Status: domain.StatusReady, Version: 2}
	e, err := StatusChangedEvent(o, domain.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.Version)

	var data StatusChangedData
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, domain.StatusPending, data.From)
	assert.Equal(t, domain.StatusReady, data.To)
}
