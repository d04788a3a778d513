package order

import (
	"context"
	"sort"
	"time"

	"github.com/nao1215/orderly/internal/domain"
	"github.com/nao1215/orderly/pkg/event"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// AccountDirectory はアカウントの参照先。
type AccountDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
}

// Catalog はメニュー項目の参照先。常に現在の価格を返す。
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*domain.MenuItem, error)
}

// Repository は注文集約の永続化先。
type Repository interface {
	// InsertAggregate は注文と全明細を原子的に書き込む。
	InsertAggregate(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	// CompareAndSetStatus は版番号が一致する場合のみステータスを更新する。
	CompareAndSetStatus(ctx context.Context, id, expectedVersion int64, to domain.Status, at time.Time) error
}

// Publisher はコミット済みの変更をイベントとして送信する。
type Publisher interface {
	Publish(ctx context.Context, e *event.Event) error
}

// Cart はメニュー項目IDから数量への対応。
type Cart map[int64]int

// Workflow は注文の確定、参照、ステータス遷移を行う。
type Workflow struct {
	accounts  AccountDirectory
	catalog   Catalog
	orders    Repository
	publisher Publisher
	now       func() time.Time
}

// NewWorkflow は新しいWorkflowを生成する。publisherがnilの場合はイベントを送信しない。
func NewWorkflow(accounts AccountDirectory, catalog Catalog, orders Repository, publisher Publisher) *Workflow {
	return &Workflow{
		accounts:  accounts,
		catalog:   catalog,
		orders:    orders,
		publisher: publisher,
		now:       time.Now,
	}
}

// PlaceOrder はカートの内容で注文を確定する。
// 1つでも存在しないメニュー項目があれば何も保存せずErrMenuItemNotFoundを返す。
func (w *Workflow) PlaceOrder(ctx context.Context, accountID int64, cart Cart) (*domain.Order, error) {
	if len(cart) == 0 {
		return nil, domain.ErrEmptyCart
	}
	for _, qty := range cart {
		if qty <= 0 {
			return nil, domain.ErrNonPositiveQuantity
		}
	}

	if _, err := w.accounts.GetByID(ctx, accountID); err != nil {
		return nil, errors.Wrapf(err, "アカウント %d", accountID)
	}

	ids := make([]int64, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]domain.OrderItem, 0, len(ids))
	for _, id := range ids {
		menuItem, err := w.catalog.GetByID(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "メニュー項目 %d", id)
		}
		items = append(items, domain.NewOrderItem(menuItem, cart[id]))
	}

	now := w.now().UTC()
	o := &domain.Order{
		AccountID:  accountID,
		CreatedAt:  now,
		Status:     domain.StatusPending,
		TotalPrice: domain.SumSubtotals(items),
		Version:    1,
		UpdatedAt:  now,
		Items:      items,
	}
	if err := w.orders.InsertAggregate(ctx, o); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id":   o.ID,
		"account_id": accountID,
		"items":      len(items),
		"total":      o.TotalPrice.String(),
	}).Info("注文を確定しました")

	w.publish(ctx, o, PlacedEvent)
	return o, nil
}

// Get は注文を1件取得する。
func (w *Workflow) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return w.orders.GetByID(ctx, id)
}

// OrdersForAccount はアカウントの注文一覧を返す。
func (w *Workflow) OrdersForAccount(ctx context.Context, accountID int64) ([]domain.Order, error) {
	return w.orders.ListByAccount(ctx, accountID)
}

// AllOrders は全注文を返す。呼び出し側でスタッフ権限を確認すること。
func (w *Workflow) AllOrders(ctx context.Context) ([]domain.Order, error) {
	return w.orders.ListAll(ctx)
}

// UpdateStatus は注文を直後のステータスへ進める。
// 直後以外の指定はErrInvalidTransition、同時更新に負けた場合はErrConflictを返す。
func (w *Workflow) UpdateStatus(ctx context.Context, id int64, requested domain.Status) (*domain.Order, error) {
	current, err := w.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(requested) {
		return nil, errors.Wrapf(domain.ErrInvalidTransition, "%s から %s", current.Status, requested)
	}

	now := w.now().UTC()
	if err := w.orders.CompareAndSetStatus(ctx, id, current.Version, requested, now); err != nil {
		return nil, err
	}

	from := current.Status
	updated := *current
	updated.Status = requested
	updated.Version = current.Version + 1
	updated.UpdatedAt = now

	log.WithFields(log.Fields{
		"order_id": id,
		"from":     from,
		"to":       requested,
	}).Info("注文ステータスを更新しました")

	w.publish(ctx, &updated, func(o *domain.Order) (*event.Event, error) {
		return StatusChangedEvent(o, from)
	})
	return &updated, nil
}

// publish はイベントを送信する。失敗しても注文はコミット済みのため警告のみ記録する。
func (w *Workflow) publish(ctx context.Context, o *domain.Order, build func(*domain.Order) (*event.Event, error)) {
	if w.publisher == nil {
		return
	}
	e, err := build(o)
	if err == nil {
		err = w.publisher.Publish(context.WithoutCancel(ctx), e)
	}
	if err != nil {
		log.WithError(err).WithField("order_id", o.ID).Warn("注文イベントの送信に失敗")
	}
}
