package store

import (
	"context"
	"time"

	"github.com/nao1215/orderly/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// OrderStore はordersとorder_itemsテーブルへのアクセスを提供する。
type OrderStore struct {
	db *DB
}

// NewOrderStore は新しいOrderStoreを生成する。
func NewOrderStore(db *DB) *OrderStore {
	return &OrderStore{db: db}
}

// InsertAggregate は注文と全明細を1つのトランザクションで書き込む。
// 成功時はoと各明細に採番したIDを設定する。
// 途中で失敗した場合は何も書き込まれず、ErrTransactionAbortedを返す。
func (s *OrderStore) InsertAggregate(ctx context.Context, o *domain.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return aborted(errors.Wrap(err, "トランザクション開始に失敗"))
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (account_id, created_at, status, total_price, version, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.AccountID, o.CreatedAt, string(o.Status), o.TotalPrice.String(), o.Version, o.UpdatedAt,
	)
	if err != nil {
		return aborted(errors.Wrap(err, "注文の書き込みに失敗"))
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return aborted(errors.Wrap(err, "注文IDの取得に失敗"))
	}

	itemIDs := make([]int64, len(o.Items))
	for i, it := range o.Items {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, menu_item_id, menu_item_name, quantity, unit_price, subtotal)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			orderID, it.MenuItemID, it.MenuItemName, it.Quantity, it.UnitPrice.String(), it.Subtotal.String(),
		)
		if err != nil {
			return aborted(errors.Wrapf(err, "明細 %d (メニュー項目 %d) の書き込みに失敗", i, it.MenuItemID))
		}
		if itemIDs[i], err = res.LastInsertId(); err != nil {
			return aborted(errors.Wrap(err, "明細IDの取得に失敗"))
		}
	}

	if err := tx.Commit(); err != nil {
		return aborted(errors.Wrap(err, "コミットに失敗"))
	}

	o.ID = orderID
	for i := range o.Items {
		o.Items[i].ID = itemIDs[i]
		o.Items[i].OrderID = orderID
	}
	return nil
}

// orderRow は注文と明細を結合した1行。
type orderRow struct {
	ID         int64           `db:"id"`
	AccountID  int64           `db:"account_id"`
	CreatedAt  time.Time       `db:"created_at"`
	Status     domain.Status   `db:"status"`
	TotalPrice decimal.Decimal `db:"total_price"`
	Version    int64           `db:"version"`
	UpdatedAt  time.Time       `db:"updated_at"`

	ItemID       int64           `db:"item_id"`
	MenuItemID   int64           `db:"menu_item_id"`
	MenuItemName string          `db:"menu_item_name"`
	Quantity     int             `db:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	Subtotal     decimal.Decimal `db:"subtotal"`
}

// 1文で読むことで、注文と明細が同じスナップショットから得られる。
// 明細の名称と単価は注文時点の値で、menu_itemsの現在値は参照しない。
const selectOrders = `
	SELECT o.id, o.account_id, o.created_at, o.status, o.total_price, o.version, o.updated_at,
	       i.id AS item_id, i.menu_item_id, i.menu_item_name,
	       i.quantity, i.unit_price, i.subtotal
	FROM orders o
	JOIN order_items i ON i.order_id = o.id`

// GetByID はIDで注文を明細込みで取得する。
func (s *OrderStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	orders, err := s.query(ctx, selectOrders+` WHERE o.id = ? ORDER BY i.id`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "注文 %d の取得に失敗", id)
	}
	if len(orders) == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return &orders[0], nil
}

// ListByAccount はアカウントの注文を新しい順に返す。
func (s *OrderStore) ListByAccount(ctx context.Context, accountID int64) ([]domain.Order, error) {
	orders, err := s.query(ctx, selectOrders+` WHERE o.account_id = ? ORDER BY o.created_at DESC, o.id DESC, i.id`, accountID)
	if err != nil {
		return nil, errors.Wrapf(err, "アカウント %d の注文一覧の取得に失敗", accountID)
	}
	return orders, nil
}

// ListAll は全注文を新しい順に返す。
func (s *OrderStore) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.query(ctx, selectOrders+` ORDER BY o.created_at DESC, o.id DESC, i.id`)
	if err != nil {
		return nil, errors.Wrap(err, "注文一覧の取得に失敗")
	}
	return orders, nil
}

// query は結合結果を注文単位にまとめる。行は注文ごとに連続している前提。
func (s *OrderStore) query(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	orders := []domain.Order{}
	for _, r := range rows {
		if n := len(orders); n == 0 || orders[n-1].ID != r.ID {
			orders = append(orders, domain.Order{
				ID:         r.ID,
				AccountID:  r.AccountID,
				CreatedAt:  r.CreatedAt,
				Status:     r.Status,
				TotalPrice: r.TotalPrice,
				Version:    r.Version,
				UpdatedAt:  r.UpdatedAt,
			})
		}
		last := &orders[len(orders)-1]
		last.Items = append(last.Items, domain.OrderItem{
			ID:           r.ItemID,
			OrderID:      r.ID,
			MenuItemID:   r.MenuItemID,
			MenuItemName: r.MenuItemName,
			Quantity:     r.Quantity,
			UnitPrice:    r.UnitPrice,
			Subtotal:     r.Subtotal,
		})
	}
	return orders, nil
}

// CompareAndSetStatus は版番号がexpectedVersionの場合のみステータスを更新し、版番号を1増やす。
// 版番号が一致しない場合はErrConflict、注文がない場合はErrOrderNotFoundを返す。
func (s *OrderStore) CompareAndSetStatus(ctx context.Context, id, expectedVersion int64, to domain.Status, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		string(to), at, id, expectedVersion,
	)
	if err != nil {
		return aborted(errors.Wrapf(err, "注文 %d のステータス更新に失敗", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return aborted(errors.Wrap(err, "更新件数の取得に失敗"))
	}
	if n == 1 {
		return nil
	}

	var exists int
	if err := s.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM orders WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "注文の存在確認に失敗")
	}
	if exists == 0 {
		return domain.ErrOrderNotFound
	}
	return domain.ErrConflict
}
