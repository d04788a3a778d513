package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/nao1215/orderly/internal/domain"
	"github.com/pkg/errors"
)

// MenuStore はmenu_itemsテーブルへのアクセスを提供する。
type MenuStore struct {
	db *DB
}

// NewMenuStore は新しいMenuStoreを生成する。
func NewMenuStore(db *DB) *MenuStore {
	return &MenuStore{db: db}
}

const menuColumns = `id, name, price, prep_time, category, image_url, available, created_at, updated_at`

// GetByID はIDでメニュー項目を取得する。価格は常に現在値を返す。
func (s *MenuStore) GetByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	var m domain.MenuItem
	err := s.db.GetContext(ctx, &m, `SELECT `+menuColumns+` FROM menu_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMenuItemNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "メニュー項目 %d の取得に失敗", id)
	}
	return &m, nil
}

// List はメニュー項目をカテゴリ、名前の順で返す。
// availableOnlyがtrueの場合は提供中の項目のみを返す。
func (s *MenuStore) List(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items`
	if availableOnly {
		query += ` WHERE available = 1`
	}
	query += ` ORDER BY category, name, id`

	items := []domain.MenuItem{}
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, errors.Wrap(err, "メニュー一覧の取得に失敗")
	}
	return items, nil
}

// Create はメニュー項目を登録し、採番したIDと日時をmに設定する。
func (s *MenuStore) Create(ctx context.Context, m *domain.MenuItem) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO menu_items (name, price, prep_time, category, image_url, available, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, m.Price.String(), m.PrepTime, m.Category, m.ImageURL, m.Available, now, now,
	)
	if err != nil {
		return errors.Wrap(err, "メニュー項目の登録に失敗")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "登録したメニュー項目IDの取得に失敗")
	}
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// Update はメニュー項目を上書きする。既存の注文明細の単価は変わらない。
func (s *MenuStore) Update(ctx context.Context, m *domain.MenuItem) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE menu_items
		 SET name = ?, price = ?, prep_time = ?, category = ?, image_url = ?, available = ?, updated_at = ?
		 WHERE id = ?`,
		m.Name, m.Price.String(), m.PrepTime, m.Category, m.ImageURL, m.Available, now, m.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "メニュー項目 %d の更新に失敗", m.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "更新件数の取得に失敗")
	}
	if n == 0 {
		return domain.ErrMenuItemNotFound
	}
	m.UpdatedAt = now
	return nil
}

// Delete はメニュー項目を削除する。
// 注文明細から参照されている場合はErrMenuItemInUseを返す。
func (s *MenuStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "トランザクション開始に失敗")
	}
	defer tx.Rollback() //nolint:errcheck

	var refs int
	if err := tx.GetContext(ctx, &refs, `SELECT COUNT(*) FROM order_items WHERE menu_item_id = ?`, id); err != nil {
		return errors.Wrap(err, "参照状況の確認に失敗")
	}
	if refs > 0 {
		return domain.ErrMenuItemInUse
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "メニュー項目 %d の削除に失敗", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "削除件数の取得に失敗")
	}
	if n == 0 {
		return domain.ErrMenuItemNotFound
	}
	return errors.Wrap(tx.Commit(), "コミットに失敗")
}
