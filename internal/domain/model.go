package domain

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Role はアカウントの権限種別を表す。
type Role string

const (
	// RoleCustomer はメニュー閲覧と注文を行う一般利用者。
	RoleCustomer Role = "CUSTOMER"
	// RoleStaff はメニュー管理と注文の進行を行う店舗スタッフ。
	RoleStaff Role = "STAFF"
)

// Valid は既知のロールかどうかを返す。
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleStaff
}

// Account は登録済みのユーザーを表す。作成後に識別情報は変化しない。
type Account struct {
	// ID はアカウントの一意識別子。
	ID int64 `json:"id" db:"id"`
	// Username はログインに使うユーザー名。システム全体で一意。
	Username string `json:"username" db:"username"`
	// PasswordHash はbcryptでハッシュ化したパスワード。レスポンスには含めない。
	PasswordHash string `json:"-" db:"password_hash"`
	// Role はアカウントの権限。
	Role Role `json:"role" db:"role"`
	// CreatedAt は登録日時。
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// MenuItem はメニューに掲載される商品。
// 価格の変更は既存の注文に影響しない（注文明細が単価を保持するため）。
type MenuItem struct {
	ID    int64           `json:"id" db:"id"`
	Name  string          `json:"name" db:"name"`
	Price decimal.Decimal `json:"price" db:"price"`
	// PrepTime は調理目安時間（分）。
	PrepTime  int       `json:"prepTime" db:"prep_time"`
	Category  string    `json:"category" db:"category"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	Available bool      `json:"available" db:"available"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Validate はスタッフが登録・更新するメニュー項目の内容を検証する。
func (m *MenuItem) Validate() error {
	if m.Name == "" {
		return ErrInvalidMenuItem
	}
	if !m.Price.IsPositive() {
		return ErrInvalidMenuItem
	}
	if m.PrepTime < 0 {
		return ErrInvalidMenuItem
	}
	return nil
}

// Order は注文集約のルート。明細とともに一度に作成され、削除されることはない。
type Order struct {
	// ID は注文の一意識別子。
	ID int64 `json:"id" db:"id"`
	// AccountID は注文したアカウントのID。
	AccountID int64 `json:"accountId" db:"account_id"`
	// CreatedAt は注文日時。
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	// Status は注文の進行状況。
	Status Status `json:"status" db:"status"`
	// TotalPrice は明細の小計の合計。作成時に計算して保存する。
	TotalPrice decimal.Decimal `json:"totalPrice" db:"total_price"`
	// Version は楽観的排他制御に使う版番号。ステータス変更のたびに1増える。
	Version int64 `json:"version" db:"version"`
	// UpdatedAt は最後にステータスが変わった日時。
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	// Items は注文明細。
	Items []OrderItem `json:"items"`
}

// OrderItem は注文明細。単価と名称は注文時点のメニュー項目のスナップショット。
type OrderItem struct {
	ID         int64 `json:"id" db:"id"`
	OrderID    int64 `json:"orderId" db:"order_id"`
	MenuItemID int64 `json:"menuItemId" db:"menu_item_id"`
	// MenuItemName は注文時点のメニュー名。単価と同じく後の変更の影響を受けない。
	MenuItemName string          `json:"menuItemName" db:"menu_item_name"`
	Quantity     int             `json:"quantity" db:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// NewOrderItem は単価と数量から小計を計算した明細を生成する。
func NewOrderItem(item *MenuItem, quantity int) OrderItem {
	return OrderItem{
		MenuItemID:   item.ID,
		MenuItemName: item.Name,
		Quantity:     quantity,
		UnitPrice:    item.Price,
		Subtotal:     item.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// SumSubtotals は明細の小計を合計する。
func SumSubtotals(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// MinPasswordLength は登録時に要求するパスワードの最小文字数。
const MinPasswordLength = 8

// ValidateCredentials は登録するユーザー名とパスワードを検証する。
// usernameは前後の空白を除いてから渡すこと。
func ValidateCredentials(username, password string) error {
	if username == "" || utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrInvalidAccount
	}
	return nil
}
