package domain

import "errors"

// 認証エラー。レスポンスではどの資格情報が誤っていたかを区別しない。
var (
	// ErrInvalidCredentials はユーザー名またはパスワードが一致しないことを表す。
	ErrInvalidCredentials = errors.New("ユーザー名またはパスワードが正しくありません")
	// ErrTokenMalformed はトークンの形式が不正であることを表す。
	ErrTokenMalformed = errors.New("トークンの形式が不正です")
	// ErrTokenExpired はトークンの有効期限が切れていることを表す。
	ErrTokenExpired = errors.New("トークンの有効期限が切れています")
	// ErrTokenInvalidSignature はトークンの署名が検証できないことを表す。
	ErrTokenInvalidSignature = errors.New("トークンの署名が不正です")
	// ErrForbidden は認証済みだが権限が不足していることを表す。
	ErrForbidden = errors.New("この操作を行う権限がありません")
)

// 参照先が存在しないエラー。
var (
	ErrAccountNotFound  = errors.New("アカウントが見つかりません")
	ErrMenuItemNotFound = errors.New("メニュー項目が見つかりません")
	ErrOrderNotFound    = errors.New("注文が見つかりません")
)

// 入力検証エラー。
var (
	// ErrEmptyCart はカートが空であることを表す。
	ErrEmptyCart = errors.New("カートが空です")
	// ErrNonPositiveQuantity は数量が1未満の明細があることを表す。
	ErrNonPositiveQuantity = errors.New("数量は1以上である必要があります")
	// ErrInvalidTransition は直後の状態以外への遷移を要求されたことを表す。
	ErrInvalidTransition = errors.New("このステータスには変更できません")
	// ErrUnknownStatus は未知のステータス文字列を表す。
	ErrUnknownStatus = errors.New("不明なステータスです")
	// ErrInvalidMenuItem はメニュー項目の内容が不正であることを表す。
	ErrInvalidMenuItem = errors.New("メニュー項目の内容が不正です（名前は必須、価格は正の値）")
	// ErrInvalidAccount は登録内容が不正であることを表す。
	ErrInvalidAccount = errors.New("ユーザー名とパスワード（8文字以上）が必要です")
)

// 競合エラー。
var (
	// ErrConflict は同じ注文への同時更新に負けたことを表す。呼び出し側で再試行できる。
	ErrConflict = errors.New("注文が他の操作によって更新されました")
	// ErrUsernameTaken はユーザー名が既に使われていることを表す。
	ErrUsernameTaken = errors.New("このユーザー名は既に使われています")
	// ErrMenuItemInUse は注文明細から参照されているメニュー項目を削除しようとしたことを表す。
	ErrMenuItemInUse = errors.New("注文に含まれるメニュー項目は削除できません")
)

// ErrTransactionAborted は永続化処理が失敗しトランザクションをロールバックしたことを表す。
// 何もコミットされていないため、呼び出し側は安全に再試行できる。
var ErrTransactionAborted = errors.New("トランザクションが中断されました")

// IsAuth は認証エラーかどうかを返す。
func IsAuth(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenInvalidSignature)
}

// IsNotFound は参照先が存在しないエラーかどうかを返す。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrMenuItemNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsValidation は入力検証エラーかどうかを返す。
// ErrInvalidTransitionは競合として扱うため含めない。
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrNonPositiveQuantity) ||
		errors.Is(err, ErrUnknownStatus) ||
		errors.Is(err, ErrInvalidMenuItem) ||
		errors.Is(err, ErrInvalidAccount)
}

// IsConflict は現在の状態と矛盾する要求かどうかを返す。
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrMenuItemInUse)
}
