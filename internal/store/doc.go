// Package store はSQLiteを使った永続化層を提供する。
//
// AccountStoreとMenuStoreはそれぞれアカウント参照とメニュー参照の契約を満たす。
// OrderStoreは注文と明細を1つのトランザクションで書き込み、
// ステータス更新はversion列による比較更新で行う。
package store
