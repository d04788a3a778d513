// Package order は注文の確定とステータス遷移を扱う。
//
// Workflowは注文集約（注文と明細）の唯一の書き手で、
// 確定時にメニュー価格を明細へ写し取り、合計とともに1回の書き込みで保存する。
// ステータスは Pending → Ready → Completed の順にしか進まない。
package order
