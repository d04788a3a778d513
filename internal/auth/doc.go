// Package auth はトークンの発行・検証とリクエスト単位の認可を提供する。
//
// Gateはユーザー名とパスワードを照合して署名付きトークンを発行し、
// 受け取ったトークンを外部参照なしで検証する。サーバー側にセッションは持たない。
// AuthenticateとRequireRoleはGateを使ってginのルートを保護するミドルウェア。
package auth
