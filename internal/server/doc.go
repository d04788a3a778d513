// Package server は注文サービスのHTTP APIを提供する。
//
// 全ての /api ルートは認証・登録を除きBearerトークンを要求し、
// メニューの変更、全注文の参照、注文ステータスの更新はSTAFFロールに限られる。
// エラーは {"error": "..."} の形で返す。
package server
