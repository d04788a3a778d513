// Package httpclient は外部サービスへJSONを送るHTTPクライアントを提供する。
//
// 注文イベントのWebhook送信に使う。呼び出し元のリクエストIDがコンテキストにあれば
// X-Request-IDヘッダーとして伝播する。
package httpclient
