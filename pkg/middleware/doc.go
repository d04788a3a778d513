// Package middleware はginのHTTP APIで使う共通ミドルウェアを提供する。
//
// パニックからの回復、CORS、リクエストIDの付与、アクセスログを含む。
// 認証と認可はinternal/authが扱う。
package middleware
