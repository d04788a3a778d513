// Package domain は注文システムのエンティティとエラー分類を定義する。
//
// アカウント、メニュー項目、注文（Order）とその明細（OrderItem）を扱う。
// 注文と明細は1つの集約として扱い、永続化・読み取りは常に一体で行う。
package domain
