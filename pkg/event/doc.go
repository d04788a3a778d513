// Package event は注文のライフサイクルで発生するイベントのエンベロープを定義する。
//
// イベントはコミット済みの状態変化を外部へ知らせるためのもので、
// 注文の永続化そのものには関与しない。種別ごとのデータ型は送信側のパッケージが持つ。
package event
