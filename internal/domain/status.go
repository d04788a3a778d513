package domain

// Status は注文の進行状況を表す。
type Status string

const (
	// StatusPending は受付済みで調理前の状態。注文作成時の初期状態。
	StatusPending Status = "Pending"
	// StatusReady は調理が終わり受け渡し待ちの状態。
	StatusReady Status = "Ready"
	// StatusCompleted は受け渡しまで完了した終端状態。
	StatusCompleted Status = "Completed"
)

// nextStatus は各状態から遷移できる唯一の次状態。終端状態は含まない。
var nextStatus = map[Status]Status{
	StatusPending: StatusReady,
	StatusReady:   StatusCompleted,
}

// ParseStatus は文字列を既知のStatusに変換する。
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusReady, StatusCompleted:
		return st, nil
	default:
		return "", ErrUnknownStatus
	}
}

// Next は現在の状態の直後の状態を返す。終端状態ではfalseを返す。
func (s Status) Next() (Status, bool) {
	next, ok := nextStatus[s]
	return next, ok
}

// IsTerminal は終端状態かどうかを返す。
func (s Status) IsTerminal() bool {
	_, ok := nextStatus[s]
	return !ok
}

// CanTransitionTo はtoが直後の状態である場合のみtrueを返す。
// 飛び越しや後戻りは許可しない。
func (s Status) CanTransitionTo(to Status) bool {
	next, ok := s.Next()
	return ok && next == to
}
