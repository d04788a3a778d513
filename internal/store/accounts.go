package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/nao1215/orderly/internal/domain"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// AccountStore はaccountsテーブルへのアクセスを提供する。
type AccountStore struct {
	db *DB
}

// NewAccountStore は新しいAccountStoreを生成する。
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = `id, username, password_hash, role, created_at`

// GetByID はIDでアカウントを取得する。
func (s *AccountStore) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	var a domain.Account
	err := s.db.GetContext(ctx, &a, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "アカウント %d の取得に失敗", id)
	}
	return &a, nil
}

// FindByUsername はユーザー名でアカウントを取得する。
func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var a domain.Account
	err := s.db.GetContext(ctx, &a, `SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "アカウントの取得に失敗")
	}
	return &a, nil
}

// Create はアカウントを登録する。ユーザー名が重複する場合はErrUsernameTakenを返す。
func (s *AccountStore) Create(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.Account, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		username, passwordHash, string(role), now,
	)
	if isUniqueViolation(err) {
		return nil, domain.ErrUsernameTaken
	}
	if err != nil {
		return nil, errors.Wrap(err, "アカウントの登録に失敗")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "登録したアカウントIDの取得に失敗")
	}
	return &domain.Account{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
