package store

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nao1215/orderly/internal/domain"
	"github.com/nao1215/orderly/pkg/migration"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB はSQLiteデータベース接続。
type DB struct {
	*sqlx.DB
}

// dsn は外部キー制約とWAL、ロック待ちを有効にした接続文字列を返す。
// 書き込みトランザクションはIMMEDIATEで開始し、ロック昇格時の失敗を避ける。
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", path)
}

// Open はpathのSQLiteデータベースに接続する。スキーマは適用しない。
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sqlx.Open("sqlite", dsn(path))
	if err != nil {
		return nil, errors.Wrap(err, "データベース接続に失敗")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "データベースへの疎通確認に失敗")
	}
	return &DB{DB: db}, nil
}

// Migrate は埋め込みのマイグレーションを適用する。
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := migration.Run(ctx, db.DB.DB, migrations, "migrations"); err != nil {
		return errors.Wrap(err, "スキーマ初期化に失敗")
	}
	return nil
}

// OpenAndMigrate はOpenとMigrateをまとめて行う。
func OpenAndMigrate(ctx context.Context, path string) (*DB, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// aborted はトランザクション内の失敗をErrTransactionAbortedとして返す。
// 元のエラーもerrors.Isで判定できる。
func aborted(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrTransactionAborted, err)
}
