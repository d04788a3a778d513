package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

// openTestDB はテスト用の一時ファイルSQLiteを開く。
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("DBの作成に失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"migrations/000002_add_note.up.sql":       {Data: []byte("ALTER TABLE items ADD COLUMN note TEXT NOT NULL DEFAULT '';")},
		"migrations/000001_create_items.up.sql":   {Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY);")},
		"migrations/000001_create_items.down.sql": {Data: []byte("DROP TABLE items;")},
		"migrations/README.md":                    {Data: []byte("ignored")},
		"migrations/abc_invalid.up.sql":           {Data: []byte("SELECT 1;")},
	}
}

// TestCollect はファイル収集と並び順を検証する。
func TestCollect(t *testing.T) {
	t.Parallel()

	files, err := Collect(testFS(), "migrations")
	if err != nil {
		t.Fatalf("Collect()でエラーが発生: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ファイル数 = %d, want 2", len(files))
	}
	if files[0].Version != 1 || files[0].Name != "create_items" {
		t.Errorf("files[0] = %+v", files[0])
	}
	if files[1].Version != 2 || files[1].Name != "add_note" {
		t.Errorf("files[1] = %+v", files[1])
	}
}

// TestRun はマイグレーションの適用と再実行時のスキップを検証する。
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("未適用のマイグレーションが順に適用されること", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)

		n, err := Run(context.Background(), db, testFS(), "migrations")
		if err != nil {
			t.Fatalf("Run()でエラーが発生: %v", err)
		}
		if n != 2 {
			t.Errorf("適用件数 = %d, want 2", n)
		}

		if _, err := db.Exec("INSERT INTO items (id, note) VALUES (1, 'x')"); err != nil {
			t.Errorf("マイグレーション後のテーブルに挿入できない: %v", err)
		}
	})

	t.Run("2回目の実行では何も適用されないこと", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)

		if _, err := Run(context.Background(), db, testFS(), "migrations"); err != nil {
			t.Fatalf("1回目のRun()でエラーが発生: %v", err)
		}
		n, err := Run(context.Background(), db, testFS(), "migrations")
		if err != nil {
			t.Fatalf("2回目のRun()でエラーが発生: %v", err)
		}
		if n != 0 {
			t.Errorf("適用件数 = %d, want 0", n)
		}
	})

	t.Run("SQLが不正な場合はロールバックされること", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)

		broken := fstest.MapFS{
			"m/000001_broken.up.sql": {Data: []byte("CREATE TABLE ok (id INTEGER); CREATE TABL broken;")},
		}
		if _, err := Run(context.Background(), db, broken, "m"); err == nil {
			t.Fatal("不正なSQLでエラーが返るべき")
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("バージョン数の取得に失敗: %v", err)
		}
		if count != 0 {
			t.Errorf("記録されたバージョン数 = %d, want 0", count)
		}
	})
}
