package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nao1215/orderly/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testSecret はテスト用のトークン署名鍵。
const testSecret = "test-secret-key-for-unit-tests"

// fakeAccounts はユーザー名で引けるメモリ上のアカウント一覧。
type fakeAccounts map[string]*domain.Account

func (f fakeAccounts) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	a, ok := f[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

func newTestAccounts(t *testing.T) fakeAccounts {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	return fakeAccounts{
		"alice": {ID: 7, Username: "alice", PasswordHash: string(hash), Role: domain.RoleStaff},
	}
}

// TestGate_Issue は資格情報の照合とトークン発行を検証する。
func TestGate_Issue(t *testing.T) {
	t.Parallel()

	t.Run("正しい資格情報でトークンが発行されること", func(t *testing.T) {
		t.Parallel()
		g := NewGate(newTestAccounts(t), testSecret, "orderly", time.Hour)

		tok, err := g.Issue(context.Background(), "alice", "correct-password")
		require.NoError(t, err)
		assert.NotEmpty(t, tok.Token)
		assert.Equal(t, int64(7), tok.AccountID)
		assert.Equal(t, "alice", tok.Username)
		assert.Equal(t, domain.RoleStaff, tok.Role)
	})

	t.Run("パスワード不一致と未登録ユーザーは同じエラーになること", func(t *testing.T) {
		t.Parallel()
		g := NewGate(newTestAccounts(t), testSecret, "orderly", time.Hour)

		_, errWrong := g.Issue(context.Background(), "alice", "wrong-password")
		_, errUnknown := g.Issue(context.Background(), "nobody", "correct-password")

		assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
	})
}

// TestGate_Verify はトークン検証の成功と各失敗理由を検証する。
func TestGate_Verify(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: 42, Username: "bob", Role: domain.RoleCustomer}

	t.Run("発行したトークンからアカウントIDとロールが復元されること", func(t *testing.T) {
		t.Parallel()
		g := NewGate(nil, testSecret, "orderly", time.Hour)

		tok, err := g.Sign(account)
		require.NoError(t, err)

		p, err := g.Verify(tok.Token)
		require.NoError(t, err)
		assert.Equal(t, Principal{AccountID: 42, Username: "bob", Role: domain.RoleCustomer}, p)
	})

	t.Run("別の鍵で署名されたトークンはErrTokenInvalidSignatureになること", func(t *testing.T) {
		t.Parallel()
		other := NewGate(nil, "another-secret", "orderly", time.Hour)
		tok, err := other.Sign(account)
		require.NoError(t, err)

		_, err = NewGate(nil, testSecret, "orderly", time.Hour).Verify(tok.Token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalidSignature)
	})

	t.Run("有効期限切れのトークンはErrTokenExpiredになること", func(t *testing.T) {
		t.Parallel()
		g := NewGate(nil, testSecret, "orderly", time.Hour)
		issuedAt := time.Now().Add(-2 * time.Hour)
		g.now = func() time.Time { return issuedAt }
		tok, err := g.Sign(account)
		require.NoError(t, err)

		g.now = time.Now
		_, err = g.Verify(tok.Token)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})

	t.Run("JWTでない文字列はErrTokenMalformedになること", func(t *testing.T) {
		t.Parallel()
		g := NewGate(nil, testSecret, "orderly", time.Hour)

		_, err := g.Verify("not-a-token")
		assert.ErrorIs(t, err, domain.ErrTokenMalformed)
	})

	t.Run("有効期限のないトークンは拒否されること", func(t *testing.T) {
		t.Parallel()
		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "42", Issuer: "orderly"},
			Username:         "bob",
			Role:             domain.RoleCustomer,
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = NewGate(nil, testSecret, "orderly", time.Hour).Verify(signed)
		assert.ErrorIs(t, err, domain.ErrTokenMalformed)
	})

	t.Run("HS256以外のアルゴリズムは拒否されること", func(t *testing.T) {
		t.Parallel()
		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "42",
				Issuer:    "orderly",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: domain.RoleStaff,
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = NewGate(nil, testSecret, "orderly", time.Hour).Verify(signed)
		assert.Error(t, err)
	})
}

// TestHashPassword はハッシュがbcryptで照合できることを検証する。
func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
}
