package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nao1215/orderly/internal/domain"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// AccountFinder はユーザー名でアカウントを引く。
type AccountFinder interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// Principal は検証済みトークンが表す利用者。
type Principal struct {
	AccountID int64       `json:"accountId"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
}

// IsStaff はスタッフ権限を持つかどうかを返す。
func (p Principal) IsStaff() bool {
	return p.Role == domain.RoleStaff
}

// Claims はトークンのペイロード。subにアカウントIDを入れる。
type Claims struct {
	jwt.RegisteredClaims
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Token は発行したトークンと、その持ち主の情報。
type Token struct {
	Token     string      `json:"token"`
	AccountID int64       `json:"accountId"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// dummyHash はアカウントが存在しない場合の比較対象。
// 応答時間からユーザー名の存在を推測されないよう、常にbcrypt比較を行う。
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("orderly-dummy-password"), bcrypt.DefaultCost)

// Gate はトークンの発行と検証を行う。
type Gate struct {
	accounts AccountFinder
	secret   []byte
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

// NewGate は新しいGateを生成する。
func NewGate(accounts AccountFinder, secret, issuer string, ttl time.Duration) *Gate {
	return &Gate{
		accounts: accounts,
		secret:   []byte(secret),
		issuer:   issuer,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue は資格情報を照合し、成功すればトークンを発行する。
// ユーザーが存在しない場合もパスワード不一致の場合もErrInvalidCredentialsを返す。
func (g *Gate) Issue(ctx context.Context, username, password string) (*Token, error) {
	account, err := g.accounts.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrAccountNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "アカウントの照会に失敗")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return g.Sign(account)
}

// Sign はアカウントに対するトークンを署名する。資格情報は確認しない。
func (g *Gate) Sign(account *domain.Account) (*Token, error) {
	now := g.now()
	expiresAt := now.Add(g.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(account.ID, 10),
			Issuer:    g.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: account.Username,
		Role:     account.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return &Token{
		Token:     signed,
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify はトークンの署名と有効期限を検証し、Principalを返す。
// ストレージは参照しない。
func (g *Gate) Verify(token string) (Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(_ *jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(g.issuer),
		jwt.WithTimeFunc(g.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Principal{}, domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Principal{}, domain.ErrTokenInvalidSignature
	default:
		return Principal{}, domain.ErrTokenMalformed
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || !claims.Role.Valid() {
		return Principal{}, domain.ErrTokenMalformed
	}
	return Principal{AccountID: id, Username: claims.Username, Role: claims.Role}, nil
}

// HashPassword はパスワードをbcryptでハッシュ化する。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "パスワードのハッシュ化に失敗")
	}
	return string(hash), nil
}
