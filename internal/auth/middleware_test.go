package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/orderly/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupRouter はAuthenticateとRequireRoleを適用したテスト用ルーターを返す。
func setupRouter(g *Gate) *gin.Engine {
	router := gin.New()
	authed := router.Group("/", Authenticate(g))
	authed.GET("/me", func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, p)
	})
	authed.GET("/staff", RequireRole(domain.RoleStaff), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func bearer(t *testing.T, g *Gate, a *domain.Account) string {
	t.Helper()

	tok, err := g.Sign(a)
	if err != nil {
		t.Fatalf("Sign()でエラーが発生: %v", err)
	}
	return "Bearer " + tok.Token
}

// TestAuthenticate はトークン検証ミドルウェアを検証する。
func TestAuthenticate(t *testing.T) {
	t.Parallel()

	g := NewGate(nil, testSecret, "orderly", time.Hour)
	router := setupRouter(g)
	customer := &domain.Account{ID: 3, Username: "carol", Role: domain.RoleCustomer}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "Authorizationヘッダーがない場合は401", header: "", wantStatus: http.StatusUnauthorized},
		{name: "Bearer形式でない場合は401", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "不正なトークンは401", header: "Bearer invalid.token.here", wantStatus: http.StatusUnauthorized},
		{name: "別の鍵のトークンは401", header: bearer(t, NewGate(nil, "other", "orderly", time.Hour), customer), wantStatus: http.StatusUnauthorized},
		{name: "有効なトークンは200", header: bearer(t, g, customer), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ステータスコード = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	t.Run("コンテキストにPrincipalが設定されること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer(t, g, customer))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var got Principal
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		want := Principal{AccountID: 3, Username: "carol", Role: domain.RoleCustomer}
		if got != want {
			t.Errorf("Principal = %+v, want %+v", got, want)
		}
	})
}

// TestRequireRole はロールによるアクセス制御を検証する。
func TestRequireRole(t *testing.T) {
	t.Parallel()

	g := NewGate(nil, testSecret, "orderly", time.Hour)
	router := setupRouter(g)

	t.Run("CUSTOMERはスタッフ専用ルートで403になること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", bearer(t, g, &domain.Account{ID: 1, Username: "c", Role: domain.RoleCustomer}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("STAFFはスタッフ専用ルートにアクセスできること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", bearer(t, g, &domain.Account{ID: 2, Username: "s", Role: domain.RoleStaff}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("認証前に適用された場合は401になること", func(t *testing.T) {
		t.Parallel()

		r := gin.New()
		r.GET("/x", RequireRole(domain.RoleStaff), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}
