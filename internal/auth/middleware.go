package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/orderly/internal/domain"
)

// Verifier はトークンを検証する。
type Verifier interface {
	Verify(token string) (Principal, error)
}

// principalKey はginコンテキストにPrincipalを格納するキー。
const principalKey = "auth.principal"

// Authenticate はBearerトークンを検証するGinミドルウェアを返す。
// 失敗理由にかかわらず401を返し、成功時はPrincipalをコンテキストに設定する。
func Authenticate(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		p, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireRole は指定ロールのいずれかを持たないリクエストを403で拒否する。
// Authenticateの後に適用する必要がある。
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "認証が必要です",
			})
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": domain.ErrForbidden.Error(),
		})
	}
}

// PrincipalFrom はAuthenticateが設定したPrincipalを取り出す。
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
