package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/orderly/internal/auth"
	"github.com/nao1215/orderly/internal/domain"
)

// credentialsRequest は認証と登録のリクエスト。
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleAuthenticate はトークンの発行を処理するハンドラを返す。
func (s *Server) handleAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		tok, err := s.gate.Issue(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tok)
	}
}

// handleRegister はCUSTOMERアカウントの登録を処理するハンドラを返す。
// STAFFアカウントはCLIからのみ作成できる。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		username := strings.TrimSpace(req.Username)
		if err := domain.ValidateCredentials(username, req.Password); err != nil {
			respondError(c, err)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		account, err := s.accounts.Create(c.Request.Context(), username, hash, domain.RoleCustomer)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, account)
	}
}
