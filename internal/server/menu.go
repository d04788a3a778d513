package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/orderly/internal/domain"
	"github.com/shopspring/decimal"
)

// menuItemRequest はメニュー項目の登録・更新リクエスト。
// priceは文字列と数値のどちらでも受け付ける。
type menuItemRequest struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	PrepTime  int             `json:"prepTime"`
	Category  string          `json:"category"`
	ImageURL  string          `json:"imageUrl"`
	Available *bool           `json:"available"`
}

// toMenuItem はリクエストをメニュー項目に変換する。availableの既定値はtrue。
func (r *menuItemRequest) toMenuItem(id int64) *domain.MenuItem {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return &domain.MenuItem{
		ID:        id,
		Name:      r.Name,
		Price:     r.Price,
		PrepTime:  r.PrepTime,
		Category:  r.Category,
		ImageURL:  r.ImageURL,
		Available: available,
	}
}

// handleListMenuItems はメニュー一覧を返すハンドラを返す。
// ?available=true で提供中の項目に絞り込む。
func (s *Server) handleListMenuItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := s.menu.List(c.Request.Context(), c.Query("available") == "true")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// handleGetMenuItem はメニュー項目を1件返すハンドラを返す。
func (s *Server) handleGetMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		item, err := s.menu.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// handleCreateMenuItem はメニュー項目の登録を処理するハンドラを返す。
func (s *Server) handleCreateMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req menuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		item := req.toMenuItem(0)
		if err := item.Validate(); err != nil {
			respondError(c, err)
			return
		}
		if err := s.menu.Create(c.Request.Context(), item); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// handleUpdateMenuItem はメニュー項目の更新を処理するハンドラを返す。
// 価格を変更しても既存の注文の単価は変わらない。
func (s *Server) handleUpdateMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		var req menuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		item := req.toMenuItem(id)
		if err := item.Validate(); err != nil {
			respondError(c, err)
			return
		}
		if err := s.menu.Update(c.Request.Context(), item); err != nil {
			respondError(c, err)
			return
		}

		updated, err := s.menu.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// handleDeleteMenuItem はメニュー項目の削除を処理するハンドラを返す。
func (s *Server) handleDeleteMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		if err := s.menu.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
