package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/orderly/internal/auth"
	"github.com/nao1215/orderly/internal/domain"
	"github.com/nao1215/orderly/internal/order"
	"github.com/nao1215/orderly/pkg/event"
)

// placeOrderRequest は注文確定リクエスト。cartItemsのキーはメニュー項目ID。
// accountIdを省略した場合はトークンのアカウントで注文する。
type placeOrderRequest struct {
	AccountID int64         `json:"accountId"`
	CartItems map[int64]int `json:"cartItems"`
}

// updateStatusRequest はステータス更新リクエスト。
type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// canActFor はprincipalがaccountIDのアカウントとして操作できるかを返す。
func canActFor(p auth.Principal, accountID int64) bool {
	return p.IsStaff() || p.AccountID == accountID
}

// handlePlaceOrder は注文確定を処理するハンドラを返す。
// 参照先が見つからない場合は入力の誤りとして400を返す。
func (s *Server) handlePlaceOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := auth.PrincipalFrom(c)

		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if req.AccountID == 0 {
			req.AccountID = p.AccountID
		}
		if !canActFor(p, req.AccountID) {
			respondError(c, domain.ErrForbidden)
			return
		}

		o, err := s.workflow.PlaceOrder(c.Request.Context(), req.AccountID, order.Cart(req.CartItems))
		if domain.IsNotFound(err) {
			respondErrorStatus(c, http.StatusBadRequest, err)
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// handleListAccountOrders はアカウントの注文一覧を返すハンドラを返す。
func (s *Server) handleListAccountOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := auth.PrincipalFrom(c)

		accountID, err := paramID(c, "accountId")
		if err != nil {
			respondError(c, err)
			return
		}
		if !canActFor(p, accountID) {
			respondError(c, domain.ErrForbidden)
			return
		}

		orders, err := s.workflow.OrdersForAccount(c.Request.Context(), accountID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// handleGetOrder は注文を1件返すハンドラを返す。注文者本人かSTAFFのみ参照できる。
func (s *Server) handleGetOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := auth.PrincipalFrom(c)

		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		o, err := s.workflow.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if !canActFor(p, o.AccountID) {
			respondError(c, domain.ErrForbidden)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// handleListAllOrders は全注文を返すハンドラを返す。
func (s *Server) handleListAllOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := s.workflow.AllOrders(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// handleUpdateStatus は注文ステータスの更新を処理するハンドラを返す。
func (s *Server) handleUpdateStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			respondError(c, err)
			return
		}

		o, err := s.workflow.UpdateStatus(c.Request.Context(), id, status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// handleListOrderEvents は注文に記録されたイベントを版番号順に返すハンドラを返す。
func (s *Server) handleListOrderEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		if _, err := s.workflow.Get(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}

		events, err := s.events.ListByAggregate(c.Request.Context(), event.AggregateTypeOrder, strconv.FormatInt(id, 10))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}
