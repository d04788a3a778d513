package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/orderly/internal/auth"
	"github.com/nao1215/orderly/internal/config"
	"github.com/nao1215/orderly/internal/domain"
	"github.com/nao1215/orderly/internal/notify"
	"github.com/nao1215/orderly/internal/order"
	"github.com/nao1215/orderly/internal/store"
	"github.com/nao1215/orderly/pkg/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// serviceName はヘルスチェックで返すサービス名。
const serviceName = "orderly"

// Server は注文サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// gate はトークンの発行と検証を行う。
	gate *auth.Gate
	// accounts はアカウントの永続化先。
	accounts *store.AccountStore
	// menu はメニュー項目の永続化先。
	menu *store.MenuStore
	// workflow は注文の確定とステータス遷移を行う。
	workflow *order.Workflow
	// events は注文イベントの記録先。
	events *store.EventStore
	// dispatcher は外部送信先への配信をリクエストから切り離す。送信先がない場合はnil。
	dispatcher *notify.Dispatcher
}

// New は新しいServerを生成する。注文イベントは常にDBへ同期的に記録する。
// publisherがnilでなければ、Runが起動するワーカー経由で非同期にも送信する。
func New(cfg *config.Config, db *store.DB, publisher order.Publisher) *Server {
	accounts := store.NewAccountStore(db)
	menu := store.NewMenuStore(db)
	events := store.NewEventStore(db)

	sinks := notify.Multi{events}
	var dispatcher *notify.Dispatcher
	if publisher != nil {
		dispatcher = notify.NewDispatcher(publisher, cfg.EventQueueSize)
		sinks = append(sinks, dispatcher)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:     router,
		gate:       auth.NewGate(accounts, cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		accounts:   accounts,
		menu:       menu,
		workflow:   order.NewWorkflow(accounts, menu, store.NewOrderStore(db), sinks),
		events:     events,
		dispatcher: dispatcher,
	}
	s.setupRoutes()
	return s
}

// Handler はHTTPハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はaddrでHTTPサーバーとイベント配信のワーカーを起動し、ctxが終了したらグレースフルシャットダウンする。
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", addr).Info("HTTPサーバーを起動します")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	if s.dispatcher != nil {
		g.Go(func() error {
			return s.dispatcher.Run(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("HTTPサーバーを停止します")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	staffOnly := auth.RequireRole(domain.RoleStaff)

	api := s.router.Group("/api")
	{
		// 認証とユーザー登録はトークン不要
		api.POST("/authenticate", s.handleAuthenticate())
		api.POST("/users/register", s.handleRegister())
	}

	protected := api.Group("", auth.Authenticate(s.gate))
	{
		menu := protected.Group("/menu-items")
		{
			menu.GET("", s.handleListMenuItems())
			menu.GET("/:id", s.handleGetMenuItem())
			menu.POST("", staffOnly, s.handleCreateMenuItem())
			menu.PUT("/:id", staffOnly, s.handleUpdateMenuItem())
			menu.DELETE("/:id", staffOnly, s.handleDeleteMenuItem())
		}

		orders := protected.Group("/orders")
		{
			orders.POST("", s.handlePlaceOrder())
			orders.GET("/user/:accountId", s.handleListAccountOrders())
			orders.GET("/:id", s.handleGetOrder())
			orders.GET("", staffOnly, s.handleListAllOrders())
			orders.PUT("/:id/status", staffOnly, s.handleUpdateStatus())
			orders.GET("/:id/events", staffOnly, s.handleListOrderEvents())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
}
