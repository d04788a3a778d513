package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nao1215/orderly/pkg/httpclient"
	log "github.com/sirupsen/logrus"
)

// requestIDKey はginコンテキストにリクエストIDを格納するキー。
const requestIDKey = "request_id"

// maxRequestIDLen は受け入れるX-Request-IDの最大長。超える場合は新たに採番する。
const maxRequestIDLen = 128

// RequestID はX-Request-IDを引き継ぐか採番し、レスポンスヘッダーとコンテキストに設定する。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(httpclient.HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Request = c.Request.WithContext(httpclient.WithRequestID(c.Request.Context(), id))
		c.Header(httpclient.HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID はRequestIDが設定したIDを返す。
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger はリクエストごとにアクセスログを出力する。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": GetRequestID(c),
		})
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
