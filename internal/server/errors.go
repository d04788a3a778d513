package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/orderly/internal/domain"
	"github.com/nao1215/orderly/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// internalErrorMessage は5xxで返す固定メッセージ。内部の詳細は含めない。
const internalErrorMessage = "内部サーバーエラーが発生しました"

// errInvalidID はパスのIDが数値でないことを表す。
var errInvalidID = errors.New("IDが不正です")

// statusFor はエラーに対応するHTTPステータスを返す。
func statusFor(err error) int {
	switch {
	case domain.IsAuth(err):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsValidation(err), errors.Is(err, errInvalidID):
		return http.StatusBadRequest
	case domain.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError はエラーをJSONで返す。5xxの場合は原因をログに記録する。
func respondError(c *gin.Context, err error) {
	respondErrorStatus(c, statusFor(err), err)
}

// respondErrorStatus は指定したステータスでエラーを返す。
func respondErrorStatus(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": middleware.GetRequestID(c),
		}).Error("リクエストの処理に失敗")
		c.JSON(status, gin.H{"error": internalErrorMessage})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// paramID はパスパラメータを正の整数IDとして読み取る。
func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
