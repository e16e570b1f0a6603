package handlers

import (
	"errors"
	"io"
	"net/http"

	"kkmk/internal/middleware"
	"kkmk/internal/models"
	"kkmk/internal/services"
	"kkmk/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusOf 引擎错误类别 → HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError 已知错误直接返回其消息；存储故障记日志，只返回 fallback
func respondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error(fallback, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// paramID 解析路径参数，失败时已写入 400
func paramID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		badRequest(c, "Invalid "+name)
	}
	return id, ok
}

// currentUser 由 AuthRequired 保证存在
func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// bindOptionalJSON 允许空请求体
func bindOptionalJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
