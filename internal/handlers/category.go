package handlers

import (
	"net/http"

	"kkmk/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	svc *services.ForumService
	log *zap.Logger
}

func NewCategoryHandler(svc *services.ForumService, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, log: log}
}

// List 所有分类及帖子数
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}
