// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"praxis-advisor-api/internal/config"
	"praxis-advisor-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// CharterPath 章程生成端点路径
const CharterPath = "/webhook/praxis-charter"

// HealthHandler 健康检查处理器
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Home 服务信息与健康检查
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router / [get]
func (h *HealthHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "online",
		Service:  h.cfg.App.Name,
		Version:  h.cfg.App.Version,
		Endpoint: CharterPath,
	})
}

// Live 存活检查
// @Summary 存活检查
// @Tags System
// @Produce json
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
