package handlers

import (
	"net/http"

	"github.com/easayliu/mediabox-download/internal/application/container"
	"github.com/gin-gonic/gin"
)

// HealthCheck 健康检查
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags 健康检查
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Mediabox download service is running",
	})
}

// ServiceHealth 服务组件健康状态
// @Summary 服务组件健康状态
// @Description 返回容器内各服务的初始化状态与任务统计
// @Tags 健康检查
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/services [get]
func ServiceHealth(container *container.ServiceContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, container.GetServiceHealth())
	}
}
