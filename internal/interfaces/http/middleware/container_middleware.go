package middleware

import (
	"github.com/easayliu/mediabox-download/internal/application/container"
	"github.com/gin-gonic/gin"
)

// ContainerMiddleware 服务容器中间件
// 将ServiceContainer注入到gin.Context中,供handlers使用
// 这样避免了在每个handler中重复LoadConfig和创建各种Client
func ContainerMiddleware(c *container.ServiceContainer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// 将container注入到context
		ctx.Set("container", c)
		ctx.Next()
	}
}
