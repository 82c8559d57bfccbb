package handlers

import (
	"github.com/easayliu/mediabox-download/internal/application/container"
	httputil "github.com/easayliu/mediabox-download/pkg/utils/http"
	"github.com/gin-gonic/gin"
)

// FolderHandler 下载目录处理器
type FolderHandler struct {
	container *container.ServiceContainer
}

// NewFolderHandler 创建目录处理器
func NewFolderHandler(container *container.ServiceContainer) *FolderHandler {
	return &FolderHandler{
		container: container,
	}
}

// ListFolders 列出已注册的下载目录
// @Summary 获取下载目录列表
// @Description 列出全部可作为保存位置的已注册目录
// @Tags 下载目录
// @Produce json
// @Success 200 {object} map[string]interface{} "目录列表"
// @Router /folders [get]
func (h *FolderHandler) ListFolders(c *gin.Context) {
	folders := h.container.GetFolderService().ListFolders()
	httputil.Success(c, gin.H{
		"folders": folders,
	})
}
