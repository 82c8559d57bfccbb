package handlers

import (
	"net/http"

	"github.com/easayliu/mediabox-download/internal/application/container"
	"github.com/easayliu/mediabox-download/internal/application/contracts"
	httputil "github.com/easayliu/mediabox-download/pkg/utils/http"
	"github.com/gin-gonic/gin"
)

// TaskHandler REST任务处理器 - 纯协议转换层
type TaskHandler struct {
	container *container.ServiceContainer
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(container *container.ServiceContainer) *TaskHandler {
	return &TaskHandler{
		container: container,
	}
}

// DetectPlatform 识别URL所属平台
// @Summary 平台识别
// @Description 识别URL所属平台并给出推荐下载器,不创建任务
// @Tags 下载任务
// @Accept json
// @Produce json
// @Param request body contracts.DetectRequest true "识别请求"
// @Success 200 {object} contracts.DetectResponse "识别结果"
// @Failure 400 {object} map[string]interface{} "URL格式非法"
// @Router /task-detect [post]
func (h *TaskHandler) DetectPlatform(c *gin.Context) {
	var req contracts.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.ErrorWithStatus(c, http.StatusBadRequest, 400, "Invalid request parameters: "+err.Error())
		return
	}

	response, err := h.container.GetTaskService().DetectPlatform(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.Success(c, response)
}

// CreateTask 创建下载任务
// @Summary 创建下载任务
// @Description 识别平台、校验目录后异步开始下载,立即返回任务ID
// @Tags 下载任务
// @Accept json
// @Produce json
// @Param request body contracts.TaskCreateRequest true "创建任务请求"
// @Success 200 {object} contracts.TaskCreateResponse "任务创建成功"
// @Failure 400 {object} map[string]interface{} "请求参数错误"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /task-create [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	// 1. 解析HTTP请求 - 协议转换
	var req contracts.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.ErrorWithStatus(c, http.StatusBadRequest, 400, "Invalid request parameters: "+err.Error())
		return
	}

	// 2. 调用应用服务 - 业务逻辑委托
	response, err := h.container.GetTaskService().CreateTask(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 3. 返回HTTP响应 - 协议转换
	httputil.Success(c, response)
}

// ListTasks 获取任务列表
// @Summary 获取任务列表
// @Description 获取所有下载任务的一致性快照,按创建时间倒序
// @Tags 下载任务
// @Produce json
// @Success 200 {object} contracts.TaskListResponse "任务列表"
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	response, err := h.container.GetTaskService().ListTasks(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.Success(c, response)
}

// GetTask 获取单个任务
// @Summary 获取任务详情
// @Description 根据任务ID获取下载任务的详细信息
// @Tags 下载任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} contracts.TaskResponse "任务详情"
// @Failure 404 {object} map[string]interface{} "任务不存在"
// @Router /task/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		httputil.ErrorWithStatus(c, http.StatusBadRequest, 400, "Task ID is required")
		return
	}

	response, err := h.container.GetTaskService().GetTask(c.Request.Context(), taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.Success(c, response)
}

// DeleteTask 取消或删除任务
// @Summary 取消或删除任务
// @Description 活动任务发出取消信号,终态任务删除记录
// @Tags 下载任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} contracts.TaskDeleteResponse "操作结果"
// @Failure 404 {object} map[string]interface{} "任务不存在"
// @Router /task/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		httputil.ErrorWithStatus(c, http.StatusBadRequest, 400, "Task ID is required")
		return
	}

	response, err := h.container.GetTaskService().CancelOrDeleteTask(c.Request.Context(), taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.Success(c, response)
}

// ClearHistory 清空任务历史
// @Summary 清空任务历史
// @Description 一次性清除所有终态任务记录,活动任务不受影响
// @Tags 下载任务
// @Produce json
// @Success 200 {object} contracts.ClearHistoryResponse "清除结果"
// @Router /history [delete]
func (h *TaskHandler) ClearHistory(c *gin.Context) {
	response, err := h.container.GetTaskService().ClearHistory(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	httputil.Success(c, response)
}

// respondError 将业务错误映射为HTTP响应
func (h *TaskHandler) respondError(c *gin.Context, err error) {
	if serviceErr, ok := err.(*contracts.ServiceError); ok {
		statusCode := mapErrorCodeToHTTPStatus(serviceErr.Code)
		c.JSON(statusCode, gin.H{
			"code":    serviceErr.Code,
			"message": serviceErr.Message,
			"details": serviceErr.Details,
		})
		return
	}
	httputil.ErrorWithStatus(c, http.StatusInternalServerError, 500, err.Error())
}

// mapErrorCodeToHTTPStatus 将业务错误码映射到HTTP状态码
func mapErrorCodeToHTTPStatus(code contracts.ErrorCode) int {
	switch code {
	case contracts.ErrorCodeInvalidRequest,
		contracts.ErrorCodeInvalidURL,
		contracts.ErrorCodeDestinationInvalid:
		return http.StatusBadRequest
	case contracts.ErrorCodeUnsupportedPlatform:
		return http.StatusUnprocessableEntity
	case contracts.ErrorCodeAuthRequired:
		return http.StatusUnauthorized
	case contracts.ErrorCodeNotFound, contracts.ErrorCodeTaskNotFound:
		return http.StatusNotFound
	case contracts.ErrorCodeTimeout:
		return http.StatusRequestTimeout
	case contracts.ErrorCodeBackendFailure:
		return http.StatusBadGateway
	case contracts.ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
