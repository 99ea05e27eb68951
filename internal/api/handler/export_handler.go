package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"cabin-roster/backend/internal/service"
	"cabin-roster/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRun 导出分配结果
// GET /api/v1/export/assignments/:id
func (h *ExportHandler) ExportRun(c *gin.Context) {
	runID := c.Param("id")
	if runID == "" {
		response.BadRequest(c, 10001, "分配记录ID不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportRun(c.Request.Context(), runID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		response.NotFound(c, 16101, "分配记录不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
