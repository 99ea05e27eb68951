package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/internal/service"
	pkgerrors "cabin-roster/backend/pkg/errors"
	"cabin-roster/backend/pkg/response"
)

// PreferenceHandler 员工偏好模块 HTTP 处理器
type PreferenceHandler struct {
	prefSvc   service.PreferenceService
	maxUpload int64
}

// NewPreferenceHandler 创建 PreferenceHandler
func NewPreferenceHandler(prefSvc service.PreferenceService, maxUpload int64) *PreferenceHandler {
	return &PreferenceHandler{prefSvc: prefSvc, maxUpload: maxUpload}
}

// List 偏好列表（按导入顺序）
// GET /api/v1/preferences
func (h *PreferenceHandler) List(c *gin.Context) {
	list, err := h.prefSvc.List(c.Request.Context())
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Import 以 JSON 导入偏好，同名员工整体覆盖
// POST /api/v1/preferences
func (h *PreferenceHandler) Import(c *gin.Context) {
	var req dto.ImportPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.prefSvc.Import(c.Request.Context(), req.Preferences, GetOperator(c))
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.Created(c, result)
}

// ImportFile 上传偏好 Excel
// POST /api/v1/preferences/import
func (h *PreferenceHandler) ImportFile(c *gin.Context) {
	file, ok := openUpload(c, h.maxUpload)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.prefSvc.ImportFile(c.Request.Context(), file, GetOperator(c))
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.Created(c, result)
}

// Clear 清空全部偏好
// DELETE /api/v1/preferences
func (h *PreferenceHandler) Clear(c *gin.Context) {
	result, err := h.prefSvc.Clear(c.Request.Context())
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.OK(c, result)
}

// Remove 删除单个员工的偏好
// DELETE /api/v1/preferences/:name
func (h *PreferenceHandler) Remove(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		response.BadRequest(c, 10001, "员工姓名不能为空")
		return
	}

	if err := h.prefSvc.Remove(c.Request.Context(), name); err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	response.OK(c, nil)
}

// Template 下载偏好填写模板
// GET /api/v1/preferences/template
func (h *PreferenceHandler) Template(c *gin.Context) {
	buf, filename, err := h.prefSvc.Template(c.Request.Context())
	if err != nil {
		h.handlePreferenceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}

// Match 调试任务名与偏好的匹配
// POST /api/v1/preferences/match
func (h *PreferenceHandler) Match(c *gin.Context) {
	var req dto.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	response.OK(c, h.prefSvc.TestMatch(&req))
}

// handlePreferenceError 统一处理偏好模块业务错误
func (h *PreferenceHandler) handlePreferenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPreferenceNotFound):
		response.NotFound(c, 12001, "该员工没有偏好记录")
	case errors.Is(err, service.ErrNoValidPreferences):
		response.BadRequest(c, 12002, "没有可导入的偏好行")
	case errors.Is(err, pkgerrors.ErrInvalidWorkbook):
		response.BadRequest(c, 12003, "无法读取上传的 Excel 文件")
	default:
		response.InternalError(c)
	}
}
