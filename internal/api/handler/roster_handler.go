package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/internal/service"
	pkgerrors "cabin-roster/backend/pkg/errors"
	"cabin-roster/backend/pkg/response"
)

// RosterHandler 当日名单 HTTP 处理器
type RosterHandler struct {
	rosterSvc service.RosterService
	maxUpload int64
}

// NewRosterHandler 创建 RosterHandler
func NewRosterHandler(rosterSvc service.RosterService, maxUpload int64) *RosterHandler {
	return &RosterHandler{rosterSvc: rosterSvc, maxUpload: maxUpload}
}

// Get 当前名单
// GET /api/v1/roster
func (h *RosterHandler) Get(c *gin.Context) {
	result, err := h.rosterSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Replace 整体替换名单
// PUT /api/v1/roster
func (h *RosterHandler) Replace(c *gin.Context) {
	var req dto.ReplaceRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.rosterSvc.Replace(c.Request.Context(), req.Names)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ImportFile 上传名单 Excel（第一列为姓名）
// POST /api/v1/roster/import
func (h *RosterHandler) ImportFile(c *gin.Context) {
	file, ok := openUpload(c, h.maxUpload)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.rosterSvc.ImportFile(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInvalidWorkbook) {
			response.BadRequest(c, 13001, "无法读取上传的 Excel 文件")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}
