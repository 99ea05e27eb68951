package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/internal/service"
	pkgerrors "cabin-roster/backend/pkg/errors"
	"cabin-roster/backend/pkg/response"
)

// AreaHandler 区域配置 HTTP 处理器
type AreaHandler struct {
	areaSvc service.AreaService
}

// NewAreaHandler 创建 AreaHandler
func NewAreaHandler(areaSvc service.AreaService) *AreaHandler {
	return &AreaHandler{areaSvc: areaSvc}
}

// List 区域配置列表
// GET /api/v1/areas
func (h *AreaHandler) List(c *gin.Context) {
	list, err := h.areaSvc.List(c.Request.Context())
	if err != nil {
		h.handleAreaError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Update 修改单个区域
// PUT /api/v1/areas/:id
func (h *AreaHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "区域ID不能为空")
		return
	}

	var req dto.UpdateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	area, err := h.areaSvc.Update(c.Request.Context(), id, &req, GetOperator(c))
	if err != nil {
		h.handleAreaError(c, err)
		return
	}

	response.OK(c, area)
}

// GetOptions 特殊区域选项
// GET /api/v1/areas/options
func (h *AreaHandler) GetOptions(c *gin.Context) {
	opts, err := h.areaSvc.GetOptions(c.Request.Context())
	if err != nil {
		h.handleAreaError(c, err)
		return
	}

	response.OK(c, opts)
}

// UpdateOptions 保存特殊区域选项
// PUT /api/v1/areas/options
func (h *AreaHandler) UpdateOptions(c *gin.Context) {
	var req dto.SpecialOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	opts, err := h.areaSvc.UpdateOptions(c.Request.Context(), &req, GetOperator(c))
	if err != nil {
		h.handleAreaError(c, err)
		return
	}

	response.OK(c, opts)
}

// Needs 按当前配置估算所需人数
// GET /api/v1/areas/needs
func (h *AreaHandler) Needs(c *gin.Context) {
	needs, err := h.areaSvc.Needs(c.Request.Context())
	if err != nil {
		h.handleAreaError(c, err)
		return
	}

	response.OK(c, needs)
}

// handleAreaError 统一处理区域模块业务错误
func (h *AreaHandler) handleAreaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAreaNotFound):
		response.NotFound(c, 14001, "区域不存在")
	case errors.Is(err, service.ErrUnknownSuite):
		response.BadRequest(c, 14002, "该区域没有此套房")
	case errors.Is(err, service.ErrAreaNotFullCapable):
		response.BadRequest(c, 14003, "该区域不支持满员追加")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14004, "区域已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
