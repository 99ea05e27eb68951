package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/internal/service"
	pkgerrors "cabin-roster/backend/pkg/errors"
	"cabin-roster/backend/pkg/response"
)

// AssignmentHandler 分配模块 HTTP 处理器
type AssignmentHandler struct {
	assignSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignSvc: assignSvc}
}

// Generate 按当前名单、偏好与区域配置生成一次分配
// POST /api/v1/assignments
func (h *AssignmentHandler) Generate(c *gin.Context) {
	run, err := h.assignSvc.Generate(c.Request.Context(), GetOperator(c))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, run)
}

// List 历史分配（分页，新的在前）
// GET /api/v1/assignments?page=1&page_size=20
func (h *AssignmentHandler) List(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.assignSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Latest 最近一次分配
// GET /api/v1/assignments/latest
func (h *AssignmentHandler) Latest(c *gin.Context) {
	run, err := h.assignSvc.Latest(c.Request.Context())
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, run)
}

// Get 分配详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	run, err := h.assignSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, run)
}

// UpdateCell 手动修改单个任务的员工
// PUT /api/v1/assignments/:id/cells
func (h *AssignmentHandler) UpdateCell(c *gin.Context) {
	var req dto.UpdateCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	run, err := h.assignSvc.UpdateCell(c.Request.Context(), c.Param("id"), &req, GetOperator(c))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, run)
}

// Duplicates 检查同一员工是否出现在多个任务中
// GET /api/v1/assignments/:id/duplicates
func (h *AssignmentHandler) Duplicates(c *gin.Context) {
	result, err := h.assignSvc.CheckDuplicates(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAssignmentError 统一处理分配模块业务错误
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		response.NotFound(c, 15001, "分配记录不存在")
	case errors.Is(err, service.ErrCellNotFound):
		response.NotFound(c, 15002, "区域或任务不存在")
	case errors.Is(err, service.ErrCellReadOnly):
		response.BadRequest(c, 15003, "该单元格不可修改")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15004, "分配结果已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrGenerateFailed):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
