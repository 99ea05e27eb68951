package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabin-roster/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// openUpload 读取 multipart 字段 "file"，超过 maxBytes 时返回 413
func openUpload(c *gin.Context, maxBytes int64) (multipart.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件（字段名 file）")
		return nil, false
	}
	if maxBytes > 0 && header.Size > maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "上传文件过大")
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传的文件")
		return nil, false
	}
	return file, true
}
