package errors

import "errors"

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

	// ErrInvalidWorkbook 上传的文件不是可读取的 xlsx 工作簿
	ErrInvalidWorkbook = errors.New("无法读取上传的 Excel 文件")
)
