package dto

import (
	"github.com/go-playground/validator/v10"

	"cabin-roster/backend/internal/roster"
)

// RegisterValidators 注册自定义校验规则
//
//	area_code: 区域偏好代码（8 BACK、DECK 5 等，大小写与多余空白不敏感）
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("area_code", func(fl validator.FieldLevel) bool {
		return roster.IsAreaPreferenceCode(fl.Field().String())
	})
}
