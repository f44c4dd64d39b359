package api

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"

	"github.com/go-playground/validator/v10"
)

// validatePhoneNumber проверяет формат номера телефона: ведущий '+',
// далее только цифры, длина от 7 до 20 символов.
func validatePhoneNumber(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if len(str) < 7 || len(str) > 20 || str[0] != '+' {
		return false
	}
	for _, r := range str[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func registerValidators() error {
	v, _ := binding.Validator.Engine().(*validator.Validate)
	if err := v.RegisterValidation("phone_number", validatePhoneNumber); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	return nil
}
