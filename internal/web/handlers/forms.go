package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type RegisterForm struct {
	Email           string `form:"email" binding:"required"`
	Username        string `form:"username" binding:"required"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// bindForm binds a posted form. Only presence is enforced; there is no
// field-format validation beyond that.
func bindForm(ctx *gin.Context, out interface{}) error {
	return ctx.ShouldBind(out)
}

// formErrorMessage flattens a binding failure into one user-facing
// notice. Validator reports which fields are missing, the user just
// needs to fill them in.
func formErrorMessage(err error) string {
	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		return "Vui lòng điền đầy đủ thông tin."
	}

	return "Yêu cầu không hợp lệ. Vui lòng thử lại."
}
