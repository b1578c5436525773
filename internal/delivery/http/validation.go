package http

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Harsh-BH/dispatch/internal/domain"
)

var registerValidators sync.Once

// useCustomValidators adds the tags our request DTOs rely on to gin's validator.
func useCustomValidators() {
	registerValidators.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("when", func(fl validator.FieldLevel) bool {
			return domain.ValidWhen(fl.Field().String())
		})
	})
}
