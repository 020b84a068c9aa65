package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/senkronix/b2b-bridge/internal/domain/order"
)

// SetupValidator configures gin's binding validator: error messages use JSON
// field names, and the orderstatus tag checks lifecycle states at bind time.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
		_, err := order.ParseStatus(fl.Field().String())
		return err == nil
	})
}
