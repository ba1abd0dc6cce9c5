package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names (userId) instead of Go field names (UserId)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateRequest runs struct validation and turns the first failure into a
// 400 fiber error with a readable message.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		switch fe.Tag() {
		case "required":
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is required", fe.Field()))
		default:
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
