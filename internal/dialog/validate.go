package dialog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldErrors turns validator output into per-field messages. Other errors
// yield nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "min":
		if isString {
			return fmt.Sprintf("deve ter pelo menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser menor ou igual a %s", fe.Param())
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", fe.Param())
	case "gte":
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	case "lte":
		return fmt.Sprintf("deve ser menor ou igual a %s", fe.Param())
	case "email":
		return "e-mail inválido"
	case "url":
		return "URL inválida"
	case "oneof":
		return fmt.Sprintf("valor deve ser um de: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "valor inválido"
	}
}
