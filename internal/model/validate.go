package model

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// violationMessages тексты нарушений по ключу "<поле>.<правило>"
var violationMessages = map[string]string{
	"Content.required":   "Content cannot be null",
	"CreatedAt.required": "Created time cannot be null",
	"Name.required":      "name cannot be null",
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Поля в сообщениях называются так же, как в JSON: content, createdAt, tags[0].name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		r := []rune(f.Name)
		r[0] = unicode.ToLower(r[0])
		return string(r)
	})
	return v
}

func validateStruct(entity any) error {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	cErr := &ConstraintError{Entity: reflect.TypeOf(entity).Name()}
	for _, fe := range fieldErrs {
		msg, ok := violationMessages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = "failed on the '" + fe.Tag() + "' constraint"
		}
		cErr.Violations = append(cErr.Violations, Violation{
			Field:   fieldPath(fe.Namespace()),
			Message: msg,
		})
	}
	return cErr
}

// fieldPath отрезает имя корневой структуры: "Note.tags[0].name" -> "tags[0].name"
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
