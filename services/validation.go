package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"socialgraph/apperrors"

	"github.com/go-playground/validator/v10"
)

const MaxMessageBytes = 2000

var (
	// буквы, цифры и @ . + - _
	usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)
	// формат '+999999999999', разделители между группами цифр допускаются
	phoneRegex = regexp.MustCompile(`^\+\d{3}[\s\S]*\d{2}[\s\S]*\d{3}[\s\S]*\d{2}[\s\S]*\d{2}$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	// встроенный max считает руны, а лимит сообщения - в байтах
	_ = validate.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
}

type profileInput struct {
	Username string `validate:"required,min=3,max=100,username"`
	Phone    string `validate:"omitempty,max=50,phone"`
}

type messageInput struct {
	Text string `validate:"required,maxbytes=2000"`
}

// validateStruct превращает ошибки валидатора в apperrors.KindInvalidInput
func validateStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperrors.Wrap(err, apperrors.KindInvalidInput, "invalid input")
	}
	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperrors.New(apperrors.KindInvalidInput, strings.Join(parts, "; "))
}

func requireCaller(me int64) error {
	if me <= 0 {
		return apperrors.New(apperrors.KindUnauthenticated, "caller identity is missing")
	}
	return nil
}
