// Пакет validation — проверка форм и тел запросов через go-playground/validator.
// Сообщения об ошибках на китайском; поле может задать своё сообщение
// тегом msg, иначе оно строится по имени правила.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate

	codePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// Validator возвращает общий экземпляр валидатора.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonName)
		// vcode — шестизначный код из письма
		_ = validate.RegisterValidation("vcode", func(fl validator.FieldLevel) bool {
			return codePattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// FieldError — ошибка одного поля.
type FieldError struct {
	Field   string
	Message string
}

// Error — ошибки проверки всех полей структуры.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// First возвращает сообщение первой ошибки.
func (e *Error) First() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Message
}

// Struct проверяет структуру s. Возвращает *Error или nil.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: message(t, fe),
		})
	}
	return out
}

// message строит текст ошибки: тег msg поля или сообщение по правилу.
func message(t reflect.Type, fe validator.FieldError) string {
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if msg := f.Tag.Get("msg"); msg != "" {
				return msg
			}
		}
	}

	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s是必填字段", field)
	case "min":
		return fmt.Sprintf("%s长度不能小于%s", field, param)
	case "max":
		return fmt.Sprintf("%s长度不能大于%s", field, param)
	case "len":
		return fmt.Sprintf("%s长度必须为%s", field, param)
	case "email":
		return fmt.Sprintf("%s必须是有效的邮箱地址", field)
	case "oneof":
		return fmt.Sprintf("%s必须是以下值之一: %s", field, param)
	case "eqfield":
		return fmt.Sprintf("%s必须与%s一致", field, param)
	case "vcode":
		return fmt.Sprintf("%s必须是6位数字", field)
	default:
		return fmt.Sprintf("%s验证失败: %s", field, fe.Tag())
	}
}

// jsonName — имя поля из json-тега.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
