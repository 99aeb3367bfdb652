// Package validation binds request input through gin's validator/v10 engine
// and converts failures into field level API errors.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]+$`)

	registerOnce sync.Once
)

// Register installs the custom rules on gin's validator engine and makes
// the JSON decoder reject unknown fields.
func Register() {
	registerOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(fieldName)

		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return strongPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("slugchars", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func strongPassword(s string) bool {
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// BindJSON decodes the request body into obj and validates it. An empty
// body is validated as an empty object so missing fields are reported. The
// body must hold exactly one JSON value.
func BindJSON(c *gin.Context, obj any) error {
	Register()

	var body []byte
	if c.Request.Body != nil {
		var err error
		if body, err = io.ReadAll(c.Request.Body); err != nil {
			return apperr.BadRequest("Invalid JSON body")
		}
	}

	var err error
	switch {
	case len(bytes.TrimSpace(body)) == 0:
		err = binding.Validator.ValidateStruct(obj)
	case !json.Valid(body):
		return apperr.BadRequest("Invalid JSON body")
	default:
		err = binding.JSON.BindBody(body, obj)
	}
	if err == nil {
		return nil
	}

	return translate(err)
}

// BindQuery binds and validates query parameters, applying form defaults.
func BindQuery(c *gin.Context, obj any) error {
	Register()

	err := c.ShouldBindQuery(obj)
	if err == nil {
		return nil
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return queryParseError(c, obj, numErr.Num)
	}
	return translate(err)
}

// queryParseError reports which form key carried the value that did not
// parse into its numeric or boolean field.
func queryParseError(c *gin.Context, obj any, raw string) error {
	name, kind := queryField(c, reflect.TypeOf(obj), raw)
	if name == "" {
		return apperr.Validation([]types.FieldError{{Field: "query", Message: "Invalid query parameter"}})
	}

	msg := name + " is invalid"
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		msg = name + " must be an integer"
	case reflect.Float32, reflect.Float64:
		msg = name + " must be a number"
	case reflect.Bool:
		msg = name + " must be true or false"
	}
	return apperr.Validation([]types.FieldError{{Field: name, Message: msg}})
}

func queryField(c *gin.Context, t reflect.Type, raw string) (string, reflect.Kind) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return "", reflect.Invalid
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			if name, kind := queryField(c, f.Type, raw); name != "" {
				return name, kind
			}
			continue
		}

		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" || !slices.Contains(c.QueryArray(name), raw) {
			continue
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer || ft.Kind() == reflect.Slice {
			ft = ft.Elem()
		}
		return name, ft.Kind()
	}
	return "", reflect.Invalid
}

// Struct validates an already populated value.
func Struct(obj any) error {
	Register()

	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]types.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, types.FieldError{
				Field:   fieldPath(fe),
				Message: message(fe),
			})
		}
		return apperr.Validation(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		msg := fmt.Sprintf("Expected %s, received %s", typeErr.Type.Kind(), typeErr.Value)
		if typeErr.Type == dateType {
			msg = "Invalid date, expected YYYY-MM-DD or an RFC 3339 timestamp"
		}
		return apperr.Validation([]types.FieldError{{Field: typeErr.Field, Message: msg}})
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperr.BadRequest("Invalid JSON body")
	}

	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return apperr.Validation([]types.FieldError{{
			Field:   strings.Trim(field, `"`),
			Message: "Unrecognized field",
		}})
	}

	return apperr.BadRequest("Invalid request")
}

// fieldPath drops the top level struct name from the namespace so nested
// fields read as "interests[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email address"
	case "url":
		return "Invalid url"
	case "uuid", "uuid4":
		return "Invalid id"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "username":
		return "Username can only contain letters, numbers, and underscores"
	case "password":
		return "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	case "slugchars":
		return "Only lowercase letters, numbers and hyphens are allowed"
	case "min", "gte":
		if isLength(fe.Kind()) {
			return fmt.Sprintf("%s must contain at least %s character(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max", "lte":
		if isLength(fe.Kind()) {
			return fmt.Sprintf("%s must contain at most %s character(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	}

	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

func isLength(kind reflect.Kind) bool {
	return kind == reflect.String || kind == reflect.Slice || kind == reflect.Map
}
