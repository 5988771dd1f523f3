// Package validation runs ordered field-constraint tables built on
// go-playground/validator.
//
// A table is a plain struct whose fields carry a `validate` tag and the
// user-facing message to report when that field fails. Fields are checked in
// declaration order and the first failure wins:
//
//	type createCommunity struct {
//		Name string `json:"name" validate:"min=5,max=100" msg:"Community name must be between 5 and 100 characters."`
//	}
//
// A field may override the message for a single tag with `msg_<tag>`, e.g.
// `msg_required:"Please input all fields."`.
package validation

import (
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
)

// ImageExtensions lists the accepted cover file extensions.
var ImageExtensions = []string{"jpg", "jpeg", "png"}

// Validator checks field tables and reports the first failure as a domain error.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the custom tags used by the field tables.
func New() *Validator {
	v := validator.New()

	// Custom tags are registered before any table runs; registration only
	// fails on an empty tag name.
	_ = v.RegisterValidation("isodate", isoDate)
	_ = v.RegisterValidation("imageext", imageExt)
	_ = v.RegisterValidation("notblank", notBlank)

	return &Validator{v: v}
}

// Validate checks every tagged field of the struct s in declaration order.
// The first failing field is returned as errors.InvalidField carrying the
// field's JSON name and its configured message.
func (v *Validator) Validate(s any) error {
	rv := reflect.Indirect(reflect.ValueOf(s))
	if rv.Kind() != reflect.Struct {
		return domainerrors.Internal("validation table must be a struct")
	}
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || tag == "-" {
			continue
		}

		err := v.v.Var(rv.Field(i).Interface(), tag)
		if err == nil {
			continue
		}

		failed := ""
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			failed = fieldErrs[0].Tag()
		}
		return domainerrors.InvalidField(jsonName(field), message(field, failed))
	}
	return nil
}

func message(field reflect.StructField, failedTag string) string {
	if failedTag != "" {
		if m, ok := field.Tag.Lookup("msg_" + failedTag); ok {
			return m
		}
	}
	if m := field.Tag.Get("msg"); m != "" {
		return m
	}
	return jsonName(field) + " is invalid."
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

// isoDate accepts a YYYY-MM-DD calendar date.
func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// imageExt accepts a file name whose extension is an allowed image format.
func imageExt(fl validator.FieldLevel) bool {
	return IsImageExtension(fl.Field().String())
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// IsImageExtension reports whether filename ends in an accepted image
// extension. The comparison ignores case.
func IsImageExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
