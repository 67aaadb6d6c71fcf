// Calibrec - Calibrated Recommendation Re-ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calibrec

// Package validation wraps go-playground/validator v10 with a shared
// instance, calibrec-specific tags and readable messages.
//
// Field names in messages are the koanf keys, so an error points at the
// exact configuration key to fix:
//
//	type DataConfig struct {
//	    Preferences string `koanf:"preferences" validate:"required,datafile"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("invalid config: %w", err)
//	}
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// DataExtensions are the file extensions the dataset loader can read.
var DataExtensions = []string{".csv", ".tsv", ".parquet", ".json", ".ndjson"}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

// Error returns the readable message.
func (e FieldError) Error() string {
	return e.Message
}

// Errors collects every failed rule of a struct.
type Errors []FieldError

// Error joins the messages.
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve))
	for i := range ve {
		msgs[i] = ve[i].Message
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the failing field names.
func (ve Errors) Fields() []string {
	out := make([]string, len(ve))
	for i := range ve {
		out[i] = ve[i].Field
	}
	return out
}

// GetValidator returns the shared validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(koanfName)
		// Registration only fails on an empty tag or nil func.
		_ = validate.RegisterValidation("datafile", isDataFile)
	})
	return validate
}

// koanfName reports fields by their koanf key, falling back to the Go name.
func koanfName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// isDataFile accepts paths with a supported extension.
func isDataFile(fl validator.FieldLevel) bool {
	ext := strings.ToLower(filepath.Ext(fl.Field().String()))
	for _, e := range DataExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ValidateStruct validates s. It returns nil or an Errors value.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "datafile":
		return fmt.Sprintf("%s must end in one of %s", field, strings.Join(DataExtensions, ", "))
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", field)
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
