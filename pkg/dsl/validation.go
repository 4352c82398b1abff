package dsl

import "github.com/aretw0/qtree/pkg/domain"

// Equals is a condition or validation that passes when the value equals v.
func Equals(v any) domain.Validation {
	return &domain.AnyValidation{Equals: v}
}

// Present passes for any non-empty value.
func Present() domain.Validation {
	return &domain.AnyValidation{}
}

// OneOf passes when a string value is one of values.
func OneOf(values ...string) domain.Validation {
	return &domain.StringValidation{Enum: values}
}

// Includes passes when a list answer contains value.
func Includes(value string) domain.Validation {
	return &domain.StringArrayValidation{Contains: value}
}

// Optional marks v as not required and returns it.
func Optional(v domain.Validation) domain.Validation {
	setRequired(v, false)
	return v
}

func setRequired(v domain.Validation, required bool) {
	r := domain.Bool(required)
	switch t := v.(type) {
	case *domain.AnyValidation:
		t.Required = r
	case *domain.NumberValidation:
		t.Required = r
	case *domain.StringValidation:
		t.Required = r
	case *domain.StringArrayValidation:
		t.Required = r
	case *domain.FileValidation:
		t.Required = r
	case *domain.RemoteFuncValidation:
		t.Required = r
	case *domain.LocalFuncValidation:
		t.Required = r
	}
}
