// Package schema validates decoded JSON objects against declarative field
// schemas. Value rules are go-playground/validator tags evaluated per field.
package schema

import (
	"fmt"
	"strings"
)

// Kind is the JSON type a field must carry.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
)

// Rule names the check a value failed.
type Rule string

const (
	RuleRequired Rule = "required"
	RuleType     Rule = "type"
	RuleUnknown  Rule = "unknown"
	RuleRange    Rule = "range"
	RuleFormat   Rule = "format"
)

// Field describes one allowed key of a payload.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Nullable bool   // JSON null is accepted and means "no value"
	Rules    string // validator tag, e.g. "gt=0" or "http_url"
}

// Schema is an ordered set of fields. Keys outside the set are rejected.
type Schema struct {
	Name   string
	Fields []Field
}

// Allows reports whether key is declared by the schema.
func (s Schema) Allows(key string) bool {
	for _, f := range s.Fields {
		if f.Name == key {
			return true
		}
	}
	return false
}

// ValidationError describes a single violation.
type ValidationError struct {
	Field string `json:"field"`
	Rule  Rule   `json:"rule"`
	Param string `json:"param,omitempty"` // validator tag that failed, for range and format rules
}

func (e ValidationError) Error() string {
	switch e.Rule {
	case RuleRequired:
		return e.Field + " is required"
	case RuleUnknown:
		return e.Field + " is not allowed"
	case RuleType:
		return e.Field + " must be " + article(Kind(e.Param))
	case RuleRange:
		return e.Field + " " + describeRange(e.Param)
	default:
		return e.Field + " " + describeFormat(e.Param)
	}
}

// ValidationErrors is the full result of validating one payload.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	return strings.Join(v.Messages(), "; ")
}

// Messages renders each violation as a sentence, in order.
func (v ValidationErrors) Messages() []string {
	messages := make([]string, len(v))
	for i, e := range v {
		messages[i] = e.Error()
	}
	return messages
}

func describeRange(tag string) string {
	name, param, _ := strings.Cut(tag, "=")
	switch name {
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be at least " + param
	case "lt":
		return "must be less than " + param
	case "lte":
		return "must be at most " + param
	case "min":
		if param == "1" {
			return "must not be empty"
		}
		return "must be at least " + param + " characters long"
	case "max":
		return "must be at most " + param + " characters long"
	case "len":
		return "must be exactly " + param + " characters long"
	default:
		return fmt.Sprintf("is out of range (%s)", tag)
	}
}

func article(kind Kind) string {
	switch kind {
	case KindInteger:
		return "an integer"
	case KindString:
		return "a string"
	default:
		return string(kind)
	}
}

func describeFormat(tag string) string {
	switch tag {
	case "url", "http_url":
		return "must be a valid URL"
	case "isbn", "isbn10", "isbn13":
		return "must be a valid ISBN"
	default:
		return fmt.Sprintf("is invalid (%s)", tag)
	}
}
