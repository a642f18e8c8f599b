package schema

import (
	"encoding/json"
	"errors"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks payload against s and returns every violation found, or nil.
// Declared fields are reported in schema order, then undeclared keys sorted by name.
func Validate(payload map[string]any, s Schema) ValidationErrors {
	var errs ValidationErrors

	for _, f := range s.Fields {
		value, present := payload[f.Name]
		if !present {
			if f.Required {
				errs = append(errs, ValidationError{Field: f.Name, Rule: RuleRequired})
			}
			continue
		}

		if value == nil {
			if !f.Nullable {
				errs = append(errs, ValidationError{Field: f.Name, Rule: RuleType, Param: string(f.Kind)})
			}
			continue
		}

		typed, ok := Coerce(value, f.Kind)
		if !ok {
			errs = append(errs, ValidationError{Field: f.Name, Rule: RuleType, Param: string(f.Kind)})
			continue
		}

		if f.Rules == "" {
			continue
		}
		if err := validate.Var(typed, f.Rules); err != nil {
			errs = append(errs, ruleViolation(f, err))
		}
	}

	var unknown []string
	for key := range payload {
		if !s.Allows(key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		errs = append(errs, ValidationError{Field: key, Rule: RuleUnknown})
	}

	return errs
}

// Coerce converts a decoded JSON value to the Go type for kind:
// string for KindString, int64 for KindInteger.
func Coerce(value any, kind Kind) (any, bool) {
	switch kind {
	case KindString:
		s, ok := value.(string)
		return s, ok
	case KindInteger:
		return toInt64(value)
	default:
		return nil, false
	}
}

func toInt64(value any) (any, bool) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		// 5.0 and 1e3 are whole numbers too
		f, err := v.Float64()
		if err != nil {
			return nil, false
		}
		return toInt64(f)
	case float64:
		if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return nil, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return nil, false
	}
}

func ruleViolation(f Field, err error) ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ValidationError{Field: f.Name, Rule: RuleFormat, Param: f.Rules}
	}

	tag := verrs[0].Tag()
	param := tag
	if p := verrs[0].Param(); p != "" {
		param = tag + "=" + p
	}

	rule := RuleFormat
	switch tag {
	case "gt", "gte", "lt", "lte", "min", "max", "len":
		rule = RuleRange
	}

	return ValidationError{Field: f.Name, Rule: rule, Param: param}
}
