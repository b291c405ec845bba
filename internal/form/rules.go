package form

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Rule validates a single value. The returned error's message is shown to the
// user as is.
type Rule func(value any) error

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func tagValidator() *validator.Validate {
	validateOnce.Do(func() { validate = validator.New() })
	return validate
}

// Required rejects nil, empty strings and whitespace-only strings.
func Required(message string) Rule {
	return func(value any) error {
		if isEmpty(value) {
			return errors.New(message)
		}
		return nil
	}
}

// Optional runs rules only when the value is not empty.
func Optional(rules ...Rule) Rule {
	return func(value any) error {
		if isEmpty(value) {
			return nil
		}
		for _, r := range rules {
			if err := r(value); err != nil {
				return err
			}
		}
		return nil
	}
}

// MinLength requires at least n characters.
func MinLength(n int, message string) Rule {
	return func(value any) error {
		if utf8.RuneCountInString(stringOf(value)) < n {
			return errors.New(message)
		}
		return nil
	}
}

// MaxLength allows at most n characters.
func MaxLength(n int, message string) Rule {
	return func(value any) error {
		if utf8.RuneCountInString(stringOf(value)) > n {
			return errors.New(message)
		}
		return nil
	}
}

// Pattern requires the value to match re.
func Pattern(re *regexp.Regexp, message string) Rule {
	return func(value any) error {
		if !re.MatchString(stringOf(value)) {
			return errors.New(message)
		}
		return nil
	}
}

// Email requires a syntactically valid email address.
func Email(message string) Rule {
	return tag("email", message)
}

// URL requires an absolute URL.
func URL(message string) Rule {
	return tag("url", message)
}

func tag(name, message string) Rule {
	return func(value any) error {
		if err := tagValidator().Var(stringOf(value), "required,"+name); err != nil {
			return errors.New(message)
		}
		return nil
	}
}

// OneOf requires the value to equal one of options.
func OneOf(message string, options ...string) Rule {
	return func(value any) error {
		s := stringOf(value)
		for _, o := range options {
			if s == o {
				return nil
			}
		}
		return errors.New(message)
	}
}

// Min requires a numeric value >= min. Strings are parsed as decimals.
func Min(min decimal.Decimal, message string) Rule {
	return func(value any) error {
		n, err := numberOf(value)
		if err != nil || n.LessThan(min) {
			return errors.New(message)
		}
		return nil
	}
}

// Max requires a numeric value <= max.
func Max(max decimal.Decimal, message string) Rule {
	return func(value any) error {
		n, err := numberOf(value)
		if err != nil || n.GreaterThan(max) {
			return errors.New(message)
		}
		return nil
	}
}

// Custom wraps a predicate.
func Custom(message string, ok func(value any) bool) Rule {
	return func(value any) error {
		if !ok(value) {
			return errors.New(message)
		}
		return nil
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	}
	return false
}

func stringOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

func numberOf(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	}
	return decimal.Decimal{}, fmt.Errorf("not a number: %T", value)
}
