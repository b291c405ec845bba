// Package form manages a form's values, errors, touched state and submission
// lifecycle against a declarative schema. It has no knowledge of rendering.
package form

import (
	"fmt"
	"sort"
)

// Values holds the current value of every form field keyed by field name.
type Values map[string]any

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Schema validates form values.
//
// ValidateField returns nil when the field has no single-field rules, even if a
// form-level refinement would reject it. ValidateAll returns one message per
// offending field; an empty map means the values are valid.
type Schema interface {
	ValidateField(name string, values Values) error
	ValidateAll(values Values) map[string]string
}

// Refinement is a cross-field rule reported against Path.
type Refinement struct {
	Path    string
	Message string
	Check   func(values Values) bool
}

// RuleSchema is a Schema built from ordered per-field rules and form-level
// refinements.
type RuleSchema struct {
	order       []string
	rules       map[string][]Rule
	refinements []Refinement
}

// NewSchema returns an empty schema.
func NewSchema() *RuleSchema {
	return &RuleSchema{rules: make(map[string][]Rule)}
}

// Field appends rules for name. Rules run in the order given.
func (s *RuleSchema) Field(name string, rules ...Rule) *RuleSchema {
	if _, ok := s.rules[name]; !ok {
		s.order = append(s.order, name)
	}
	s.rules[name] = append(s.rules[name], rules...)
	return s
}

// Refine adds a form-level rule. Refinements only run once every field passes
// its own rules.
func (s *RuleSchema) Refine(path, message string, check func(values Values) bool) *RuleSchema {
	s.refinements = append(s.refinements, Refinement{Path: path, Message: message, Check: check})
	return s
}

// Fields returns the field names in declaration order.
func (s *RuleSchema) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *RuleSchema) ValidateField(name string, values Values) error {
	for _, rule := range s.rules[name] {
		if err := apply(rule, values[name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *RuleSchema) ValidateAll(values Values) map[string]string {
	errs := make(map[string]string)
	for _, name := range s.order {
		if err := s.ValidateField(name, values); err != nil {
			errs[name] = err.Error()
		}
	}
	if len(errs) > 0 {
		return errs
	}

	for _, r := range s.refinements {
		if _, seen := errs[r.Path]; seen {
			continue
		}
		if !check(r, values) {
			errs[r.Path] = r.Message
		}
	}
	return errs
}

// apply runs a rule and turns a panic into a validation error.
func apply(rule Rule, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validation failed: %v", r)
		}
	}()
	return rule(value)
}

func check(r Refinement, values Values) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
		}
	}()
	return r.Check(values)
}

// FirstError picks one message out of an error map. Fields are visited in the
// schema's declaration order when it exposes one, otherwise alphabetically.
func FirstError(schema Schema, errs map[string]string) (string, string) {
	if len(errs) == 0 {
		return "", ""
	}
	if ordered, ok := schema.(interface{ Fields() []string }); ok {
		for _, name := range ordered.Fields() {
			if msg, ok := errs[name]; ok {
				return name, msg
			}
		}
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0], errs[keys[0]]
}
