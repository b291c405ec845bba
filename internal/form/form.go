package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

var (
	// ErrSubmitInProgress is returned by HandleSubmit while another submission runs.
	ErrSubmitInProgress = errors.New("form: submit already in progress")
	// ErrValidation is returned by HandleSubmit when the values do not pass the schema.
	ErrValidation = errors.New("form: validation failed")
)

// Options controls when a Form validates and what it does after submission.
type Options struct {
	ValidateOnChange bool
	ValidateOnBlur   bool
	ResetOnSuccess   bool
	// SuccessMessage is sent to the Notifier after a successful submit, if set.
	SuccessMessage string
	Notifier       Notifier
	Debouncer      *Debouncer
	Logger         *slog.Logger
}

// SubmitFunc receives a copy of the form values.
type SubmitFunc func(ctx context.Context, values Values) error

// AsyncValidator checks a value against something remote, such as a
// uniqueness lookup.
type AsyncValidator func(ctx context.Context, value any) error

// Form tracks values, errors, touched fields and the submitting flag.
// It is safe for concurrent use.
type Form struct {
	schema Schema
	opts   Options

	mu         sync.Mutex
	initial    Values
	values     Values
	errors     map[string]string
	touched    map[string]bool
	submitting bool
}

// New creates a form with initial values.
func New(schema Schema, initial Values, opts Options) *Form {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{logger: opts.Logger}
	}
	if opts.Debouncer == nil {
		opts.Debouncer = NewDebouncer(DefaultDebounceDelay)
	}
	if initial == nil {
		initial = Values{}
	}
	return &Form{
		schema:  schema,
		opts:    opts,
		initial: initial.Clone(),
		values:  initial.Clone(),
		errors:  make(map[string]string),
		touched: make(map[string]bool),
	}
}

// SetValue updates a field, validating it when ValidateOnChange is set.
func (f *Form) SetValue(field string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[field] = value
	if f.opts.ValidateOnChange {
		f.validateFieldLocked(field)
	}
}

// SetTouched marks a field touched, validating it when ValidateOnBlur is set.
func (f *Form) SetTouched(field string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[field] = true
	if f.opts.ValidateOnBlur {
		f.validateFieldLocked(field)
	}
}

// Blur is the blur handler. It is the same as SetTouched.
func (f *Form) Blur(field string) { f.SetTouched(field) }

// ValidateField validates one field against its own rules and records the
// first failure.
func (f *Form) ValidateField(field string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateFieldLocked(field)
}

func (f *Form) validateFieldLocked(field string) bool {
	err := f.fieldError(field)
	if err != nil {
		f.errors[field] = err.Error()
		return false
	}
	delete(f.errors, field)
	return true
}

func (f *Form) fieldError(field string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validation failed: %v", r)
		}
	}()
	return f.schema.ValidateField(field, f.values)
}

// ValidateForm validates all values, cross-field rules included. On failure
// the errors map is replaced and the user is notified.
func (f *Form) ValidateForm() bool {
	f.mu.Lock()
	errs := f.validateAll()
	f.errors = errs
	f.mu.Unlock()

	if len(errs) == 0 {
		return true
	}
	_, msg := FirstError(f.schema, errs)
	f.opts.Notifier.Notify(LevelError, msg)
	return false
}

func (f *Form) validateAll() (errs map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			errs = map[string]string{"": fmt.Sprintf("validation failed: %v", r)}
		}
	}()
	errs = f.schema.ValidateAll(f.values)
	if errs == nil {
		errs = make(map[string]string)
	}
	return errs
}

// HandleSubmit validates the form and, when valid, calls submit with the
// current values. Only one submission runs at a time; a call made while
// another is in flight returns ErrSubmitInProgress without calling submit.
func (f *Form) HandleSubmit(ctx context.Context, submit SubmitFunc) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	f.submitting = true
	for _, name := range f.knownFields() {
		f.touched[name] = true
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if !f.ValidateForm() {
		return ErrValidation
	}

	if err := f.runSubmit(ctx, submit, f.Values()); err != nil {
		f.opts.Logger.Debug("Form submit failed", "error", err)
		f.opts.Notifier.Notify(LevelError, err.Error())
		return err
	}

	if f.opts.SuccessMessage != "" {
		f.opts.Notifier.Notify(LevelSuccess, f.opts.SuccessMessage)
	}
	if f.opts.ResetOnSuccess {
		f.Reset()
	}
	return nil
}

func (f *Form) runSubmit(ctx context.Context, submit SubmitFunc, values Values) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submit panicked: %v", r)
		}
	}()
	return submit(ctx, values)
}

// knownFields is every field present in values, initial values or the schema.
func (f *Form) knownFields() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	if ordered, ok := f.schema.(interface{ Fields() []string }); ok {
		for _, n := range ordered.Fields() {
			add(n)
		}
	}
	for n := range f.initial {
		add(n)
	}
	for n := range f.values {
		add(n)
	}
	return names
}

// Reset restores values to the given values, or to the initial values when
// none are given, and clears errors and touched state.
func (f *Form) Reset(values ...Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts.Debouncer.Cancel()

	next := f.initial
	if len(values) > 0 && values[0] != nil {
		next = values[0]
	}
	f.values = next.Clone()
	f.errors = make(map[string]string)
	f.touched = make(map[string]bool)
}

// IsDirty reports whether any value differs from its initial value.
func (f *Form) IsDirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range f.values {
		if !reflect.DeepEqual(v, f.initial[k]) {
			return true
		}
	}
	for k, v := range f.initial {
		if _, ok := f.values[k]; !ok && v != nil {
			return true
		}
	}
	return false
}

// IsValid reports whether the errors map is empty.
func (f *Form) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors) == 0
}

func (f *Form) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.Clone()
}

func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *Form) Touched() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.touched))
	for k, v := range f.touched {
		out[k] = v
	}
	return out
}

// FieldProps is what a rendering layer binds to an input.
type FieldProps struct {
	Name     string
	Value    any
	Error    string
	Touched  bool
	OnChange func(value any)
	OnBlur   func()
}

// FieldProps returns the bindings for one field. Error is only set once the
// field has been touched.
func (f *Form) FieldProps(name string) FieldProps {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := FieldProps{
		Name:     name,
		Value:    f.values[name],
		Touched:  f.touched[name],
		OnChange: func(v any) { f.SetValue(name, v) },
		OnBlur:   func() { f.SetTouched(name) },
	}
	if p.Touched {
		p.Error = f.errors[name]
	}
	return p
}

// ValidateFieldAsync runs validate on the field's value after the debounce
// delay. A newer call for any field cancels the pending one. The schema rule
// runs first; validate is skipped when it fails. The returned channel closes
// when the check has finished or was superseded.
func (f *Form) ValidateFieldAsync(ctx context.Context, field string, validate AsyncValidator) <-chan struct{} {
	return f.opts.Debouncer.Do(func() {
		if !f.ValidateField(field) {
			return
		}
		value := f.Values()[field]
		err := validate(ctx, value)

		f.mu.Lock()
		defer f.mu.Unlock()
		if !reflect.DeepEqual(f.values[field], value) {
			return
		}
		if err != nil {
			f.errors[field] = err.Error()
		} else {
			delete(f.errors, field)
		}
	})
}
