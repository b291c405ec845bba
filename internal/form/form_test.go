package form

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, string(level)+": "+message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func emailSchema() *RuleSchema {
	return NewSchema().
		Field("email", Required("Email is required"), Email("Invalid email address")).
		Field("name", Required("Name is required"), MinLength(2, "Name is too short"))
}

func TestSetValue_ValidateOnChange(t *testing.T) {
	f := New(emailSchema(), Values{"email": "", "name": "Ann"}, Options{ValidateOnChange: true, Notifier: &recordingNotifier{}})

	f.SetValue("email", "not-an-email")
	if got := f.Errors()["email"]; got != "Invalid email address" {
		t.Fatalf("expected email error, got %q", got)
	}
	if f.IsValid() {
		t.Error("form with an error should not be valid")
	}

	f.SetValue("email", "a@b.com")
	if _, ok := f.Errors()["email"]; ok {
		t.Fatalf("expected email error cleared, got %v", f.Errors())
	}
	if !f.IsValid() {
		t.Error("expected form valid after fix")
	}
}

func TestSetValue_NoValidationWhenDisabled(t *testing.T) {
	f := New(emailSchema(), nil, Options{Notifier: &recordingNotifier{}})
	f.SetValue("email", "nope")
	if len(f.Errors()) != 0 {
		t.Errorf("expected no errors without validate-on-change, got %v", f.Errors())
	}
}

func TestBlur_ValidatesAndTouches(t *testing.T) {
	f := New(emailSchema(), Values{"email": "x"}, Options{ValidateOnBlur: true, Notifier: &recordingNotifier{}})

	props := f.FieldProps("email")
	if props.Error != "" || props.Touched {
		t.Fatalf("untouched field should not show errors: %+v", props)
	}

	props.OnBlur()
	props = f.FieldProps("email")
	if !props.Touched {
		t.Error("expected field touched after blur")
	}
	if props.Error != "Invalid email address" {
		t.Errorf("expected error after blur, got %q", props.Error)
	}

	props.OnChange("ok@example.com")
	if got := f.Values()["email"]; got != "ok@example.com" {
		t.Errorf("OnChange did not set value, got %v", got)
	}
}

func TestValidateField_FirstErrorWins(t *testing.T) {
	f := New(emailSchema(), Values{"name": ""}, Options{Notifier: &recordingNotifier{}})
	if f.ValidateField("name") {
		t.Fatal("expected empty name to fail")
	}
	if got := f.Errors()["name"]; got != "Name is required" {
		t.Errorf("expected first rule message, got %q", got)
	}
}

func TestValidateField_PanickingRuleBecomesError(t *testing.T) {
	schema := NewSchema().Field("code", Custom("never", func(any) bool { panic("bad rule") }))
	f := New(schema, nil, Options{Notifier: &recordingNotifier{}})

	if f.ValidateField("code") {
		t.Fatal("expected panicking rule to fail validation")
	}
	if got := f.Errors()["code"]; got != "validation failed: bad rule" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestValidateField_SkipsRefinements(t *testing.T) {
	schema := NewSchema().
		Field("a", Required("a required")).
		Field("b", Required("b required")).
		Refine("b", "must match", func(v Values) bool { return v["a"] == v["b"] })
	f := New(schema, Values{"a": "x", "b": "y"}, Options{Notifier: &recordingNotifier{}})

	if !f.ValidateField("b") {
		t.Error("field-level validation should not run cross-field refinements")
	}
	if f.ValidateForm() {
		t.Error("form-level validation should run refinements")
	}
	if diff := cmp.Diff(map[string]string{"b": "must match"}, f.Errors()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateForm_NotifiesFirstError(t *testing.T) {
	n := &recordingNotifier{}
	f := New(emailSchema(), Values{"email": "bad", "name": ""}, Options{Notifier: n})

	if f.ValidateForm() {
		t.Fatal("expected invalid form")
	}
	want := map[string]string{"email": "Invalid email address", "name": "Name is required"}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"error: Invalid email address"}, n.all()); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}

	f.SetValue("email", "a@b.com")
	f.SetValue("name", "Bob")
	if !f.ValidateForm() || len(f.Errors()) != 0 {
		t.Errorf("expected errors cleared, got %v", f.Errors())
	}
}

func TestHandleSubmit_InvalidDoesNotSubmit(t *testing.T) {
	f := New(emailSchema(), Values{"email": "", "name": ""}, Options{Notifier: &recordingNotifier{}})
	called := false

	err := f.HandleSubmit(context.Background(), func(ctx context.Context, v Values) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if called {
		t.Error("submit must not be called for invalid values")
	}
	if diff := cmp.Diff(map[string]bool{"email": true, "name": true}, f.Touched()); diff != "" {
		t.Errorf("all fields should be touched (-want +got):\n%s", diff)
	}
	if f.IsSubmitting() {
		t.Error("submitting flag must be cleared")
	}
}

func TestHandleSubmit_DoubleSubmitCallsOnce(t *testing.T) {
	f := New(emailSchema(), Values{"email": "a@b.com", "name": "Ann"}, Options{Notifier: &recordingNotifier{}})

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	submit := func(ctx context.Context, v Values) error {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- f.HandleSubmit(context.Background(), submit) }()
	<-started

	if !f.IsSubmitting() {
		t.Error("expected submitting while submit runs")
	}
	if err := f.HandleSubmit(context.Background(), submit); !errors.Is(err, ErrSubmitInProgress) {
		t.Errorf("expected ErrSubmitInProgress, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected submit called once, got %d", calls)
	}
	if f.IsSubmitting() {
		t.Error("submitting flag must be cleared")
	}
}

func TestHandleSubmit_ErrorIsSurfaced(t *testing.T) {
	n := &recordingNotifier{}
	f := New(emailSchema(), Values{"email": "a@b.com", "name": "Ann"}, Options{Notifier: n, ResetOnSuccess: true})
	f.SetValue("name", "Annie")

	err := f.HandleSubmit(context.Background(), func(ctx context.Context, v Values) error {
		return errors.New("email already taken")
	})
	if err == nil || err.Error() != "email already taken" {
		t.Fatalf("expected submit error, got %v", err)
	}
	if diff := cmp.Diff([]string{"error: email already taken"}, n.all()); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
	if f.Values()["name"] != "Annie" {
		t.Error("form must not reset after a failed submit")
	}
	if f.IsSubmitting() {
		t.Error("submitting flag must be cleared")
	}
}

func TestHandleSubmit_ResetOnSuccess(t *testing.T) {
	n := &recordingNotifier{}
	f := New(emailSchema(), Values{"email": "a@b.com", "name": "Ann"}, Options{Notifier: n, ResetOnSuccess: true, SuccessMessage: "Saved"})
	f.SetValue("name", "Annie")

	var got Values
	err := f.HandleSubmit(context.Background(), func(ctx context.Context, v Values) error {
		got = v
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["name"] != "Annie" {
		t.Errorf("submit received %v", got)
	}
	if f.IsDirty() {
		t.Error("expected form reset after success")
	}
	if diff := cmp.Diff([]string{"success: Saved"}, n.all()); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleSubmit_PanicClearsSubmitting(t *testing.T) {
	f := New(emailSchema(), Values{"email": "a@b.com", "name": "Ann"}, Options{Notifier: &recordingNotifier{}})
	err := f.HandleSubmit(context.Background(), func(ctx context.Context, v Values) error { panic("boom") })
	if err == nil {
		t.Fatal("expected error from panicking submit")
	}
	if f.IsSubmitting() {
		t.Error("submitting flag must be cleared")
	}
}

func TestReset(t *testing.T) {
	initial := Values{"email": "a@b.com", "name": "Ann"}
	f := New(emailSchema(), initial, Options{ValidateOnChange: true, Notifier: &recordingNotifier{}})

	f.SetValue("email", "broken")
	f.SetTouched("email")
	if !f.IsDirty() {
		t.Fatal("expected dirty after change")
	}

	f.Reset()
	if diff := cmp.Diff(initial, f.Values()); diff != "" {
		t.Errorf("values not restored (-want +got):\n%s", diff)
	}
	if len(f.Errors()) != 0 || len(f.Touched()) != 0 {
		t.Errorf("expected errors and touched cleared, got %v %v", f.Errors(), f.Touched())
	}
	if f.IsDirty() {
		t.Error("expected clean after reset")
	}

	f.Reset(Values{"email": "c@d.com"})
	if f.Values()["email"] != "c@d.com" {
		t.Errorf("reset with values did not apply, got %v", f.Values())
	}
}

func TestIsDirty_ComparesByValue(t *testing.T) {
	f := New(nil, Values{"tags": []string{"a"}}, Options{Notifier: &recordingNotifier{}})
	f.mu.Lock()
	f.values["tags"] = []string{"a"}
	f.mu.Unlock()
	if f.IsDirty() {
		t.Error("equal slices should not be dirty")
	}
}

func TestValidateFieldAsync_Debounced(t *testing.T) {
	f := New(emailSchema(), nil, Options{Notifier: &recordingNotifier{}, Debouncer: NewDebouncer(20 * time.Millisecond)})

	var calls int32
	taken := func(ctx context.Context, v any) error {
		atomic.AddInt32(&calls, 1)
		if v == "taken@b.com" {
			return errors.New("Email already registered")
		}
		return nil
	}

	f.SetValue("email", "first@b.com")
	f.ValidateFieldAsync(context.Background(), "email", taken)
	f.SetValue("email", "taken@b.com")
	f.ValidateFieldAsync(context.Background(), "email", taken)

	deadline := time.Now().Add(time.Second)
	for f.Errors()["email"] == "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := f.Errors()["email"]; got != "Email already registered" {
		t.Fatalf("expected async error, got %q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected one debounced call, got %d", n)
	}
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var ran int32
	d.Do(func() { atomic.AddInt32(&ran, 1) })
	if !d.Pending() {
		t.Fatal("expected a pending call")
	}
	d.Cancel()
	time.Sleep(30 * time.Millisecond)
	if ran != 0 {
		t.Errorf("cancelled call ran %d times", ran)
	}
}

func TestDebouncer_DoneChannel(t *testing.T) {
	d := NewDebouncer(5 * time.Millisecond)
	var ran int32

	first := d.Do(func() { atomic.AddInt32(&ran, 1) })
	second := d.Do(func() { atomic.AddInt32(&ran, 10) })

	for name, done := range map[string]<-chan struct{}{"superseded": first, "last": second} {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("%s call never signalled done", name)
		}
	}
	if n := atomic.LoadInt32(&ran); n != 10 {
		t.Errorf("expected only the last call to run, got %d", n)
	}

	cancelled := d.Do(func() { t.Error("cancelled call ran") })
	d.Cancel()
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("cancel did not signal done")
	}
}

func TestRules(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value any
		ok    bool
	}{
		{"required nil", Required("r"), nil, false},
		{"required blank", Required("r"), "  ", false},
		{"required ok", Required("r"), "x", true},
		{"min length", MinLength(3, "m"), "ab", false},
		{"min length runes", MinLength(3, "m"), "héé", true},
		{"max length", MaxLength(2, "m"), "abc", false},
		{"pattern", Pattern(regexp.MustCompile(`^[a-z-]+$`), "p"), "free-fire", true},
		{"pattern fail", Pattern(regexp.MustCompile(`^[a-z-]+$`), "p"), "Free Fire", false},
		{"email", Email("e"), "a@b.com", true},
		{"email fail", Email("e"), "a@", false},
		{"url", URL("u"), "https://cdn.example.com/x.png", true},
		{"url fail", URL("u"), "not a url", false},
		{"one of", OneOf("o", "admin", "support"), "support", true},
		{"one of fail", OneOf("o", "admin"), "root", false},
		{"min decimal string", Min(decimal.Zero, "n"), "-0.01", false},
		{"min int", Min(decimal.Zero, "n"), 0, true},
		{"max float", Max(decimal.NewFromInt(100), "n"), 100.5, false},
		{"max not a number", Max(decimal.NewFromInt(100), "n"), "abc", false},
		{"optional empty", Optional(Email("e")), "", true},
		{"optional set", Optional(Email("e")), "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule(tt.value)
			if (err == nil) != tt.ok {
				t.Errorf("rule(%v) = %v, want ok=%v", tt.value, err, tt.ok)
			}
		})
	}
}
