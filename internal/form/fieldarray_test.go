package form

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tierSchema() *RuleSchema {
	return NewSchema().
		Field("label", Required("Label is required")).
		Field("amount", Required("Amount is required"))
}

func labels(a *FieldArray) []string {
	var out []string
	for _, it := range a.Items() {
		s, _ := it["label"].(string)
		out = append(out, s)
	}
	return out
}

func TestFieldArray_Operations(t *testing.T) {
	a := NewFieldArray(Values{"label": "A"}, Values{"label": "B"})
	a.Append(Values{"label": "C"})

	if err := a.Move(0, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	if diff := cmp.Diff([]string{"B", "C", "A"}, labels(a)); diff != "" {
		t.Errorf("after move (-want +got):\n%s", diff)
	}

	if err := a.Update(1, Values{"label": "C2"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := a.Remove(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diff := cmp.Diff([]string{"C2", "A"}, labels(a)); diff != "" {
		t.Errorf("after remove (-want +got):\n%s", diff)
	}

	if err := a.Remove(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := a.Move(0, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestFieldArray_ValidateAll(t *testing.T) {
	a := NewFieldArray(
		Values{"label": "Small", "amount": "100"},
		Values{"label": "", "amount": "200"},
		Values{"label": "Large", "amount": ""},
	)

	if a.ValidateAll(tierSchema()) {
		t.Fatal("expected invalid items")
	}
	want := map[int]string{1: "label: Label is required", 2: "amount: Amount is required"}
	if diff := cmp.Diff(want, a.Errors()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}

	// errors follow their records
	if err := a.Remove(0); err != nil {
		t.Fatal(err)
	}
	want = map[int]string{0: "label: Label is required", 1: "amount: Amount is required"}
	if diff := cmp.Diff(want, a.Errors()); diff != "" {
		t.Errorf("after remove (-want +got):\n%s", diff)
	}

	if err := a.Move(1, 0); err != nil {
		t.Fatal(err)
	}
	want = map[int]string{1: "label: Label is required", 0: "amount: Amount is required"}
	if diff := cmp.Diff(want, a.Errors()); diff != "" {
		t.Errorf("after move (-want +got):\n%s", diff)
	}

	_ = a.Update(0, Values{"label": "Large", "amount": "300"})
	_ = a.Update(1, Values{"label": "Medium", "amount": "200"})
	if !a.ValidateAll(tierSchema()) || len(a.Errors()) != 0 {
		t.Errorf("expected valid array, got %v", a.Errors())
	}
}
