package form

import (
	"errors"
	"fmt"
	"sync"
)

// ErrIndexOutOfRange is returned for an index outside the array.
var ErrIndexOutOfRange = errors.New("form: index out of range")

// FieldArray manages an ordered list of sub-records, such as the package
// tiers of a product. Errors are tracked per index and move with the records.
type FieldArray struct {
	mu     sync.Mutex
	items  []Values
	errors map[int]string
}

func NewFieldArray(initial ...Values) *FieldArray {
	items := make([]Values, 0, len(initial))
	for _, v := range initial {
		items = append(items, v.Clone())
	}
	return &FieldArray{items: items, errors: make(map[int]string)}
}

func (a *FieldArray) Append(item Values) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append(a.items, item.Clone())
}

// Remove deletes the record at i and shifts later errors down.
func (a *FieldArray) Remove(i int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(i); err != nil {
		return err
	}
	a.items = append(a.items[:i], a.items[i+1:]...)

	next := make(map[int]string, len(a.errors))
	for idx, msg := range a.errors {
		switch {
		case idx < i:
			next[idx] = msg
		case idx > i:
			next[idx-1] = msg
		}
	}
	a.errors = next
	return nil
}

// Update replaces the record at i and drops its error.
func (a *FieldArray) Update(i int, item Values) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(i); err != nil {
		return err
	}
	a.items[i] = item.Clone()
	delete(a.errors, i)
	return nil
}

// Move relocates the record at from to index to.
func (a *FieldArray) Move(from, to int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(from); err != nil {
		return err
	}
	if err := a.check(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	item := a.items[from]
	a.items = append(a.items[:from], a.items[from+1:]...)
	a.items = append(a.items[:to], append([]Values{item}, a.items[to:]...)...)

	next := make(map[int]string, len(a.errors))
	for idx, msg := range a.errors {
		next[movedIndex(idx, from, to)] = msg
	}
	a.errors = next
	return nil
}

func movedIndex(idx, from, to int) int {
	switch {
	case idx == from:
		return to
	case from < to && idx > from && idx <= to:
		return idx - 1
	case from > to && idx >= to && idx < from:
		return idx + 1
	}
	return idx
}

// ValidateAll validates every record and replaces the error map. Each index
// gets the first failing field's message, prefixed with the field name.
func (a *FieldArray) ValidateAll(schema Schema) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errors = make(map[int]string)
	for i, item := range a.items {
		errs := schema.ValidateAll(item)
		if len(errs) == 0 {
			continue
		}
		field, msg := FirstError(schema, errs)
		a.errors[i] = fmt.Sprintf("%s: %s", field, msg)
	}
	return len(a.errors) == 0
}

func (a *FieldArray) Items() []Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Values, len(a.items))
	for i, v := range a.items {
		out[i] = v.Clone()
	}
	return out
}

func (a *FieldArray) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

func (a *FieldArray) Errors() map[int]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[int]string, len(a.errors))
	for k, v := range a.errors {
		out[k] = v
	}
	return out
}

func (a *FieldArray) check(i int) error {
	if i < 0 || i >= len(a.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(a.items))
	}
	return nil
}
