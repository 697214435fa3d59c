package models

import (
	"bytes"
	"encoding/json"
)

// Optional tracks whether a JSON field was present in the payload and
// whether it was an explicit null. Invalid marks a present value of the
// wrong JSON type; it is reported by validation, not by decoding.
type Optional[T any] struct {
	Set     bool
	Null    bool
	Invalid bool
	Value   T
}

func Invalid[T any]() Optional[T] {
	return Optional[T]{Set: true, Invalid: true}
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns nil for an explicit null or an invalid value, a pointer to
// the value otherwise.
func (o Optional[T]) Ptr() *T {
	if o.Null || o.Invalid {
		return nil
	}
	v := o.Value
	return &v
}

// TaskPatch carries the subset of task fields a caller wants to change.
// Fields left unset are never written. Malformed is set when the payload
// wasn't a JSON object at all.
type TaskPatch struct {
	Text      Optional[string] `json:"text"`
	Date      Optional[string] `json:"date"`
	Time      Optional[string] `json:"time"`
	Completed Optional[bool]   `json:"completed"`
	Malformed bool             `json:"-"`
}

func (p TaskPatch) Empty() bool {
	return !p.Malformed && !p.Text.Set && !p.Date.Set && !p.Time.Set && !p.Completed.Set
}

// TaskChanges is a validated TaskPatch ready to be applied by a store.
type TaskChanges struct {
	Text      Optional[string]
	Date      Optional[Date]
	Time      Optional[string]
	Completed Optional[bool]
}

func (c TaskChanges) Empty() bool {
	return !c.Text.Set && !c.Date.Set && !c.Time.Set && !c.Completed.Set
}

// Apply merges the present fields into t.
func (c TaskChanges) Apply(t *Task) {
	if c.Text.Set {
		t.Text = c.Text.Value
	}
	if c.Date.Set {
		t.Date = c.Date.Ptr()
	}
	if c.Time.Set {
		t.Time = c.Time.Ptr()
	}
	if c.Completed.Set {
		t.Completed = c.Completed.Value
	}
}
