package models

import (
	"bytes"
	"encoding/json"
)

// Opt is a tri-state optional: absent, explicit null, or a value. A provider
// answering "no data" for a field must be distinguishable from one overwriting
// a known value with null, so absence cannot be overloaded onto nil.
type Opt[T any] struct {
	set   bool
	null  bool
	value T
}

// Some wraps a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{set: true, value: v}
}

// Null is a present-but-null answer.
func Null[T any]() Opt[T] {
	return Opt[T]{set: true, null: true}
}

// IsSet reports whether the field was answered at all (value or null).
func (o Opt[T]) IsSet() bool { return o.set }

// IsNull reports an explicit null answer.
func (o Opt[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and true when one is present.
func (o Opt[T]) Get() (T, bool) {
	if o.set && !o.null {
		return o.value, true
	}
	var zero T
	return zero, false
}

// Or returns the value when present, else fallback.
func (o Opt[T]) Or(fallback T) T {
	if v, ok := o.Get(); ok {
		return v
	}
	return fallback
}

// IsZero makes the zero (absent) state cooperate with json omitzero.
func (o Opt[T]) IsZero() bool { return !o.set }

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if v, ok := o.Get(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	o.set = true
	if bytes.Equal(b, []byte("null")) {
		o.null = true
		return nil
	}
	o.null = false
	return json.Unmarshal(b, &o.value)
}
