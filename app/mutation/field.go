package mutation

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field is an optional candidate value. A zero Field is unset, which is
// distinct from a set Field holding the zero value.
type Field[T comparable] struct {
	Value T
	Set   bool
}

// Some returns a set Field holding v.
func Some[T comparable](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Or returns the held value, or fallback when unset.
func (f Field[T]) Or(fallback T) T {
	if f.Set {
		return f.Value
	}
	return fallback
}

// Differs reports whether f is set to something other than current.
func (f Field[T]) Differs(current T) bool {
	return f.Set && f.Value != current
}

// Text trims raw. Blank input yields an unset Field.
func Text(raw string) Field[string] {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Field[string]{}
	}
	return Some(v)
}

// MaxLen rejects a set Field longer than limit characters.
func MaxLen(name string, f Field[string], limit int) error {
	if f.Set && utf8.RuneCountInString(f.Value) > limit {
		return Errorf(Invalid, "%s must be at most %d characters", name, limit)
	}
	return nil
}

// Count parses a non-negative integer such as a stock level. Blank input
// yields an unset Field; anything else that is not a non-negative integer
// is rejected.
func Count(name, raw string) (Field[int], error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Field[int]{}, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return Field[int]{}, Errorf(Invalid, "%s must be a non-negative integer", name)
	}
	return Some(n), nil
}

// Ref parses an optional reference to another record.
func Ref(name, raw string) (Field[uint], error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Field[uint]{}, nil
	}
	id, err := ParseID(name, v)
	if err != nil {
		return Field[uint]{}, err
	}
	return Some(id), nil
}

// ParseID parses a required positive integer identifier that fits a bigint
// column.
func ParseID(name, raw string) (uint, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, Errorf(Invalid, "%s is required", name)
	}
	n, err := strconv.ParseUint(v, 10, 63)
	if err != nil || n == 0 {
		return 0, Errorf(Invalid, "invalid %s %q", name, v)
	}
	return uint(n), nil
}
