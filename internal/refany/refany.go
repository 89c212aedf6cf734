// File: internal/refany/refany.go

// Package refany provides a reference-counted, type-erased value for passing
// application data between callbacks and background threads.
package refany

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// CloneFunc deep-copies the wrapped value.
type CloneFunc func(any) any

// DestructorFunc releases resources held by the wrapped value.
type DestructorFunc func(any)

type shared struct {
	mu         sync.RWMutex
	value      any
	typ        reflect.Type
	refs       atomic.Int64
	clone      CloneFunc
	destructor DestructorFunc
}

// RefAny is a handle to a shared value. Copies of the handle made with Clone
// share the value and bump the reference count; Release drops one reference
// and runs the destructor when the count reaches zero.
type RefAny struct {
	inner    *shared
	released atomic.Bool
}

// Option configures a RefAny.
type Option func(*shared)

// WithClone sets the function used by DeepCopy.
func WithClone(f CloneFunc) Option { return func(s *shared) { s.clone = f } }

// WithDestructor sets the function run when the last reference is released.
func WithDestructor(f DestructorFunc) Option { return func(s *shared) { s.destructor = f } }

// New wraps value in a RefAny with one reference.
func New[T any](value T, opts ...Option) *RefAny {
	s := &shared{value: value, typ: reflect.TypeFor[T]()}
	for _, o := range opts {
		o(s)
	}
	s.refs.Store(1)
	return &RefAny{inner: s}
}

// TypeName returns the Go type name of the wrapped value.
func (r *RefAny) TypeName() string {
	if r == nil || r.inner == nil {
		return "<nil>"
	}
	return r.inner.typ.String()
}

// RefCount returns the number of live handles.
func (r *RefAny) RefCount() int64 {
	if r == nil || r.inner == nil {
		return 0
	}
	return r.inner.refs.Load()
}

// Clone returns a new handle to the same value.
func (r *RefAny) Clone() *RefAny {
	if r == nil || r.inner == nil {
		return nil
	}
	r.inner.refs.Add(1)
	return &RefAny{inner: r.inner}
}

// DeepCopy returns a handle to an independent copy made with the clone
// function. Without a clone function the value is copied by assignment.
func (r *RefAny) DeepCopy() *RefAny {
	if r == nil || r.inner == nil {
		return nil
	}
	r.inner.mu.RLock()
	v := r.inner.value
	r.inner.mu.RUnlock()
	if r.inner.clone != nil {
		v = r.inner.clone(v)
	}
	s := &shared{value: v, typ: r.inner.typ, clone: r.inner.clone, destructor: r.inner.destructor}
	s.refs.Store(1)
	return &RefAny{inner: s}
}

// Release drops this handle's reference. Releasing twice is a no-op.
func (r *RefAny) Release() {
	if r == nil || r.inner == nil || !r.released.CompareAndSwap(false, true) {
		return
	}
	if r.inner.refs.Add(-1) == 0 && r.inner.destructor != nil {
		r.inner.mu.Lock()
		r.inner.destructor(r.inner.value)
		r.inner.mu.Unlock()
	}
}

// Is reports whether the wrapped value has type T.
func Is[T any](r *RefAny) bool {
	return r != nil && r.inner != nil && r.inner.typ == reflect.TypeFor[T]()
}

// Read calls f with the wrapped value under a read lock.
func Read[T any](r *RefAny, f func(T)) error {
	if !Is[T](r) {
		return fmt.Errorf("refany: cannot read %s as %s", r.TypeName(), reflect.TypeFor[T]())
	}
	r.inner.mu.RLock()
	defer r.inner.mu.RUnlock()
	f(r.inner.value.(T))
	return nil
}

// Write calls f with a pointer to the wrapped value under a write lock.
func Write[T any](r *RefAny, f func(*T)) error {
	if !Is[T](r) {
		return fmt.Errorf("refany: cannot write %s as %s", r.TypeName(), reflect.TypeFor[T]())
	}
	r.inner.mu.Lock()
	defer r.inner.mu.Unlock()
	v := r.inner.value.(T)
	f(&v)
	r.inner.value = v
	return nil
}

// Get returns a copy of the wrapped value.
func Get[T any](r *RefAny) (T, bool) {
	var zero T
	if !Is[T](r) {
		return zero, false
	}
	r.inner.mu.RLock()
	defer r.inner.mu.RUnlock()
	return r.inner.value.(T), true
}
