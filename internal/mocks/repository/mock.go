// Package repository holds testify mocks of the repository interfaces.
package repository

import (
	"github.com/stretchr/testify/mock"
)

// T is the part of *testing.T the mocks need.
type T interface {
	mock.TestingT
	Cleanup(func())
}

// ret returns the i-th configured return value, or the zero value when it is nil.
func ret[V any](args mock.Arguments, i int) V {
	var zero V
	v := args.Get(i)
	if v == nil {
		return zero
	}
	if fn, ok := v.(func() V); ok {
		return fn()
	}

	return v.(V)
}

func register(t T, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}
