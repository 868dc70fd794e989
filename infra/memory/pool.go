// Package memory provides the typed object pool the service layer
// uses to recycle Order storage between admissions.
package memory

import "sync"

// Pool is a typed object pool over sync.Pool. Callers must fully
// reinitialize a recycled object before use; Put does not scrub it.
type Pool[T any] struct {
	p *sync.Pool
}

func NewPool[T any](ctor func() *T) *Pool[T] {
	return &Pool[T]{
		p: &sync.Pool{
			New: func() any { return ctor() },
		},
	}
}

func (p *Pool[T]) Get() *T {
	return p.p.Get().(*T)
}

func (p *Pool[T]) Put(v *T) {
	p.p.Put(v)
}
