package app

import (
	"sync/atomic"

	"salondesk/domain/reference"
)

// IndexHolder publishes the current reference index to readers without locking
type IndexHolder struct {
	ptr atomic.Pointer[reference.Index]
}

// NewIndexHolder creates an empty holder; Get returns nil until the first Set
func NewIndexHolder() *IndexHolder {
	return &IndexHolder{}
}

func (h *IndexHolder) Get() *reference.Index {
	if h == nil {
		return nil
	}
	return h.ptr.Load()
}

func (h *IndexHolder) Set(idx *reference.Index) {
	h.ptr.Store(idx)
}
