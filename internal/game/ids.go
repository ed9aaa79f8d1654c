package game

import (
	"strconv"
	"sync/atomic"
)

// idAllocator hands out ids scoped to one lane, so they are reproducible per match.
type idAllocator struct {
	prefix string
	next   atomic.Uint64
}

func (a *idAllocator) Next() string {
	return a.prefix + strconv.FormatUint(a.next.Add(1), 10)
}
