package sim

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator produces string identifiers for messages, packets, and flits.
type IDGenerator interface {
	Generate() string
}

// NewSequentialIDGenerator returns an IDGenerator that hands out small,
// deterministic, monotonically increasing IDs — the right choice for a
// single-threaded, reproducible run.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewDistributedIDGenerator returns an IDGenerator backed by rs/xid,
// producing globally-unique, sortable IDs without a shared counter. Useful
// when multiple independent runs' outputs are later merged.
func NewDistributedIDGenerator() IDGenerator {
	return &distributedIDGenerator{}
}

type sequentialIDGenerator struct {
	next uint64
}

func (g *sequentialIDGenerator) Generate() string {
	n := atomic.AddUint64(&g.next, 1)
	return strconv.FormatUint(n, 10)
}

type distributedIDGenerator struct{}

func (g *distributedIDGenerator) Generate() string {
	return xid.New().String()
}

// TransactionAllocator is the monotonic u64 allocator spec §3 requires for
// transaction IDs: "never reused within one run."
type TransactionAllocator struct {
	next uint64
}

// Allocate returns the next transaction ID, starting at 1 so the zero value
// can be used as a sentinel "no transaction" by callers.
func (a *TransactionAllocator) Allocate() uint64 {
	a.next++
	return a.next
}
