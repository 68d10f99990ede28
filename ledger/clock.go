package ledger

import (
	"sync/atomic"
	"time"

	"github.com/cordialsys/nftstake/program"
)

// SystemClock reports wall time.
type SystemClock struct{}

var _ program.Clock = SystemClock{}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// FixedClock reports a settable time.
type FixedClock struct {
	now atomic.Int64
}

var _ program.Clock = &FixedClock{}

func NewFixedClock(now int64) *FixedClock {
	clock := &FixedClock{}
	clock.now.Store(now)
	return clock
}

func (c *FixedClock) Now() int64 {
	return c.now.Load()
}

func (c *FixedClock) Set(now int64) {
	c.now.Store(now)
}

func (c *FixedClock) Advance(seconds int64) int64 {
	return c.now.Add(seconds)
}
