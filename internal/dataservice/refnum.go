package dataservice

import (
	"fmt"
	"sync"
	"time"
)

// refGenerator issues REF-nnnnnn numbers from the creation time in
// milliseconds, never repeating the last candidate it handed out.
type refGenerator struct {
	mu   sync.Mutex
	last int64
}

func formatRef(candidate int64) string {
	return fmt.Sprintf("REF-%06d", candidate%1_000_000)
}

// next returns a reference number for which taken reports false.
func (g *refGenerator) next(now time.Time, taken func(string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := now.UnixMilli()
	if c <= g.last {
		c = g.last + 1
	}
	// At most 1e6 distinct suffixes exist; stop before looping forever.
	for i := 0; i < 1_000_000 && taken(formatRef(c)); i++ {
		c++
	}
	g.last = c
	return formatRef(c)
}
