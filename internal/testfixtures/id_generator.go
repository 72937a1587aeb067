package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator yields "<prefix>-0001", "<prefix>-0002", ... The padding keeps
// lexical and numeric order aligned for tie-break assertions.
type IDGenerator struct {
	prefix  string
	counter atomic.Uint64
}

// NewIDGenerator returns a generator for prefix, "id" when empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier. It is safe for concurrent use.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.counter.Add(1))
}

// Issued reports how many identifiers have been handed out.
func (g *IDGenerator) Issued() uint64 {
	return g.counter.Load()
}
