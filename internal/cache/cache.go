// Package cache holds the most recent pipeline result per audio filename
// for later retrieval: incident lookup, report generation, sentiment
// timelines. It is an injected dependency so deployments can share or
// isolate it as needed.
package cache

import (
	"sync"

	"call-insights-go/internal/types"
)

// Results is keyed by audio filename and keeps only the latest state.
type Results interface {
	Get(filename string) (types.State, bool)
	Put(filename string, st types.State)
}

// Memory is a process-local Results implementation. Safe for concurrent
// pipeline invocations.
type Memory struct {
	mu sync.RWMutex
	m  map[string]types.State
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]types.State)}
}

func (c *Memory) Get(filename string) (types.State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.m[filename]
	return st, ok
}

func (c *Memory) Put(filename string, st types.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[filename] = st
}
