package processor

import "sync"

// pathLocks serializes work on a per-key basis. Workers lock the destination
// directory of a planned move so existence probes and the following commit
// are atomic with respect to other workers targeting the same directory.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *pathLocks) lock(key string) *sync.Mutex {
	p.mu.Lock()
	m, ok := p.locks[key]
	if !ok {
		m = &sync.Mutex{}
		p.locks[key] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m
}
