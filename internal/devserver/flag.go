package devserver

import "sync"

// ReloadFlag is the boolean shared between the rebuild loop and the
// `/__reload__` handler. Read and clear happen under one lock, so a set is
// delivered to at most one poll.
type ReloadFlag struct {
	mu  sync.Mutex
	set bool
}

// Set marks a reload as pending.
func (f *ReloadFlag) Set() {
	f.mu.Lock()
	f.set = true
	f.mu.Unlock()
}

// TakeAndClear reports whether a reload was pending and clears it.
func (f *ReloadFlag) TakeAndClear() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	was := f.set
	f.set = false
	return was
}
