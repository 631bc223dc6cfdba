package service

import "sync"

// docLocks serializes the read-validate-mutate-persist section per document
// id. Two signers in the same tier, or a cancel racing a signature, always
// execute one after the other; the loser fails its precondition check.
type docLocks struct {
	m sync.Map // document id -> *sync.Mutex
}

// lock acquires the mutex for the given document id and returns the unlock
// function. Mutexes are created lazily and kept for the process lifetime.
func (l *docLocks) lock(id string) func() {
	v, _ := l.m.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
