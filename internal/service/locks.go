package service

import (
	"bytes"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// keyLocks hands out one mutex per wallet key. Entries are dropped once no
// caller holds or waits for them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[uuid.UUID]*refLock)}
}

// acquire locks every distinct key in byte order and returns the matching
// release. Locking in a fixed order keeps two opposing transfers from
// deadlocking.
func (k *keyLocks) acquire(keys ...uuid.UUID) (release func()) {
	ordered := slices.Clone(keys)
	slices.SortFunc(ordered, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	ordered = slices.Compact(ordered)

	held := make([]*refLock, len(ordered))
	for i, key := range ordered {
		k.mu.Lock()
		l, ok := k.locks[key]
		if !ok {
			l = &refLock{}
			k.locks[key] = l
		}
		l.refs++
		k.mu.Unlock()

		l.Lock()
		held[i] = l
	}

	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			held[i].Unlock()
			k.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(k.locks, ordered[i])
			}
			k.mu.Unlock()
		}
	}
}

// size returns the number of live entries.
func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
