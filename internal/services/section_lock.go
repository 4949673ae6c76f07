package services

import "sync"

// sectionLocks serializes position assignment per section.
// Entries are reference counted and dropped once no caller holds them.
type sectionLocks struct {
	mu    sync.Mutex
	locks map[string]*sectionLock
}

type sectionLock struct {
	mu   sync.Mutex
	refs int
}

func newSectionLocks() *sectionLocks {
	return &sectionLocks{locks: make(map[string]*sectionLock)}
}

// Lock acquires the section lock and returns its release function
func (l *sectionLocks) Lock(section string) func() {
	l.mu.Lock()
	lock, ok := l.locks[section]
	if !ok {
		lock = &sectionLock{}
		l.locks[section] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, section)
		}
		l.mu.Unlock()
	}
}
