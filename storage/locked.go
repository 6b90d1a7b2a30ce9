package storage

import "sync"

// Locked serializes every call to the wrapped store behind one mutex.
type Locked struct {
	mu sync.Mutex
	s  Store
}

var _ Store = (*Locked)(nil)

// NewLocked wraps s. The caller must not use s directly afterwards.
func NewLocked(s Store) *Locked {
	return &Locked{s: s}
}

// Put implements Storage.
func (l *Locked) Put(key, value string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Put(key, value)
}

// PutIfAbsent implements Storage.
func (l *Locked) PutIfAbsent(key, value string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.PutIfAbsent(key, value)
}

// Set implements Storage.
func (l *Locked) Set(key, value string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Set(key, value)
}

// Delete implements Storage.
func (l *Locked) Delete(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Delete(key)
}

// Get implements Storage.
func (l *Locked) Get(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Get(key)
}

// Stats implements Store.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Stats()
}

// Reset implements Store.
func (l *Locked) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Reset()
}

// Validate runs the wrapped store's Validate, if it has one.
func (l *Locked) Validate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.s.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
