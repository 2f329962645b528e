package assignment

import (
	"sync"
	"time"
)

// TimerRegistry - отменяемые отложенные действия по ключу (id назначения).
// Срабатывание не блокирует вызывающего: колбэк выполняется в своей горутине.
type TimerRegistry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{timers: make(map[string]*time.Timer)}
}

// Schedule заменяет ранее запланированное действие с тем же ключом.
func (r *TimerRegistry) Schedule(key string, after time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if existing, ok := r.timers[key]; ok {
		existing.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(after, func() {
		r.mu.Lock()
		if r.timers[key] == t {
			delete(r.timers, key)
		}
		r.mu.Unlock()

		fn()
	})
	r.timers[key] = t
}

// Cancel возвращает true, если действие было снято до срабатывания.
func (r *TimerRegistry) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.timers[key]
	if !ok {
		return false
	}
	delete(r.timers, key)
	return t.Stop()
}

func (r *TimerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Stop снимает все действия; новые после этого не планируются.
func (r *TimerRegistry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for key, t := range r.timers {
		t.Stop()
		delete(r.timers, key)
	}
}
