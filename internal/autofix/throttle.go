package autofix

import (
	"sync"
	"time"
)

// Throttle подавляет повторные эмиссии одного и того же события ремедиации.
// Ключ идемпотентности — (event, clinicId, serviceId); повтор внутри окна
// (2 секунды) не проходит. Защита от дублей мастеров при быстрых
// ресабмитах формы и повторном рендере.
type Throttle struct {
	mu     sync.Mutex
	last   map[string]time.Time
	window time.Duration
	now    func() time.Time // Подменяется в тестах
}

func NewThrottle(window time.Duration) *Throttle {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &Throttle{
		last:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
	}
}

// Allow отмечает попытку и говорит, можно ли эмитить.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if prev, ok := t.last[key]; ok && now.Sub(prev) < t.window {
		return false
	}

	// Попутно выметаем протухшие ключи, чтобы мапа не росла
	for k, at := range t.last {
		if now.Sub(at) >= t.window {
			delete(t.last, k)
		}
	}

	t.last[key] = now
	return true
}
