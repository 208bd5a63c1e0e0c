package middleware

import (
	"sync"
	"time"
)

// RateLimiter ограничивает количество сообщений на пользователя
// по алгоритму скользящего окна. Защита от флуда командами «!сдал».
type RateLimiter struct {
	mu      sync.Mutex
	history map[int64][]time.Time
	limit   int
	window  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter создаёт лимитер с фоновой очисткой устаревших записей.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		history: make(map[int64][]time.Time),
		limit:   limit,
		window:  window,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Close останавливает фоновую горутину очистки.
// Вызывать на shutdown, иначе cleanup живёт вечно.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow сообщает, можно ли обработать очередное сообщение пользователя,
// и учитывает его в окне, если можно.
func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := pruneBefore(rl.history[userID], now.Add(-rl.window))

	if len(recent) >= rl.limit {
		rl.history[userID] = recent
		return false
	}

	rl.history[userID] = append(recent, now)
	return true
}

// pruneBefore отбрасывает отметки времени раньше cutoff, сохраняя порядок.
func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	// Отметки добавляются по возрастанию, ищем первую живую.
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// cleanupLoop периодически выкидывает пользователей, от которых давно
// не было сообщений, чтобы карта не росла бесконечно.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for userID, times := range rl.history {
				recent := pruneBefore(times, cutoff)
				if len(recent) == 0 {
					delete(rl.history, userID)
				} else {
					rl.history[userID] = recent
				}
			}
			rl.mu.Unlock()
		}
	}
}
