// Package ratelimit — ChatRateLimiter: LLM completion isteklerine karşı
// kullanıcı bazlı rate limiting.
//
// Tasarım:
// - Her kullanıcı için sliding window ile istek sayısı takip edilir.
// - Window içinde maxRequests aşılırsa cooldown başlar: ceza süresi
//   boyunca tüm istekler reddedilir.
// - Cooldown bitince window sıfırlanır, kullanıcı tekrar istek atabilir.
// - Background goroutine ile süresi dolmuş bucket'lar temizlenir (memory leak engeli).
//
// Neden in-memory?
// - SQLite'a her request'te yazma gereksiz I/O + contention yaratır.
// - Redis bağımlılığı eklememek için in-memory yeterli (tek instance deploy).
// - sync.RWMutex ile thread-safe: RLock okuma, Lock yazma.
//
// Neden kullanıcı bazlı (IP değil)?
// Chat endpoint'i authenticated — maliyetli kaynak LLM çağrısı ve o
// kullanıcıya faturalanıyor. Aynı NAT arkasındaki kullanıcıları
// birbirinin limitine sokmamak için key userID.
package ratelimit

import (
	"sync"
	"time"
)

// bucket, bir kullanıcı için istek sayacı ve cooldown bilgisi tutar.
//
// İki durumlu:
// 1. Normal mod: count artırılır, windowStart bazlı pencere kontrolü.
// 2. Cooldown mod: cooldownUntil > now → tüm istekler reddedilir.
type bucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// ChatRateLimiter, kullanıcı bazlı LLM istek koruması.
//
// maxRequests: Bir window içinde izin verilen maksimum istek sayısı.
// window: Sayaç pencere süresi (örn: 1 dakika).
// cooldown: Limit aşıldığında uygulanan ceza süresi (örn: 30 saniye).
//
// Kullanım:
//
//	limiter := NewChatRateLimiter(10, time.Minute, 30*time.Second)
//	// Chat handler'da:
//	if !limiter.Allow(userID) { return 429 }
type ChatRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*bucket
	maxRequests int
	window      time.Duration
	cooldown    time.Duration
	stopCleanup chan struct{}
}

// NewChatRateLimiter, yeni rate limiter oluşturur ve arka plan temizleme
// goroutine'ini başlatır.
func NewChatRateLimiter(maxRequests int, window, cooldown time.Duration) *ChatRateLimiter {
	rl := &ChatRateLimiter{
		buckets:     make(map[string]*bucket),
		maxRequests: maxRequests,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
	}

	// Background cleanup — süresi dolmuş bucket'ları temizler.
	// Bucket'lar kısa ömürlü ama çok sayıda kullanıcıda bellek
	// birikmesini önlemek için gerekli.
	go rl.cleanupLoop()

	return rl
}

// Allow, verilen kullanıcının completion isteğine izin verilip
// verilmediğini kontrol eder.
//
// true: İstek kabul edildi (limit aşılmadı).
// false: Rate limit aşıldı → caller 429 dönmeli.
//
// Akış:
// 1. Cooldown'daysa → reject (cooldown bitmeden hiçbir istek geçmez).
// 2. Window dolmuşsa → yeni pencere başlat.
// 3. Window içindeyse → count artır, max aşıldıysa cooldown başlat.
func (rl *ChatRateLimiter) Allow(userID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[userID]
	if !exists {
		// İlk istek — yeni bucket oluştur
		rl.buckets[userID] = &bucket{count: 1, windowStart: now}
		return true
	}

	// Cooldown'da mıyız?
	if !b.cooldownUntil.IsZero() && now.Before(b.cooldownUntil) {
		return false
	}

	// Cooldown bittiyse → yeni pencere başlat
	if !b.cooldownUntil.IsZero() {
		b.count = 1
		b.windowStart = now
		b.cooldownUntil = time.Time{}
		return true
	}

	// Window süresi dolmuş mu?
	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	// Window içindeyiz — sayacı artır
	b.count++
	if b.count > rl.maxRequests {
		// Limit aşıldı — cooldown başlat
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}

	return true
}

// CooldownSeconds, rate limit aşıldığında kalan cooldown süresini saniye
// cinsinden döner. HTTP Retry-After header değeri olarak kullanılır.
//
// Cooldown yoksa 0 döner.
func (rl *ChatRateLimiter) CooldownSeconds(userID string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[userID]
	if !exists || b.cooldownUntil.IsZero() {
		return 0
	}

	remaining := time.Until(b.cooldownUntil)
	if remaining <= 0 {
		return 0
	}

	// +1 yuvarlama — client'ın tam süreyi beklemesi için
	return int(remaining.Seconds()) + 1
}

// cleanupLoop, arka planda süresi dolmuş bucket'ları temizler.
func (rl *ChatRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup, süresi dolmuş tüm bucket'ları siler.
//
// Silme koşulu: hem window süresi geçmiş hem cooldown bitmiş.
// Bu, cooldown'daki kullanıcıların bucket'ını yanlışlıkla silmeyi önler.
func (rl *ChatRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)

		if windowExpired && cooldownExpired {
			delete(rl.buckets, userID)
		}
	}
}
