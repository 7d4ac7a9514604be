package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"clipsync/internal/domain/session"
)

const shardCount = 16

// MemoryLimiter хранит счетчики окон в памяти процесса. Ключи
// распределяются по шардам, каждый шард закрыт своим мьютексом.
type MemoryLimiter struct {
	rules  Rules
	clock  func() time.Time
	shards [shardCount]*shard
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count int
	start time.Time
}

func NewMemory(rules Rules) *MemoryLimiter {
	m := &MemoryLimiter{
		rules: rules,
		clock: time.Now,
	}
	for i := range m.shards {
		m.shards[i] = &shard{windows: make(map[string]*window)}
	}
	return m
}

// WithClock подменяет источник времени в тестах
func (m *MemoryLimiter) WithClock(clock func() time.Time) *MemoryLimiter {
	m.clock = clock
	return m
}

func (m *MemoryLimiter) Allow(_ context.Context, ident session.Identity) Decision {
	now := m.clock()

	device := m.hit("device:"+ident.DeviceID, time.Minute, m.rules.DevicePerMinute, now)
	grp := m.hit("group:"+ident.SyncGroupID, time.Hour, m.rules.GroupPerHour, now)

	return combine(device, grp)
}

// hit учитывает запрос в одном окне. Истекшее окно начинается заново
// со счетчиком 1, живое окно инкрементируется.
func (m *MemoryLimiter) hit(key string, dur time.Duration, limit int, now time.Time) windowState {
	sh := m.shards[shardIndex(key)]
	sh.mu.Lock()
	defer sh.mu.Unlock()

	w := sh.windows[key]
	if w == nil || now.After(w.start.Add(dur)) {
		w = &window{count: 1, start: now}
		sh.windows[key] = w
	} else {
		w.count++
	}

	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}

	return windowState{
		remaining: remaining,
		resetAt:   w.start.Add(dur),
		allowed:   w.count <= limit,
	}
}

func shardIndex(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}
