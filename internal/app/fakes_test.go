package app_test

import (
	"context"
	"encoding/json"
	"sync"

	"booking_bot/internal/domain"
)

// ---- fakes ----

// fakeLLM answers by system prompt: generate and extract get separate replies.
type fakeLLM struct {
	mu        sync.Mutex
	generated string
	location  string
	genErr    error
	extErr    error
	calls     []string // user turns, in order
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, user)
	if len(f.calls) == 1 {
		return f.generated, f.genErr
	}
	return f.location, f.extErr
}

type fakePlaces struct {
	mu       sync.Mutex
	features []map[string]any
	err      error
	queries  []string
}

func (f *fakePlaces) Search(ctx context.Context, text string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	return f.features, f.err
}

type fakeMessenger struct {
	id    string
	err   error
	calls int
	to    string
	body  string
}

func (f *fakeMessenger) Send(ctx context.Context, to, body string) (string, error) {
	f.calls++
	f.to, f.body = to, body
	return f.id, f.err
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	ttls  map[string]int
	err   error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
		c.ttls = map[string]int{}
	}
	b, _ := json.Marshal(v)
	c.store[key] = b
	c.ttls[key] = ttlSec
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

type missEntry struct{ query, reason string }

type fakeMisses struct {
	mu     sync.Mutex
	logged []missEntry
}

func (f *fakeMisses) LogMiss(ctx context.Context, query, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged = append(f.logged, missEntry{query, reason})
	return nil
}

func (f *fakeMisses) TopMisses(ctx context.Context, limit int) ([]domain.Miss, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Miss, 0, len(f.logged))
	for _, m := range f.logged {
		out = append(out, domain.Miss{Query: m.query, Hits: 1})
	}
	return out, nil
}

// ---- fixtures ----

func feature(name, phone string) map[string]any {
	meta := map[string]any{"address": "Алматы, ул. Фурманова, 50"}
	if phone != "" {
		meta["Phones"] = []any{map[string]any{"type": "phone", "formatted": phone}}
	}
	return map[string]any{"properties": map[string]any{"name": name, "CompanyMetaData": meta}}
}

