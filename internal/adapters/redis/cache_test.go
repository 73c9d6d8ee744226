package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "booking_bot/internal/adapters/redis"
)

type entry struct {
	Found bool   `json:"found"`
	Name  string `json:"name"`
}

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	defer c.Close()
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var got entry
	ok, err := c.Get(ctx, "venue:montebello", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "venue:montebello", entry{Found: true, Name: "Montebello"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err = c.Get(ctx, "venue:montebello", &got)
	if err != nil || !ok || !got.Found || got.Name != "Montebello" {
		t.Fatalf("unexpected get: ok=%v err=%v v=%+v", ok, err, got)
	}

	if err := c.Del(ctx, "venue:montebello"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "venue:montebello", &got); ok {
		t.Fatalf("expected miss after del")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "venue:x", entry{Name: "x"}, 30)
	mr.FastForward(31 * time.Second)

	var got entry
	if ok, _ := c.Get(ctx, "venue:x", &got); ok {
		t.Fatalf("expected entry to expire")
	}
}
