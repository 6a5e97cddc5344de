package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"replymate/internal/domain"
)

func TestRedisBackendRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisWithClient(client, "test")
	s := New(backend, Config{MaxHistory: 2})
	defer s.Close()
	ctx := context.Background()

	if _, found, err := backend.Load(ctx, "5"); err != nil || found {
		t.Fatalf("expected missing profile, found=%v err=%v", found, err)
	}

	if err := s.UpdateStyle(ctx, "5", "supportive"); err != nil {
		t.Fatalf("update style: %v", err)
	}
	for _, in := range []string{"a", "b", "c"} {
		if err := s.AppendHistory(ctx, "5", domain.Exchange{Incoming: in, Reply: in + "!"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if !mr.Exists("test:profile:5") {
		t.Fatalf("expected key test:profile:5, keys=%v", mr.Keys())
	}
	p, err := s.GetProfile(ctx, "5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Style != "supportive" {
		t.Fatalf("style = %q", p.Style)
	}
	if len(p.History) != 2 || p.History[0].Incoming != "b" || p.History[1].Incoming != "c" {
		t.Fatalf("history = %+v", p.History)
	}
}

func TestRedisBackendRejectsCorruptRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedisWithClient(client, "")
	defer backend.Close()

	if err := mr.Set("replymate:profile:1", "nope"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := backend.Load(context.Background(), "1"); err == nil {
		t.Fatalf("expected decode error")
	}
}
