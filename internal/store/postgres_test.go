package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"replymate/internal/domain"
)

func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("REPLYMATE_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("REPLYMATE_TEST_DB_DSN not set")
	}
	ctx := context.Background()
	backend, err := NewPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer backend.Close()
	if err := backend.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := New(backend, Config{})
	userID := "test-" + uuid.NewString()
	if err := s.SetPartnerName(ctx, userID, "Liya"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := s.AddPersonalDetail(ctx, userID, "city", "Addis"); err != nil {
		t.Fatalf("add detail: %v", err)
	}
	if err := s.AppendHistory(ctx, userID, domain.Exchange{Incoming: "hi", Reply: "hey"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	p, found, err := backend.Load(ctx, userID)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if p.PartnerName != "Liya" || p.PersonalDetails["city"] != "Addis" || len(p.History) != 1 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}
