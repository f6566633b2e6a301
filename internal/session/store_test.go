package session

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/model"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/store"
)

func newTestStore(t *testing.T) (*ValkeyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewValkeyStore(store.NewValkeyClientFromRedis(client)), mr
}

func TestStoreGetNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "unknown-call")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreSaveGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	call := &Call{
		State:             StateSelecting,
		AccumulatedDigits: "764",
		AllMatches: []model.Entry{
			{Extension: "1001", FirstName: "Alice", LastName: "Smith", FullName: "Alice Smith", LastDigits: "76484"},
			{Extension: "1002", FirstName: "Bob", LastName: "Smith", FullName: "Bob Smith", LastDigits: "76484"},
		},
		CurrentPage:     1,
		ReturnTo:        "sip:aa@example.com",
		ReturnToChecked: true,
	}

	if err := s.Save(ctx, "call-1", call); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Get(ctx, "call-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.State != StateSelecting {
		t.Errorf("State = %v", got.State)
	}
	if got.AccumulatedDigits != "764" {
		t.Errorf("AccumulatedDigits = %q", got.AccumulatedDigits)
	}
	if len(got.AllMatches) != 2 || got.AllMatches[0].Extension != "1001" {
		t.Errorf("AllMatches = %+v", got.AllMatches)
	}
	if got.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d", got.CurrentPage)
	}
	if got.ReturnTo != "sip:aa@example.com" || !got.ReturnToChecked {
		t.Errorf("ReturnTo = %q checked=%v", got.ReturnTo, got.ReturnToChecked)
	}
}

func TestStoreSaveSetsTTL(t *testing.T) {
	s, mr := newTestStore(t)

	if err := s.Save(context.Background(), "call-1", NewCall()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if ttl := mr.TTL("dbn:sess:call-1"); ttl <= 0 {
		t.Errorf("expected positive TTL, got %v", ttl)
	}
}

func TestStoreClear(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "call-1", NewCall()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Clear(ctx, "call-1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := s.Get(ctx, "call-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after Clear, got %v", err)
	}

	// 存在しないキーのClearもエラーにしない
	if err := s.Clear(ctx, "never-existed"); err != nil {
		t.Errorf("Clear on missing key failed: %v", err)
	}
}

func TestStoreGetInvalidState(t *testing.T) {
	s, mr := newTestStore(t)

	mr.HSet("dbn:sess:call-1", "state", "bogus")

	if _, err := s.Get(context.Background(), "call-1"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_ = s.Save(ctx, "call-a", NewCall())
	_ = s.Save(ctx, "call-b", NewCall())

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("List returned %d ids, want 2", len(ids))
	}
}
