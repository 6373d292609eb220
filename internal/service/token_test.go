package service_test

import (
	"context"
	"testing"

	"github.com/saadjs/cycle-cli/internal/service"
)

func TestTokenStoreLifecycle(t *testing.T) {
	t.Parallel()
	store := service.TokenStore{DB: newTestDB(t)}
	ctx := context.Background()

	token, err := store.LoadToken(ctx)
	if err != nil || token != "" {
		t.Fatalf("expected empty token, got %q err=%v", token, err)
	}

	if err := store.SaveToken(ctx, "first"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveToken(ctx, "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	token, _ = store.LoadToken(ctx)
	if token != "second" {
		t.Fatalf("expected second, got %q", token)
	}

	if err := store.ClearToken(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.ClearToken(ctx); err != nil {
		t.Fatalf("clear twice: %v", err)
	}
	token, _ = store.LoadToken(ctx)
	if token != "" {
		t.Fatalf("expected cleared token, got %q", token)
	}
}
