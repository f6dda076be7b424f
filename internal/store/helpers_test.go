package store_test

import (
	"context"
	"testing"
	"time"

	"casino-bot/internal/store"
)

func mustAccount(t *testing.T, st *store.Store, ctx context.Context, userID string, initial int64) store.Account {
	t.Helper()
	acc, err := st.GetOrCreateAccount(ctx, userID, initial)
	if err != nil {
		t.Fatalf("get or create account: %v", err)
	}
	return acc
}

func sameUTCDay(last, now time.Time) bool {
	ly, lm, ld := last.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return ly == ny && lm == nm && ld == nd
}
