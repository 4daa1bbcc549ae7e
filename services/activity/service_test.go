package activity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialboost-core/services/testutil"
	"socialboost-core/services/wallet"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestFeedReturnsCompletedNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t, &wallet.Transaction{})
	svc := NewService(ServiceParams{DB: db})

	rows := []wallet.Transaction{
		{ID: "t1", UserID: "a", Username: "alice", Type: wallet.TypeEarn, Status: wallet.StatusCompleted, Amount: 10},
		{ID: "t2", UserID: "b", Username: "bob", Type: wallet.TypePurchase, Status: wallet.StatusPending, Amount: 1000},
		{ID: "t3", UserID: "c", Username: "carol", Type: wallet.TypeSpend, Status: wallet.StatusCompleted, Amount: 60},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	entries, err := svc.Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NotEqual(t, "bob", e.Username, "pending rows stay off the board")
	}
}

func TestFeedEmpty(t *testing.T) {
	db := testutil.NewTestDB(t, &wallet.Transaction{})
	svc := NewService(ServiceParams{DB: db})

	entries, err := svc.Feed(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)
}
