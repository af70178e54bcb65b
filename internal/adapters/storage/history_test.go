package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvelasco/mueslibot/internal/adapters/storage"
	"github.com/mvelasco/mueslibot/internal/domain"
)

func makeCycle(id string, ranAt time.Time) domain.CycleRecord {
	return domain.CycleRecord{
		ID:             id,
		TokenKey:       "MILK",
		RanAt:          ranAt,
		MidPrice:       1_000_000,
		Spread:         20_000,
		OrdersPlaced:   2,
		OrdersCanceled: 1,
		OpenBuys:       3,
		OpenSells:      2,
		Inventory:      domain.Inventory{Lovelace: 50_000_000, Tokens: 200, Valuation: 52_000_000},
	}
}

func TestHistory_RecordAndGetRecent(t *testing.T) {
	db, err := storage.NewHistory(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, db.RecordCycle(ctx, makeCycle("c1", base.Add(-time.Minute))))
	require.NoError(t, db.RecordCycle(ctx, makeCycle("c2", base)))

	records, err := db.GetRecent(ctx, "MILK", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "c2", records[0].ID, "newest first")
	assert.Equal(t, int64(1_000_000), records[0].MidPrice)
	assert.Equal(t, int64(52_000_000), records[0].Inventory.Valuation)
}

func TestHistory_GetRecentOtherToken(t *testing.T) {
	db, err := storage.NewHistory(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.RecordCycle(context.Background(), makeCycle("c1", time.Now())))

	records, err := db.GetRecent(context.Background(), "OTHER", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
