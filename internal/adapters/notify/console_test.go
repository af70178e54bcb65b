package notify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvelasco/mueslibot/internal/domain"
)

func sampleRecord() domain.CycleRecord {
	return domain.CycleRecord{
		ID:             "c1",
		TokenKey:       "MILK",
		RanAt:          time.Now(),
		MidPrice:       1_500_000,
		Spread:         20_000,
		OrdersPlaced:   2,
		OrdersCanceled: 1,
		OpenBuys:       3,
		OpenSells:      3,
		Inventory:      domain.Inventory{Lovelace: 50_000_000, Tokens: 10_000_000, Valuation: 65_000_000},
	}
}

func TestConsole_Compact(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, 6, false)

	require.NoError(t, c.Notify(context.Background(), []domain.CycleRecord{sampleRecord()}))

	out := buf.String()
	assert.Contains(t, out, "MILK")
	assert.Contains(t, out, "mid 1.500000")
	assert.Contains(t, out, "placed:2")
	assert.Contains(t, out, "open 3/3")
}

func TestConsole_Table(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, 6, true)

	require.NoError(t, c.Notify(context.Background(), []domain.CycleRecord{sampleRecord()}))

	out := buf.String()
	assert.Contains(t, out, "cycle report")
	assert.Contains(t, out, "MILK")
	assert.Contains(t, out, "65.000000")
}

func TestConsole_Empty(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, 6, false)

	require.NoError(t, c.Notify(context.Background(), nil))
	assert.Contains(t, buf.String(), "no tokens processed")
}
