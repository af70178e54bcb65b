// Package notify presents cycle results to the operator.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// Console implements ports.Notifier on stdout. With table mode off it
// prints one compact line per cycle, useful when the bot runs under a
// process supervisor that captures logs.
type Console struct {
	out          io.Writer
	baseDecimals int
	table        bool
}

// NewConsole creates a notifier writing to stdout.
func NewConsole(baseDecimals int, table bool) *Console {
	return &Console{out: os.Stdout, baseDecimals: baseDecimals, table: table}
}

// NewConsoleWriter creates a notifier for tests.
func NewConsoleWriter(w io.Writer, baseDecimals int, table bool) *Console {
	return &Console{out: w, baseDecimals: baseDecimals, table: table}
}

// Notify prints one pass over all tokens.
func (c *Console) Notify(_ context.Context, records []domain.CycleRecord) error {
	if len(records) == 0 {
		fmt.Fprintf(c.out, "[%s] no tokens processed\n", time.Now().Format("15:04:05"))
		return nil
	}
	if c.table {
		c.printTable(records)
	} else {
		c.printCompact(records)
	}
	return nil
}

func (c *Console) printCompact(records []domain.CycleRecord) {
	now := time.Now().Format("15:04:05")
	for _, r := range records {
		fmt.Fprintf(c.out, "[%s] %s mid %s spread %s placed:%d canceled:%d open %d/%d val %s\n",
			now, r.TokenKey,
			domain.FormatScaled(r.MidPrice, c.baseDecimals),
			domain.FormatScaled(r.Spread, c.baseDecimals),
			r.OrdersPlaced, r.OrdersCanceled,
			r.OpenBuys, r.OpenSells,
			domain.FormatScaled(r.Inventory.Valuation, c.baseDecimals))
	}
}

func (c *Console) printTable(records []domain.CycleRecord) {
	fmt.Fprintf(c.out, "\n[%s] cycle report, %d token(s)\n", time.Now().Format("15:04:05"), len(records))

	table := tablewriter.NewWriter(c.out)
	table.Header("Token", "Mid", "Spread", "Placed", "Canceled", "Buys", "Sells", "ADA", "Tokens", "Valuation")

	for _, r := range records {
		table.Append(
			r.TokenKey,
			domain.FormatScaled(r.MidPrice, c.baseDecimals),
			domain.FormatScaled(r.Spread, c.baseDecimals),
			fmt.Sprintf("%d", r.OrdersPlaced),
			fmt.Sprintf("%d", r.OrdersCanceled),
			fmt.Sprintf("%d", r.OpenBuys),
			fmt.Sprintf("%d", r.OpenSells),
			domain.FormatScaled(r.Inventory.Lovelace, c.baseDecimals),
			fmt.Sprintf("%d", r.Inventory.Tokens),
			domain.FormatScaled(r.Inventory.Valuation, c.baseDecimals),
		)
	}

	table.Render()
}
