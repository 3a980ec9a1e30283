package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailshop/internal/models"
)

func TestPrintSummary(t *testing.T) {
	summary := &models.SalesSummary{
		TotalOrders:  3,
		TotalRevenue: decimal.RequireFromString("1500.5"),
		Last7Days:    models.SalesWindow{Orders: 2, Revenue: decimal.NewFromInt(1000)},
		Last30Days:   models.SalesWindow{Orders: 3, Revenue: decimal.RequireFromString("1500.5")},
		Daily: []models.DailySales{
			{
				Date:         time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
				Orders:       2,
				Revenue:      decimal.NewFromInt(1000),
				AverageOrder: decimal.NewFromInt(500),
			},
		},
	}

	var out bytes.Buffer
	require.NoError(t, printSummary(&out, summary))

	text := out.String()
	assert.Contains(t, text, "Total: 3 orders, revenue 1500.50")
	assert.Contains(t, text, "Last 7 days: 2 orders, revenue 1000.00")
	assert.Contains(t, text, "2026-03-14")
	assert.Contains(t, text, "500.00")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "report", "seed"} {
		assert.True(t, names[want], want)
	}
}
