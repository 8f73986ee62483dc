package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyledger/tally/internal/model"
)

func expense(label, icon, amount string, when time.Time) model.Transaction {
	return model.Transaction{
		ID:     label + when.Format(time.RFC3339Nano),
		Label:  label,
		Icon:   icon,
		Amount: decimal.RequireFromString(amount).Neg(),
		Date:   &when,
	}
}

func income(label, amount string, when time.Time) model.Transaction {
	return model.Transaction{
		ID:     label + when.Format(time.RFC3339Nano),
		Label:  label,
		Amount: decimal.RequireFromString(amount),
		Date:   &when,
	}
}

func TestMonthlyTrends(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	snapshot := []model.Transaction{
		expense("rent", "bolt", "800", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		expense("groceries", "cart", "120.50", time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)),
		income("salary", "3000", time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)),
		expense("rent", "bolt", "800", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		// Outside the window.
		expense("old", "receipt", "10", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		// Undated never matches.
		{ID: "undated", Amount: decimal.RequireFromString("-99")},
	}

	trends := MonthlyTrends(snapshot, now, 2)
	require.Len(t, trends, 2)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), trends[0].Month)
	assert.Equal(t, "800", trends[0].Expense.String())
	assert.Equal(t, 1, trends[0].Count)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), trends[1].Month)
	assert.Equal(t, "920.5", trends[1].Expense.String())
	assert.Equal(t, "3000", trends[1].Income.String())
	assert.Equal(t, 3, trends[1].Count)
}

func TestMonthlyTrends_NonPositiveMonths(t *testing.T) {
	assert.Nil(t, MonthlyTrends(nil, time.Now(), 0))
	assert.Nil(t, MonthlyTrends(nil, time.Now(), -3))
}

func TestCompareMonths(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		snapshot    []model.Transaction
		wantCurrent string
		wantChange  string
		wantPercent int64
	}{
		{
			name: "expenses grew fifty percent",
			snapshot: []model.Transaction{
				expense("a", "receipt", "150", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)),
				expense("b", "receipt", "100", time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)),
			},
			wantCurrent: "150",
			wantChange:  "50",
			wantPercent: 50,
		},
		{
			name: "previous month empty reports zero percent",
			snapshot: []model.Transaction{
				expense("a", "receipt", "200", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)),
			},
			wantCurrent: "200",
			wantChange:  "200",
			wantPercent: 0,
		},
		{
			name: "income is ignored",
			snapshot: []model.Transaction{
				income("salary", "5000", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
				expense("a", "receipt", "40", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)),
				expense("b", "receipt", "80", time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)),
			},
			wantCurrent: "40",
			wantChange:  "-40",
			wantPercent: -50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp := CompareMonths(tt.snapshot, now)
			assert.Equal(t, tt.wantCurrent, cmp.Current.String())
			assert.Equal(t, tt.wantChange, cmp.Change.String())
			assert.Equal(t, tt.wantPercent, cmp.ChangePercent)
		})
	}
}

func TestTopMerchants(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	snapshot := []model.Transaction{
		expense("Cafe", "restaurant", "10", now),
		expense("Cafe", "restaurant", "15", now.AddDate(0, 0, -1)),
		expense(" Cafe ", "restaurant", "5", now.AddDate(0, 0, -2)),
		expense("Grocer", "cart", "40", now),
		expense("Cinema", "film", "12", now),
		income("refund", "100", now),
	}

	stats := TopMerchants(snapshot, 2)
	require.Len(t, stats, 2)

	// Labels group after trimming, so all three Cafe rows collapse.
	assert.Equal(t, "Grocer", stats[0].Label)
	assert.Equal(t, "40", stats[0].Total.String())
	assert.Equal(t, "Cafe", stats[1].Label)
	assert.Equal(t, "30", stats[1].Total.String())
	assert.Equal(t, 3, stats[1].Count)
	assert.Equal(t, now, stats[1].LastSeen)
}

func TestTopMerchants_TiesBreakByLabel(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	snapshot := []model.Transaction{
		expense("Beta", "receipt", "10", now),
		expense("Alpha", "receipt", "10", now),
	}

	stats := TopMerchants(snapshot, 5)
	require.Len(t, stats, 2)
	assert.Equal(t, "Alpha", stats[0].Label)
	assert.Equal(t, "Beta", stats[1].Label)
}

func TestWeekdayPattern_AlwaysSevenSlots(t *testing.T) {
	stats := WeekdayPattern(nil)
	require.Len(t, stats, 7)
	for i, stat := range stats {
		assert.Equal(t, time.Weekday(i), stat.Weekday)
		assert.True(t, stat.Total.IsZero())
		assert.Zero(t, stat.Count)
		assert.True(t, stat.Average.IsZero())
	}
}

func TestWeekdayPattern_Averages(t *testing.T) {
	monday := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	snapshot := []model.Transaction{
		expense("a", "receipt", "10", monday),
		expense("b", "receipt", "5", monday.AddDate(0, 0, 7)),
		income("pay", "100", monday),
		{ID: "undated", Amount: decimal.RequireFromString("-50")},
	}

	stats := WeekdayPattern(snapshot)
	mon := stats[int(time.Monday)]
	assert.Equal(t, "15", mon.Total.String())
	assert.Equal(t, 2, mon.Count)
	assert.Equal(t, "7.5", mon.Average.String())
}

func TestCategoryBreakdown(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	snapshot := []model.Transaction{
		expense("lunch", "restaurant", "30", from.AddDate(0, 0, 3)),
		expense("dinner", "restaurant", "45", from.AddDate(0, 0, 4)),
		expense("bus", "car", "25", from.AddDate(0, 0, 5)),
		// Outside the range.
		expense("old", "restaurant", "500", from.AddDate(0, -1, 0)),
		income("pay", "1000", from.AddDate(0, 0, 1)),
	}

	stats := CategoryBreakdown(snapshot, from, to)
	require.Len(t, stats, 2)

	assert.Equal(t, "restaurant", stats[0].Icon)
	assert.Equal(t, "75", stats[0].Total.String())
	assert.Equal(t, int64(75), stats[0].Percent)
	assert.Equal(t, 2, stats[0].Count)

	assert.Equal(t, "car", stats[1].Icon)
	assert.Equal(t, int64(25), stats[1].Percent)
}

func TestCategoryBreakdown_EmptyRange(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	stats := CategoryBreakdown(nil, from, from.AddDate(0, 1, 0))
	assert.Empty(t, stats)
}
