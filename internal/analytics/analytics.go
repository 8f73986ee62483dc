// Package analytics derives spending insights from a ledger snapshot. Every
// function here is pure: it reads the snapshot and a reference time, mutates
// nothing, and recomputes from scratch on each call.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallyledger/tally/internal/model"
)

var oneHundred = decimal.NewFromInt(100)

// MonthlyTrend aggregates one calendar month.
type MonthlyTrend struct {
	Month   time.Time // first instant of the month, local time
	Expense decimal.Decimal
	Income  decimal.Decimal
	Count   int
}

// MonthComparison holds expense-only sums for the current and previous
// calendar months.
type MonthComparison struct {
	Current       decimal.Decimal
	Previous      decimal.Decimal
	Change        decimal.Decimal
	ChangePercent int64 // exactly 0 when the previous month had no expenses
}

// MerchantStat aggregates expenses for one merchant label.
type MerchantStat struct {
	LastSeen time.Time
	Label    string
	Total    decimal.Decimal
	Count    int
}

// WeekdayStat aggregates expenses for one weekday slot.
type WeekdayStat struct {
	Weekday time.Weekday
	Total   decimal.Decimal
	Count   int
	Average decimal.Decimal
}

// CategoryStat aggregates expenses for one icon tag within a date range.
type CategoryStat struct {
	Icon    string
	Total   decimal.Decimal
	Count   int
	Percent int64 // share of the range's total expense, rounded per category
}

// MonthlyTrends sums expenses and income for the trailing months calendar
// months, current month included, ordered oldest to newest. Month bounds are
// local time; undated transactions never match.
func MonthlyTrends(snapshot []model.Transaction, now time.Time, months int) []MonthlyTrend {
	if months <= 0 {
		return nil
	}

	trends := make([]MonthlyTrend, 0, months)
	for k := months - 1; k >= 0; k-- {
		start := monthStart(now, -k)
		end := monthStart(now, -k+1)

		trend := MonthlyTrend{Month: start, Expense: decimal.Zero, Income: decimal.Zero}
		for _, txn := range snapshot {
			if !inRange(txn, start, end) {
				continue
			}
			trend.Count++
			if txn.Amount.IsNegative() {
				trend.Expense = trend.Expense.Add(txn.Amount.Abs())
			} else {
				trend.Income = trend.Income.Add(txn.Amount)
			}
		}
		trends = append(trends, trend)
	}

	return trends
}

// CompareMonths computes the month-over-month expense change. The percentage
// is exactly zero whenever the previous month had no expenses, guarding the
// division.
func CompareMonths(snapshot []model.Transaction, now time.Time) MonthComparison {
	currentStart := monthStart(now, 0)
	nextStart := monthStart(now, 1)
	previousStart := monthStart(now, -1)

	current := expenseTotal(snapshot, currentStart, nextStart)
	previous := expenseTotal(snapshot, previousStart, currentStart)
	change := current.Sub(previous)

	var changePercent int64
	if previous.IsPositive() {
		changePercent = change.Div(previous).Mul(oneHundred).Round(0).IntPart()
	}

	return MonthComparison{
		Current:       current,
		Previous:      previous,
		Change:        change,
		ChangePercent: changePercent,
	}
}

// TopMerchants ranks expense transactions by trimmed label, exact string
// match only, descending by aggregate amount. At most limit entries are
// returned.
func TopMerchants(snapshot []model.Transaction, limit int) []MerchantStat {
	if limit <= 0 {
		return nil
	}

	byLabel := make(map[string]*MerchantStat)
	for _, txn := range snapshot {
		if !txn.Amount.IsNegative() {
			continue
		}
		label := strings.TrimSpace(txn.Label)

		stat, ok := byLabel[label]
		if !ok {
			stat = &MerchantStat{Label: label, Total: decimal.Zero}
			byLabel[label] = stat
		}
		stat.Total = stat.Total.Add(txn.Amount.Abs())
		stat.Count++
		if when := txn.SortKey(); when.After(stat.LastSeen) {
			stat.LastSeen = when
		}
	}

	stats := make([]MerchantStat, 0, len(byLabel))
	for _, stat := range byLabel {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].Total.Equal(stats[j].Total) {
			return stats[i].Total.GreaterThan(stats[j].Total)
		}
		return stats[i].Label < stats[j].Label
	})

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// WeekdayPattern buckets dated expense transactions into the seven fixed
// weekday slots, Sunday first. All seven slots are always present,
// zero-filled when empty.
func WeekdayPattern(snapshot []model.Transaction) []WeekdayStat {
	stats := make([]WeekdayStat, 7)
	for i := range stats {
		stats[i].Weekday = time.Weekday(i)
		stats[i].Total = decimal.Zero
		stats[i].Average = decimal.Zero
	}

	for _, txn := range snapshot {
		if txn.Date == nil || !txn.Amount.IsNegative() {
			continue
		}
		slot := int(txn.Date.Weekday())
		stats[slot].Total = stats[slot].Total.Add(txn.Amount.Abs())
		stats[slot].Count++
	}

	for i := range stats {
		if stats[i].Count > 0 {
			stats[i].Average = stats[i].Total.DivRound(decimal.NewFromInt(int64(stats[i].Count)), 2)
		}
	}

	return stats
}

// CategoryBreakdown groups expense transactions by icon tag within
// [from, to). Percentages are rounded independently per category, so they are
// not guaranteed to sum to exactly 100.
func CategoryBreakdown(snapshot []model.Transaction, from, to time.Time) []CategoryStat {
	byIcon := make(map[string]*CategoryStat)
	total := decimal.Zero

	for _, txn := range snapshot {
		if !txn.Amount.IsNegative() || !inRange(txn, from, to) {
			continue
		}
		stat, ok := byIcon[txn.Icon]
		if !ok {
			stat = &CategoryStat{Icon: txn.Icon, Total: decimal.Zero}
			byIcon[txn.Icon] = stat
		}
		amount := txn.Amount.Abs()
		stat.Total = stat.Total.Add(amount)
		stat.Count++
		total = total.Add(amount)
	}

	stats := make([]CategoryStat, 0, len(byIcon))
	for _, stat := range byIcon {
		if total.IsPositive() {
			stat.Percent = stat.Total.Div(total).Mul(oneHundred).Round(0).IntPart()
		}
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].Total.Equal(stats[j].Total) {
			return stats[i].Total.GreaterThan(stats[j].Total)
		}
		return stats[i].Icon < stats[j].Icon
	})

	return stats
}

// monthStart returns the first instant of the month delta months away from
// now, in now's location.
func monthStart(now time.Time, delta int) time.Time {
	return time.Date(now.Year(), now.Month()+time.Month(delta), 1, 0, 0, 0, 0, now.Location())
}

func inRange(txn model.Transaction, from, to time.Time) bool {
	if txn.Date == nil {
		return false
	}
	return !txn.Date.Before(from) && txn.Date.Before(to)
}

func expenseTotal(snapshot []model.Transaction, from, to time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range snapshot {
		if txn.Amount.IsNegative() && inRange(txn, from, to) {
			total = total.Add(txn.Amount.Abs())
		}
	}
	return total
}
