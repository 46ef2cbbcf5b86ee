// Package budget computes remaining-budget projections from a financial
// record. Everything here is pure: the current date is always passed in.
package budget

import (
	"fmt"
	"time"

	"github.com/micanis/bot-pocket-pace/models"
)

// TotalIncome is the recurring base income plus every extra income entry.
func TotalIncome(r *models.Record) int64 {
	total := r.BaseIncome
	for _, e := range r.ExtraIncomes {
		total += e.Amount
	}
	return total
}

// TotalFixedCosts sums the recurring monthly obligations.
func TotalFixedCosts(r *models.Record) int64 {
	var total int64
	for _, c := range r.FixedCosts {
		total += c.Amount
	}
	return total
}

// TotalDailySpends sums every recorded spend.
func TotalDailySpends(r *models.Record) int64 {
	var total int64
	for _, s := range r.DailySpends {
		total += s.Amount
	}
	return total
}

// MonthlySpendable is what remains of income after fixed costs and the
// savings goal. May be negative; never clamped.
func MonthlySpendable(r *models.Record) int64 {
	return TotalIncome(r) - TotalFixedCosts(r) - r.SavingsGoal
}

// RemainingThisMonth is the monthly spendable minus everything already spent.
func RemainingThisMonth(r *models.Record) int64 {
	return MonthlySpendable(r) - TotalDailySpends(r)
}

// DaysRemainingInMonth counts days from today through the end of the month,
// inclusive of today. Always at least 1 on a real calendar.
func DaysRemainingInMonth(today time.Time) int {
	return daysInMonth(today) - today.Day() + 1
}

func daysInMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// DailyAverage spreads the month's remainder over the days left in it.
func DailyAverage(r *models.Record, today time.Time) int64 {
	return averagePerDay(RemainingThisMonth(r), DaysRemainingInMonth(today))
}

func averagePerDay(remaining int64, days int) int64 {
	if days <= 0 {
		return 0
	}
	return remaining / int64(days)
}

// weekdayIndex is 0 for Monday through 6 for Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

type formatter func(r *models.Record, today time.Time) string

// periodFormatters maps each period with bespoke presentation to its
// formatter. Periods without an entry get the generic per-day fallback,
// which today covers 10day, 14day, monthly and anything unrecognized.
var periodFormatters = map[models.Period]formatter{
	models.PeriodDaily: formatDaily,
	models.Period7Day:  formatWeek,
}

func formatDaily(r *models.Record, today time.Time) string {
	return fmt.Sprintf("Today's budget: ¥%d", DailyAverage(r, today))
}

func formatWeek(r *models.Record, today time.Time) string {
	avg := DailyAverage(r, today)
	daysLeft := 7 - weekdayIndex(today)
	return fmt.Sprintf("Rest of this week (%d days): ¥%d", daysLeft, avg*int64(daysLeft))
}

func formatFallback(r *models.Record, today time.Time) string {
	return fmt.Sprintf("Per day: ¥%d", DailyAverage(r, today))
}

// Projection renders the remaining-budget summary for the record's
// calculation period, always prefixed with the month's total remainder.
func Projection(r *models.Record, today time.Time) string {
	f, ok := periodFormatters[r.Settings.CalculationPeriod]
	if !ok {
		f = formatFallback
	}
	return fmt.Sprintf("Remaining this month: ¥%d\n%s", RemainingThisMonth(r), f(r, today))
}
