package models

import "time"

// Period is the user-selected granularity for presenting the monthly remainder.
type Period string

const (
	PeriodDaily   Period = "daily"
	Period7Day    Period = "7day"
	Period10Day   Period = "10day"
	Period14Day   Period = "14day"
	PeriodMonthly Period = "monthly"

	DefaultPeriod = Period7Day
)

// Known reports whether p is one of the five accepted settings values.
func (p Period) Known() bool {
	switch p {
	case PeriodDaily, Period7Day, Period10Day, Period14Day, PeriodMonthly:
		return true
	}
	return false
}

// ParsePeriod maps user input to a Period, falling back to the default for
// anything unrecognized. Settings changes never fail on a bad value.
func ParsePeriod(s string) Period {
	if p := Period(s); p.Known() {
		return p
	}
	return DefaultPeriod
}

// ExtraIncome is a one-off income entry on top of the recurring base income.
type ExtraIncome struct {
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// FixedCost is a recurring monthly obligation.
type FixedCost struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Spend is a single daily expenditure entry.
type Spend struct {
	Amount     int64     `json:"amount"`
	Item       string    `json:"item"`
	RecordedAt time.Time `json:"recorded_at"`
}

type Settings struct {
	CalculationPeriod Period `json:"calculation_period"`
	// NotificationChannel is the channel the daily summary is pushed to.
	// Empty means the user has not opted in.
	NotificationChannel string `json:"notification_channel,omitempty"`
}

// Record is the complete per-user financial state, stored whole under the
// user's id. All amounts are whole currency units.
type Record struct {
	BaseIncome   int64         `json:"base_income"`
	ExtraIncomes []ExtraIncome `json:"extra_incomes"`
	FixedCosts   []FixedCost   `json:"fixed_costs"`
	DailySpends  []Spend       `json:"daily_spends"`
	SavingsGoal  int64         `json:"savings_goal"`
	Settings     Settings      `json:"settings"`
}

// DefaultRecord returns the state a user has before anything was stored.
func DefaultRecord() *Record {
	return &Record{
		Settings: Settings{CalculationPeriod: DefaultPeriod},
	}
}

// Normalize fills defaults for fields absent in older stored records. An
// unknown calculation period is kept as stored; only a missing one gets the
// default, rendering decides how to present unknown values.
func (r *Record) Normalize() {
	if r.Settings.CalculationPeriod == "" {
		r.Settings.CalculationPeriod = DefaultPeriod
	}
}
