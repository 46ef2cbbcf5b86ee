package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/micanis/bot-pocket-pace/budget"
	"github.com/micanis/bot-pocket-pace/kvstore"
	"github.com/micanis/bot-pocket-pace/models"
)

const (
	fetchFailedMsg = "Couldn't load your budget record. Please try again."
	saveFailedMsg  = "Couldn't save your budget record. Please try again."
)

// Handler implements the command semantics independent of the chat platform:
// each method is one fetch, one mutation, one store, one fresh projection.
// The reply string is what the invoking user sees.
type Handler struct {
	records *kvstore.Records
	log     *zap.Logger
	now     func() time.Time
}

func New(records *kvstore.Records, log *zap.Logger) *Handler {
	return &Handler{records: records, log: log, now: time.Now}
}

// update runs the shared round trip. mutate applies exactly one change to the
// record and returns the one-line summary of what it did. There is no
// concurrency control on the store, so overlapping updates for the same user
// are last-write-wins.
func (h *Handler) update(ctx context.Context, userID string, mutate func(*models.Record) string) string {
	invocationID := uuid.NewString()

	record, err := h.records.Fetch(ctx, userID)
	if err != nil {
		h.log.Error("record fetch failed",
			zap.String("user_id", userID),
			zap.String("invocation_id", invocationID),
			zap.Error(err))
		return fetchFailedMsg
	}

	summary := mutate(record)

	if err := h.records.Store(ctx, userID, record); err != nil {
		h.log.Error("record store failed",
			zap.String("user_id", userID),
			zap.String("invocation_id", invocationID),
			zap.Error(err))
		return saveFailedMsg
	}

	return summary + "\n" + budget.Projection(record, h.now())
}

// RecordSpend appends one daily spend entry.
func (h *Handler) RecordSpend(ctx context.Context, userID string, amount int64, item string) string {
	return h.update(ctx, userID, func(r *models.Record) string {
		r.DailySpends = append(r.DailySpends, models.Spend{
			Amount:     amount,
			Item:       item,
			RecordedAt: h.now(),
		})
		return fmt.Sprintf("Recorded spend: ¥%d (%s)", amount, item)
	})
}

// SetBaseIncome replaces the recurring monthly income.
func (h *Handler) SetBaseIncome(ctx context.Context, userID string, amount int64) string {
	return h.update(ctx, userID, func(r *models.Record) string {
		r.BaseIncome = amount
		return fmt.Sprintf("Base income set to ¥%d", amount)
	})
}

// RecordExtraIncome appends a one-off income entry.
func (h *Handler) RecordExtraIncome(ctx context.Context, userID string, amount int64, description string) string {
	return h.update(ctx, userID, func(r *models.Record) string {
		r.ExtraIncomes = append(r.ExtraIncomes, models.ExtraIncome{
			Amount:      amount,
			Description: description,
			RecordedAt:  h.now(),
		})
		return fmt.Sprintf("Recorded extra income: ¥%d (%s)", amount, description)
	})
}

// RecordFixedCost appends a recurring monthly cost.
func (h *Handler) RecordFixedCost(ctx context.Context, userID string, amount int64, description string) string {
	return h.update(ctx, userID, func(r *models.Record) string {
		r.FixedCosts = append(r.FixedCosts, models.FixedCost{
			Amount:      amount,
			Description: description,
		})
		return fmt.Sprintf("Recorded fixed cost: ¥%d (%s)", amount, description)
	})
}

// SetSavingsGoal replaces the amount reserved before budgeting.
func (h *Handler) SetSavingsGoal(ctx context.Context, userID string, amount int64) string {
	return h.update(ctx, userID, func(r *models.Record) string {
		r.SavingsGoal = amount
		return fmt.Sprintf("Savings goal set to ¥%d", amount)
	})
}

// SetPeriod changes the calculation period. Unrecognized input falls back to
// the default rather than failing.
func (h *Handler) SetPeriod(ctx context.Context, userID string, choice string) string {
	return h.update(ctx, userID, func(r *models.Record) string {
		period := models.ParsePeriod(choice)
		r.Settings.CalculationPeriod = period
		return fmt.Sprintf("Calculation period set to %s", period)
	})
}

// SetNotifyChannel opts the user in or out of the daily summary. Opting in
// binds the channel the command was invoked from.
func (h *Handler) SetNotifyChannel(ctx context.Context, userID, channelID string, enable bool) string {
	return h.update(ctx, userID, func(r *models.Record) string {
		if enable {
			r.Settings.NotificationChannel = channelID
			return "Daily summary enabled for this channel."
		}
		r.Settings.NotificationChannel = ""
		return "Daily summary disabled."
	})
}

// Balance reports the current projection without mutating anything.
func (h *Handler) Balance(ctx context.Context, userID string) string {
	record, err := h.records.Fetch(ctx, userID)
	if err != nil {
		h.log.Error("record fetch failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return fetchFailedMsg
	}
	return budget.Projection(record, h.now())
}
