package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/micanis/bot-pocket-pace/models"
)

// Records is the typed gateway over the KV namespace: one serialized Record
// per user id, replaced whole on every write. The store offers no conditional
// writes, so concurrent updates for the same user are last-write-wins.
type Records struct {
	client *Client
	log    *zap.Logger
}

func NewRecords(client *Client, log *zap.Logger) *Records {
	return &Records{client: client, log: log}
}

// Fetch loads the record for userID. An absent key is not an error: a fresh
// default record is returned, so a new user and a store misreporting absence
// are indistinguishable here. Transport and decode failures are errors.
func (s *Records) Fetch(ctx context.Context, userID string) (*models.Record, error) {
	body, err := s.client.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultRecord(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching record for %s: %w", userID, err)
	}

	var record models.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("decoding record for %s: %w", userID, err)
	}
	record.Normalize()
	return &record, nil
}

// Store serializes and writes the whole record, overwriting unconditionally.
func (s *Records) Store(ctx context.Context, userID string, record *models.Record) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record for %s: %w", userID, err)
	}
	if err := s.client.Put(ctx, userID, body); err != nil {
		return fmt.Errorf("storing record for %s: %w", userID, err)
	}
	return nil
}

// ListIDs enumerates all user ids with a stored record. Best effort: a listing
// failure is logged and yields an empty slice, which skips one notification
// cycle rather than surfacing an error to anyone.
func (s *Records) ListIDs(ctx context.Context) []string {
	keys, err := s.client.ListKeys(ctx)
	if err != nil {
		s.log.Warn("listing record ids failed, skipping cycle", zap.Error(err))
		return nil
	}
	return keys
}
