package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/portfolio-valuation/internal/models"
)

// RedisMirror keeps a copy of the latest snapshot in Redis as a list of JSON
// records under key, with the write time under key + ":updated_at".
type RedisMirror struct {
	client *redis.Client
	key    string
}

// NewRedisMirror creates a RedisMirror.
func NewRedisMirror(client *redis.Client, key string) *RedisMirror {
	return &RedisMirror{client: client, key: key}
}

// UpdatedAtKey is where the snapshot write time is stored.
func (m *RedisMirror) UpdatedAtKey() string {
	return m.key + ":updated_at"
}

// ReplaceSnapshot swaps the list contents inside one MULTI/EXEC so readers
// never see a half-written list.
func (m *RedisMirror) ReplaceSnapshot(ctx context.Context, records []models.ValuationRecord) error {
	values := make([]interface{}, 0, len(records))
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s: %w", r.Ticker, err)
		}
		values = append(values, data)
	}

	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, m.key)
		if len(values) > 0 {
			pipe.RPush(ctx, m.key, values...)
		}
		pipe.Set(ctx, m.UpdatedAtKey(), time.Now().UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mirror snapshot to redis: %w", err)
	}
	return nil
}

// Snapshot reads the mirrored records back.
func (m *RedisMirror) Snapshot(ctx context.Context) ([]models.ValuationRecord, error) {
	values, err := m.client.LRange(ctx, m.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from redis: %w", err)
	}

	records := make([]models.ValuationRecord, 0, len(values))
	for _, v := range values {
		var r models.ValuationRecord
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Close closes the underlying client.
func (m *RedisMirror) Close() error {
	return m.client.Close()
}
