// Package redis keeps each member's claim history in a sorted set scored by
// treatment date, so the duplicate and velocity checks read one range.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"adjudicator/internal/adjudication"
)

const (
	historyKeyPrefix = "claims:history:"

	defaultRetention = 400 * 24 * time.Hour
)

type HistoryStore struct {
	client    *redis.Client
	retention time.Duration
}

type Option func(*HistoryStore)

// WithRetention drops entries treated longer ago than d on each write.
func WithRetention(d time.Duration) Option {
	return func(s *HistoryStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

func NewHistoryStore(client *redis.Client, opts ...Option) *HistoryStore {
	s := &HistoryStore{client: client, retention: defaultRetention}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func historyKey(memberID string) string {
	return historyKeyPrefix + memberID
}

// ListSince returns claims treated on or after since, oldest first.
func (s *HistoryStore) ListSince(ctx context.Context, memberID string, since time.Time) ([]adjudication.PriorClaim, error) {
	members, err := s.client.ZRangeByScore(ctx, historyKey(memberID), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.Unix(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read claim history: %w", err)
	}

	out := make([]adjudication.PriorClaim, 0, len(members))
	for _, raw := range members {
		var pc adjudication.PriorClaim
		if err := json.Unmarshal([]byte(raw), &pc); err != nil {
			return nil, fmt.Errorf("decode claim history entry: %w", err)
		}
		out = append(out, pc)
	}
	return out, nil
}

// Record adds the claim, trims entries past retention and refreshes the key
// expiry in one round trip.
func (s *HistoryStore) Record(ctx context.Context, memberID string, claim adjudication.PriorClaim) error {
	raw, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("encode claim history entry: %w", err)
	}
	key := historyKey(memberID)
	cutoff := claim.TreatmentDate.Add(-s.retention).Unix()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(claim.TreatmentDate.Unix()), Member: string(raw)})
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
		pipe.Expire(ctx, key, s.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record claim history: %w", err)
	}
	return nil
}
