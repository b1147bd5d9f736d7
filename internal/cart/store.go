package cart

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"smoothie-be/internal/redisx"

	"github.com/redis/go-redis/v9"
)

// EntryStore persists pending reservation entries per session. The interface
// exists so the ledger can be tested without redis.
type EntryStore interface {
	Append(ctx context.Context, sessionID string, e ReservationEntry) error
	List(ctx context.Context, sessionID string) ([]ReservationEntry, error)
	Clear(ctx context.Context, sessionID string) error
	Touch(ctx context.Context, sessionID string, at time.Time) error
	// IdleSessions returns sessions whose last reservation activity is older
	// than the cutoff.
	IdleSessions(ctx context.Context, cutoff time.Time) ([]string, error)
}

// LineStore persists cart lines per session.
type LineStore interface {
	GetLines(ctx context.Context, sessionID string) ([]CartItem, error)
	SetLines(ctx context.Context, sessionID string, lines []CartItem) error
	ClearLines(ctx context.Context, sessionID string) error
}

// cart lines survive reloads but not forever
const cartTTL = 24 * time.Hour

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Append(ctx context.Context, sessionID string, e ReservationEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.RPush(ctx, redisx.RevertKey(sessionID), b).Err()
}

func (s *Store) List(ctx context.Context, sessionID string) ([]ReservationEntry, error) {
	raw, err := s.rdb.LRange(ctx, redisx.RevertKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]ReservationEntry, 0, len(raw))
	for _, item := range raw {
		var e ReservationEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, err
		}
		if e.Qty <= 0 {
			e.Qty = 1
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx,
		redisx.RevertKey(sessionID),
		redisx.RevertTouchKey(sessionID),
	).Err()
}

func (s *Store) Touch(ctx context.Context, sessionID string, at time.Time) error {
	return s.rdb.Set(ctx, redisx.RevertTouchKey(sessionID), at.Unix(), 0).Err()
}

func (s *Store) IdleSessions(ctx context.Context, cutoff time.Time) ([]string, error) {
	prefix := redisx.RevertTouchKey("")
	var sessions []string

	iter := s.rdb.Scan(ctx, 0, redisx.RevertTouchKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := s.rdb.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		ts, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			continue
		}
		if time.Unix(ts, 0).Before(cutoff) {
			sessions = append(sessions, strings.TrimPrefix(key, prefix))
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) GetLines(ctx context.Context, sessionID string) ([]CartItem, error) {
	raw, err := s.rdb.Get(ctx, redisx.CartKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []CartItem
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].Quantity <= 0 {
			lines[i].Quantity = 1
		}
	}
	return lines, nil
}

func (s *Store) SetLines(ctx context.Context, sessionID string, lines []CartItem) error {
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisx.CartKey(sessionID), b, cartTTL).Err()
}

func (s *Store) ClearLines(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, redisx.CartKey(sessionID)).Err()
}
