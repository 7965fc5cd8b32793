package repository

import (
	"casegrader/internal/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ProgressCache keeps the latest committed progress record per (user, case) in redis.
// A nil client turns every call into a miss.
type ProgressCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewProgressCache(rdb *redis.Client, ttl time.Duration) *ProgressCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProgressCache{Redis: rdb, TTL: ttl}
}

func progressKey(userID, caseID uint) string {
	return fmt.Sprintf("casegrader:progress:%d:%d", userID, caseID)
}

const (
	fieldAttempts = "n"
	fieldRecord   = "rec"
)

// setIfNewer only replaces the cached record when the incoming one has seen at least as
// many attempts. Writers that lost a race (a delayed post-commit write or a read-through
// of an older row) leave the newer entry in place.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if cur and tonumber(cur) > tonumber(ARGV[2]) then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// Get reports ok=false on a miss.
func (c *ProgressCache) Get(ctx context.Context, userID, caseID uint) (*model.ProgressRecord, bool, error) {
	if c == nil || c.Redis == nil {
		return nil, false, nil
	}
	raw, err := c.Redis.HGet(ctx, progressKey(userID, caseID), fieldRecord).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rec model.ProgressRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// Set stores rec unless the cache already holds a record with more attempts. It reports
// whether the entry was written.
func (c *ProgressCache) Set(ctx context.Context, rec *model.ProgressRecord) (bool, error) {
	if c == nil || c.Redis == nil {
		return false, nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	attempts := rec.CorrectCount + rec.WrongCount
	res, err := setIfNewer.Run(ctx, c.Redis,
		[]string{progressKey(rec.UserID, rec.CaseID)},
		fieldAttempts, attempts, fieldRecord, string(raw), c.TTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (c *ProgressCache) Invalidate(ctx context.Context, userID, caseID uint) error {
	if c == nil || c.Redis == nil {
		return nil
	}
	return c.Redis.Del(ctx, progressKey(userID, caseID)).Err()
}
