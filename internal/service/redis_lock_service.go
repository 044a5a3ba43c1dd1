package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrLockNotHeld is returned by Refresh when the key expired or belongs to another owner
var ErrLockNotHeld = errors.New("lock not held")

const (
	// Redis key prefix for the per-slot booking guard
	RedisSlotLockKeyPrefix = "lock:slot:"
)

// unlockScript deletes the key only when it still carries the caller's token,
// so an expired holder cannot release a lock someone else acquired since.
var unlockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// refreshScript extends the TTL under the same ownership rule as unlockScript.
var refreshScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('PEXPIRE', KEYS[1], ARGV[2])
	end
	return 0
`)

// LockerService hands out short-lived, token-owned Redis locks.
type LockerService interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, token string) error
	Refresh(ctx context.Context, key, token string, ttl time.Duration) error
}

type redisLockService struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewRedisLockService(redisClient *redis.Client, log *logrus.Logger) LockerService {
	return &redisLockService{
		redisClient: redisClient,
		log:         log,
	}
}

// SlotLockKey returns the guard key for one slot.
func SlotLockKey(slotID string) string {
	return RedisSlotLockKeyPrefix + slotID
}

// TryLock sets key with a fresh token if nobody holds it.
// acquired=false with a nil error means another owner holds the key.
func (s *redisLockService) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	token := uuid.NewString()

	ok, err := s.redisClient.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return false, "", nil
	}

	s.log.Debugf("Acquired lock %s (ttl=%v)", key, ttl)
	return true, token, nil
}

func (s *redisLockService) Unlock(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, s.redisClient, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

func (s *redisLockService) Refresh(ctx context.Context, key, token string, ttl time.Duration) error {
	extended, err := refreshScript.Run(ctx, s.redisClient, []string{key}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("refresh lock %s: %w", key, err)
	}
	if extended == 0 {
		return ErrLockNotHeld
	}
	return nil
}
