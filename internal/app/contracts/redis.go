package contracts

import (
	"context"
	"time"
)

type RedisRepository interface {
	Delete(ctx context.Context, key string) error
	Set(ctx context.Context, key string, value interface{}, exp time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error)
	AddToSortedSet(ctx context.Context, key string, score float64, member interface{}) error
	RemoveFromSortedSet(ctx context.Context, key string, member interface{}) error
	GetSortedSetMembers(ctx context.Context, key string) ([]string, error)
}
