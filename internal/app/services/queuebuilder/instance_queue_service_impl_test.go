package queuebuilder

import (
	"context"
	"fmt"
	"sort"
	"studyflow-service/internal/app/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeRedisRepo keeps sorted sets in memory with the same ordering semantics
// as the redis ZADD/ZRANGE commands the real repository uses.
type fakeRedisRepo struct {
	sets map[string]map[string]float64
}

func newFakeRedisRepo() *fakeRedisRepo {
	return &fakeRedisRepo{sets: map[string]map[string]float64{}}
}

func (r *fakeRedisRepo) Delete(ctx context.Context, key string) error {
	delete(r.sets, key)
	return nil
}

func (r *fakeRedisRepo) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return nil
}

func (r *fakeRedisRepo) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (r *fakeRedisRepo) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	return true, nil
}

func (r *fakeRedisRepo) AddToSortedSet(ctx context.Context, key string, score float64, member interface{}) error {
	if r.sets[key] == nil {
		r.sets[key] = map[string]float64{}
	}
	r.sets[key][fmt.Sprint(member)] = score
	return nil
}

func (r *fakeRedisRepo) RemoveFromSortedSet(ctx context.Context, key string, member interface{}) error {
	delete(r.sets[key], fmt.Sprint(member))
	return nil
}

func (r *fakeRedisRepo) GetSortedSetMembers(ctx context.Context, key string) ([]string, error) {
	type entry struct {
		member string
		score  float64
	}
	var entries []entry
	for member, score := range r.sets[key] {
		entries = append(entries, entry{member, score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score < entries[j].score
		}
		return entries[i].member < entries[j].member
	})
	members := make([]string, 0, len(entries))
	for _, e := range entries {
		members = append(members, e.member)
	}
	return members, nil
}

func queueInstance(id, sortOrder int, issued time.Time) *models.QuestionnaireInstance {
	return &models.QuestionnaireInstance{
		ID:          id,
		Pseudonym:   "stub-1",
		SortOrder:   sortOrder,
		DateOfIssue: issued,
	}
}

func TestQueueOrdering(t *testing.T) {
	repo := newFakeRedisRepo()
	service := &instanceQueueService{redisRepo: repo, Log: zap.NewNop()}
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose.
	assert.NoError(t, service.Add(ctx, queueInstance(30, 2, base)))
	assert.NoError(t, service.Add(ctx, queueInstance(10, 1, base.Add(time.Hour))))
	assert.NoError(t, service.Add(ctx, queueInstance(20, 1, base)))

	members, err := service.List(ctx, "stub-1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"20", "10", "30"}, members,
		"sortOrder ranks first, issue date breaks ties")
}

func TestQueueAddIsIdempotent(t *testing.T) {
	repo := newFakeRedisRepo()
	service := &instanceQueueService{redisRepo: repo, Log: zap.NewNop()}
	ctx := context.Background()
	instance := queueInstance(10, 1, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	assert.NoError(t, service.Add(ctx, instance))
	assert.NoError(t, service.Add(ctx, instance))

	members, err := service.List(ctx, "stub-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"10"}, members)
}

func TestQueueRemoveAndClear(t *testing.T) {
	repo := newFakeRedisRepo()
	service := &instanceQueueService{redisRepo: repo, Log: zap.NewNop()}
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	first := queueInstance(10, 1, base)
	second := queueInstance(20, 2, base)
	assert.NoError(t, service.Add(ctx, first))
	assert.NoError(t, service.Add(ctx, second))

	assert.NoError(t, service.Remove(ctx, first))
	members, err := service.List(ctx, "stub-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"20"}, members)

	assert.NoError(t, service.Clear(ctx, "stub-1"))
	members, err = service.List(ctx, "stub-1")
	assert.NoError(t, err)
	assert.Empty(t, members)
}
