package discounts

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyabmansour/pfe-licence-api/internal/logger"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (s *fakeStore) SetJSON(_ context.Context, key string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func (s *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var v int64
	if raw, ok := s.data[key]; ok {
		v, _ = strconv.ParseInt(string(raw), 10, 64)
	}
	v++
	s.data[key] = []byte(strconv.FormatInt(v, 10))
	return v, nil
}

type countingRepo struct {
	*fakeRepo
	mu         sync.Mutex
	itemReads  int
	orderReads int
}

func (r *countingRepo) RulesForMenuItem(ctx context.Context, menuItemID int64, now time.Time) ([]models.ItemDiscount, error) {
	r.mu.Lock()
	r.itemReads++
	r.mu.Unlock()
	return r.fakeRepo.RulesForMenuItem(ctx, menuItemID, now)
}

func (r *countingRepo) ActiveOrderDiscounts(ctx context.Context, now time.Time) ([]models.Discount, error) {
	r.mu.Lock()
	r.orderReads++
	r.mu.Unlock()
	return r.fakeRepo.ActiveOrderDiscounts(ctx, now)
}

func newCachedReader() (*CachedReader, *countingRepo, *fakeStore) {
	repo := &countingRepo{fakeRepo: newFakeRepo()}
	store := newFakeStore()
	return NewCachedReader(repo, store, logger.New("discounts-cache-test")), repo, store
}

func seedRule(t *testing.T, repo *countingRepo, menuItemID int64) {
	t.Helper()
	d := &models.Discount{Name: "Seeded", Type: models.DiscountPercentage, Value: 10, Active: true}
	err := repo.CreateDiscount(context.Background(), d, []models.DiscountRule{{MenuItemID: menuItemID}})
	require.NoError(t, err)
}

func TestCachedReaderReadThrough(t *testing.T) {
	reader, repo, _ := newCachedReader()
	seedRule(t, repo, 1)
	ctx := context.Background()
	now := time.Now()

	first, err := reader.RulesForMenuItem(ctx, 1, now)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.itemReads)

	second, err := reader.RulesForMenuItem(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.itemReads, "second read must be served from cache")
}

func TestInvalidationReachesEveryCachedItem(t *testing.T) {
	reader, repo, _ := newCachedReader()
	seedRule(t, repo, 1)
	seedRule(t, repo, 2)
	ctx := context.Background()
	now := time.Now()

	// Two concurrent first-loads populate independent keys.
	var wg sync.WaitGroup
	for _, id := range []int64{1, 2} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := reader.RulesForMenuItem(ctx, id, now)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()
	_, err := reader.ActiveOrderDiscounts(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 2, repo.itemReads)

	require.NoError(t, reader.InvalidateDiscounts(ctx))

	// Every read after the bump must go back to the repository.
	_, err = reader.RulesForMenuItem(ctx, 1, now)
	require.NoError(t, err)
	_, err = reader.RulesForMenuItem(ctx, 2, now)
	require.NoError(t, err)
	_, err = reader.ActiveOrderDiscounts(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, 4, repo.itemReads, "both items must be reloaded after invalidation")
	assert.Equal(t, 2, repo.orderReads)
}

func TestCachedReaderDegradesOnStoreFailure(t *testing.T) {
	reader, repo, store := newCachedReader()
	seedRule(t, repo, 1)
	store.err = errors.New("connection refused")
	ctx := context.Background()
	now := time.Now()

	rules, err := reader.RulesForMenuItem(ctx, 1, now)
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	_, err = reader.ActiveOrderDiscounts(ctx, now)
	require.NoError(t, err)
}
