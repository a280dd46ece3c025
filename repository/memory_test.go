package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type memDoc struct {
	ID      string    `bson:"_id,omitempty"`
	Name    string    `bson:"name"`
	Status  string    `bson:"status"`
	Score   int       `bson:"score"`
	Due     time.Time `bson:"due"`
	Created time.Time `bson:"created"`
}

func seedMemDocs(t *testing.T, store *MemoryStore) []string {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	docs := []memDoc{
		{Name: "alpha", Status: "lead", Score: 10, Due: base, Created: base},
		{Name: "bravo", Status: "customer", Score: 50, Due: base.AddDate(0, 0, 5), Created: base.Add(time.Hour)},
		{Name: "charlie", Status: "lead", Score: 90, Due: base.AddDate(0, 0, 10), Created: base.Add(2 * time.Hour)},
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		id, err := store.Create(ctx, "things", d)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestMemoryStoreCrud(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ids := seedMemDocs(t, store)

	var got memDoc
	require.NoError(t, store.GetOne(ctx, "things", ids[0], &got))
	assert.Equal(t, ids[0], got.ID)
	assert.Equal(t, "alpha", got.Name)

	require.NoError(t, store.Update(ctx, "things", ids[0], bson.M{"score": 33}))
	require.NoError(t, store.GetOne(ctx, "things", ids[0], &got))
	assert.Equal(t, 33, got.Score)
	// 未更新的字段保持原值
	assert.Equal(t, "alpha", got.Name)

	require.NoError(t, store.Delete(ctx, "things", ids[0]))
	err := store.GetOne(ctx, "things", ids[0], &got)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(store.Update(ctx, "things", ids[0], bson.M{"score": 1}), ErrNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, "things", ids[0]), ErrNotFound))
}

func TestMemoryStoreFilterEquality(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedMemDocs(t, store)

	var got []memDoc
	require.NoError(t, store.GetFullList(ctx, "things", bson.M{"status": "lead"}, "", &got))
	assert.Len(t, got, 2)

	got = nil
	require.NoError(t, store.GetFullList(ctx, "things", bson.M{"status": "lead", "score": 90}, "", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "charlie", got[0].Name)
}

func TestMemoryStoreFilterOperators(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedMemDocs(t, store)

	var got []memDoc
	require.NoError(t, store.GetFullList(ctx, "things", bson.M{"score": bson.M{"$gte": 50}}, "", &got))
	assert.Len(t, got, 2)

	// 日期比较：过滤条件是time.Time，文档里是bson日期
	cutoff := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	got = nil
	require.NoError(t, store.GetFullList(ctx, "things", bson.M{"due": bson.M{"$lte": cutoff}}, "", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Name)

	got = nil
	require.NoError(t, store.GetFullList(ctx, "things", bson.M{"name": bson.M{"$regex": "AL", "$options": "i"}}, "", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Name)

	got = nil
	require.NoError(t, store.GetFullList(ctx, "things", bson.M{"status": bson.M{"$in": []string{"customer", "inactive"}}}, "", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "bravo", got[0].Name)

	got = nil
	require.NoError(t, store.GetFullList(ctx, "things", bson.M{"due": bson.M{"$exists": true}}, "", &got))
	assert.Len(t, got, 3)
}

func TestMemoryStoreFilterOr(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedMemDocs(t, store)

	filter := bson.M{"$or": []bson.M{
		{"name": "alpha"},
		{"score": bson.M{"$gte": 90}},
	}}
	var got []memDoc
	require.NoError(t, store.GetFullList(ctx, "things", filter, "name", &got))
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Name)
	assert.Equal(t, "charlie", got[1].Name)
}

func TestMemoryStoreSort(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedMemDocs(t, store)

	var got []memDoc
	require.NoError(t, store.GetFullList(ctx, "things", bson.M{}, "score", &got))
	require.Len(t, got, 3)
	assert.Equal(t, 10, got[0].Score)
	assert.Equal(t, 90, got[2].Score)

	got = nil
	require.NoError(t, store.GetFullList(ctx, "things", bson.M{}, "-created", &got))
	require.Len(t, got, 3)
	assert.Equal(t, "charlie", got[0].Name)
	assert.Equal(t, "alpha", got[2].Name)
}

func TestMemoryStorePagination(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedMemDocs(t, store)

	var page []memDoc
	total, err := store.GetList(ctx, "things", bson.M{}, "name", 1, 2, &page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "alpha", page[0].Name)

	page = nil
	total, err = store.GetList(ctx, "things", bson.M{}, "name", 2, 2, &page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "charlie", page[0].Name)

	// 越界页返回空列表，总数不变
	page = nil
	total, err = store.GetList(ctx, "things", bson.M{}, "name", 9, 2, &page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, page)
}

func TestMemoryStoreCount(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedMemDocs(t, store)

	n, err := store.Count(ctx, "things", bson.M{"status": "lead"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.Count(ctx, "empty_collection", bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMemoryStoreConcurrentReadWrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "things", memDoc{Name: "shared", Status: "lead"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if n%2 == 0 {
					_ = store.Update(ctx, "things", id, bson.M{"score": j})
					continue
				}
				var got []memDoc
				_ = store.GetFullList(ctx, "things", bson.M{"status": "lead"}, "", &got)
				var one memDoc
				_ = store.GetOne(ctx, "things", id, &one)
			}
		}(i)
	}
	wg.Wait()

	var got memDoc
	require.NoError(t, store.GetOne(ctx, "things", id, &got))
	assert.Equal(t, "shared", got.Name)
}

func TestMemoryStoreIsolatedCollections(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "a", memDoc{Name: "only-in-a"})
	require.NoError(t, err)

	var got memDoc
	assert.True(t, errors.Is(store.GetOne(ctx, "b", id, &got), ErrNotFound))
	require.NoError(t, store.GetOne(ctx, "a", id, &got))
	assert.Equal(t, "only-in-a", got.Name)
}
