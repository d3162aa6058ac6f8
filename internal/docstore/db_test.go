// ABOUTME: Tests for document CRUD, merge semantics, ordering, and path rules.
// ABOUTME: Runs against in-memory badger; backend-specific tests live alongside.

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	db, err := OpenBadger("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// stepClock returns a clock that advances one second per reading.
func stepClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Create(ctx, "users/u1/childProfiles", Fields{
		"name":      "Mia",
		"age":       "7",
		"createdAt": ServerTimestamp,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := db.Get(ctx, "users/u1/childProfiles/"+id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)

	var got struct {
		Name      string    `json:"name"`
		Age       string    `json:"age"`
		CreatedAt time.Time `json:"createdAt"`
	}
	require.NoError(t, doc.Decode(&got))
	assert.Equal(t, "Mia", got.Name)
	assert.Equal(t, "7", got.Age)
	assert.True(t, got.CreatedAt.Equal(doc.CreateTime), "server timestamp should equal create time")
}

func TestGetMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Get(context.Background(), "users/u1/childProfiles/nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMergesFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Create(ctx, "c", Fields{"text": "Read", "done": false, "tag": "x"})
	require.NoError(t, err)

	require.NoError(t, db.Update(ctx, "c/"+id, Fields{"done": true, "tag": DeleteField}))

	doc, err := db.Get(ctx, "c/"+id)
	require.NoError(t, err)
	assert.JSONEq(t, `"Read"`, string(doc.Fields["text"]))
	assert.JSONEq(t, `true`, string(doc.Fields["done"]))
	assert.False(t, doc.Has("tag"))
	assert.True(t, doc.UpdateTime.After(doc.CreateTime))
}

func TestUpdateMissingFails(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), "c/missing", Fields{"done": true})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetKeepsCreateTime(t *testing.T) {
	db := newTestDB(t, WithClock(stepClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))))
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "system/auth", Fields{"a": 1, "b": 2}))
	first, err := db.Get(ctx, "system/auth")
	require.NoError(t, err)

	require.NoError(t, db.Set(ctx, "system/auth", Fields{"a": 3}))
	second, err := db.Get(ctx, "system/auth")
	require.NoError(t, err)

	assert.True(t, second.CreateTime.Equal(first.CreateTime))
	assert.True(t, second.UpdateTime.After(first.UpdateTime))
	assert.False(t, second.Has("b"), "set replaces the whole body")
}

func TestDeleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Create(ctx, "c", Fields{"x": 1})
	require.NoError(t, err)

	require.NoError(t, db.Delete(ctx, "c/"+id))
	require.NoError(t, db.Delete(ctx, "c/"+id))

	_, err = db.Get(ctx, "c/"+id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersByCreatedAtDesc(t *testing.T) {
	db := newTestDB(t, WithClock(stepClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))))
	ctx := context.Background()
	coll := "users/u1/childProfiles/c1/goals"

	var ids []string
	for _, text := range []string{"t1", "t2", "t3"} {
		id, err := db.Create(ctx, coll, Fields{"text": text, "createdAt": ServerTimestamp})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	docs, err := db.List(ctx, coll, OrderBy("createdAt", Desc))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, docIDs(docs))

	docs, err = db.List(ctx, coll, Query{})
	require.NoError(t, err)
	assert.Equal(t, ids, docIDs(docs), "zero query lists in creation order")

	docs, err = db.List(ctx, coll, Query{OrderBy: "createdAt", Direction: Desc, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[1]}, docIDs(docs))
}

func TestListMissingFieldSortsLowest(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	withField, err := db.Create(ctx, "c", Fields{"updatedAt": ServerTimestamp})
	require.NoError(t, err)
	without, err := db.Create(ctx, "c", Fields{"name": "x"})
	require.NoError(t, err)

	docs, err := db.List(ctx, "c", OrderBy("updatedAt", Asc))
	require.NoError(t, err)
	assert.Equal(t, []string{without, withField}, docIDs(docs))
}

func TestListReturnsDirectChildrenOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	child, err := db.Create(ctx, "users/u1/childProfiles", Fields{"name": "Mia"})
	require.NoError(t, err)
	_, err = db.Create(ctx, "users/u1/childProfiles/"+child+"/goals", Fields{"text": "Read"})
	require.NoError(t, err)
	_, err = db.Create(ctx, "users/u2/childProfiles", Fields{"name": "Other"})
	require.NoError(t, err)

	docs, err := db.List(ctx, "users/u1/childProfiles", Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{child}, docIDs(docs))
}

func TestPathValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Create(ctx, "users/u1", Fields{})
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = db.Get(ctx, "users")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = db.List(ctx, "users//x", Query{})
	assert.ErrorIs(t, err, ErrInvalidPath)

	err = db.Update(ctx, "c/id", Fields{"a/b": 1})
	assert.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	db := newTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Create(ctx, "c", Fields{"x": 1})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClosedStoreRejectsCalls(t *testing.T) {
	db, err := OpenBadger("")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.Create(context.Background(), "c", Fields{})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = db.Subscribe("c", Query{}, func(*Snapshot) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClockIsStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newClock(func() time.Time { return fixed })

	a, b := c.Next(), c.Next()
	assert.True(t, b.After(a))
}

func TestCompareRaw(t *testing.T) {
	raw := func(v any) json.RawMessage {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return data
	}
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, -1, compareRaw(nil, raw(1)))
	assert.Equal(t, -1, compareRaw(raw(nil), raw(false)))
	assert.Equal(t, -1, compareRaw(raw(1), raw(2)))
	assert.Equal(t, 1, compareRaw(raw("b"), raw("a")))
	assert.Equal(t, -1, compareRaw(raw(early), raw(early.Add(time.Nanosecond))))
	assert.Equal(t, 0, compareRaw(raw(true), raw(true)))
}

func docIDs(docs []*Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
