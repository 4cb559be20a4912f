package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"salondesk/domain/ticket"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpires(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []ticket.Ticket{{SalonName: "Lux"}}, time.Minute))

	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "Lux", got[0].SalonName)

	got[0].SalonName = "mutated"
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, "Lux", again[0].SalonName)

	now = now.Add(2 * time.Minute)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryClear(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", nil, time.Minute))
	require.NoError(t, m.Clear(ctx))
	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisGetSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := NewRedisWithClient(db)
	ctx := context.Background()

	tickets := []ticket.Ticket{{SalonName: "Lux Nails", Source: ticket.SourceSheet}}
	data, err := json.Marshal(tickets)
	require.NoError(t, err)

	mock.ExpectSet(KeyPrefix+"A|B", data, time.Minute).SetVal("OK")
	require.NoError(t, r.Set(ctx, "A|B", tickets, time.Minute))

	mock.ExpectGet(KeyPrefix + "A|B").SetVal(string(data))
	got, ok := r.Get(ctx, "A|B")
	require.True(t, ok)
	assert.Equal(t, "Lux Nails", got[0].SalonName)

	mock.ExpectGet(KeyPrefix + "missing").RedisNil()
	_, ok = r.Get(ctx, "missing")
	assert.False(t, ok)

	mock.ExpectGet(KeyPrefix + "broken").SetErr(errors.New("connection reset"))
	_, ok = r.Get(ctx, "broken")
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClearScansPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := NewRedisWithClient(db)

	mock.ExpectScan(0, KeyPrefix+"*", 100).SetVal([]string{KeyPrefix + "a"}, 7)
	mock.ExpectDel(KeyPrefix + "a").SetVal(1)
	mock.ExpectScan(7, KeyPrefix+"*", 100).SetVal([]string{}, 0)

	require.NoError(t, r.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
