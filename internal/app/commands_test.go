package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"culture_hotspots/internal/storage/memory"
)

func TestIngest_LoadsRows(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewIngestionService(store, nil, 4)

	rep, err := svc.Ingest(ctx, stringSource{sampleCSV})
	require.NoError(t, err)
	assert.NotEmpty(t, rep.RunID)
	assert.False(t, rep.Skipped)
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 3, rep.Succeeded)
	assert.Zero(t, rep.Failed)

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	h, ok, err := store.FindByID(ctx, "2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, h.Address)
	assert.Equal(t, "11", h.Extras["WARD"])

	h, ok, err = store.FindByID(ctx, "3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, h.Location)
}

func TestIngest_SkipsWhenPopulated(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewIngestionService(store, nil, 2)

	_, err := svc.Ingest(ctx, stringSource{sampleCSV})
	require.NoError(t, err)

	// the guard must not even open the source
	rep, err := svc.Ingest(ctx, brokenSource{})
	require.NoError(t, err)
	assert.True(t, rep.Skipped)
	assert.Equal(t, 3, rep.Existing)
	assert.Zero(t, rep.Total)
}

func TestIngest_BadRowsAreCountedAndSkipped(t *testing.T) {
	ctx := context.Background()
	body := sampleCSV +
		",Nameless,,,,,,\n" + // no id
		"5,Short\n" // wrong field count
	store := memory.New()
	svc := NewIngestionService(store, nil, 3)

	rep, err := svc.Ingest(ctx, stringSource{body})
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Total)
	assert.Equal(t, 3, rep.Succeeded)
	assert.Equal(t, 2, rep.Failed)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIngest_StoreFailuresAreCounted(t *testing.T) {
	ctx := context.Background()
	store := failingStore{Store: memory.New(), reject: map[string]bool{"2": true}}
	svc := NewIngestionService(store, nil, 2)

	rep, err := svc.Ingest(ctx, stringSource{sampleCSV})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 1, rep.Failed)

	_, ok, err := store.FindByID(ctx, "2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIngest_OpenFailureIsFatal(t *testing.T) {
	svc := NewIngestionService(memory.New(), nil, 1)
	_, err := svc.Ingest(context.Background(), brokenSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIngest_EmptySourceIsFatal(t *testing.T) {
	svc := NewIngestionService(memory.New(), nil, 1)
	_, err := svc.Ingest(context.Background(), stringSource{""})
	require.Error(t, err)
}

func TestIngest_HeaderOnly(t *testing.T) {
	svc := NewIngestionService(memory.New(), nil, 1)
	rep, err := svc.Ingest(context.Background(), stringSource{"_id,SITENAME\n"})
	require.NoError(t, err)
	assert.Zero(t, rep.Total)
}

func TestClearThenReingest(t *testing.T) {
	ctx := context.Background()
	body := sampleCSV +
		",Nameless,,,,,,\n" +
		"5,Short\n"
	store := memory.New()
	cache := newFakeCache()
	svc := NewIngestionService(store, cache, 4)

	first, err := svc.Ingest(ctx, stringSource{body})
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, keyAll, []string{"stale"}, 60))

	require.NoError(t, svc.Clear(ctx))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, cache.has(keyAll))

	second, err := svc.Reingest(ctx, stringSource{body})
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
	first.RunID, second.RunID = "", ""
	assert.Equal(t, first, second)
	assert.Equal(t, 5, second.Total)
	assert.Equal(t, 3, second.Succeeded)
	assert.Equal(t, 2, second.Failed)
}

func TestClear_DropsCachedLookups(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	cache := newFakeCache()
	svc := NewIngestionService(store, cache, 2)
	q := NewQueryService(store, cache, time.Minute)

	_, err := svc.Ingest(ctx, stringSource{sampleCSV})
	require.NoError(t, err)
	_, found, err := q.GetByID(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, cache.has(keyIDPrefix+"1"))

	require.NoError(t, svc.Clear(ctx))
	assert.False(t, cache.has(keyIDPrefix+"1"))
	_, found, err = q.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIngest_KeepsFileOrderWithWorkers(t *testing.T) {
	ctx := context.Background()
	var b strings.Builder
	b.WriteString("_id,SITENAME\n")
	want := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "id-%d,Site %d\n", i, i)
		want = append(want, fmt.Sprintf("id-%d", i))
	}
	// later duplicates must replace earlier rows in place
	for i := 0; i < 300; i += 10 {
		fmt.Fprintf(&b, "id-%d,Site %d v2\n", i, i)
	}

	for run := 0; run < 5; run++ {
		store := memory.New()
		rep, err := NewIngestionService(store, nil, 8).Ingest(ctx, stringSource{b.String()})
		require.NoError(t, err)
		assert.Equal(t, 330, rep.Succeeded)

		all, err := store.FindAll(ctx)
		require.NoError(t, err)
		got := make([]string, 0, len(all))
		for _, h := range all {
			got = append(got, h.ID)
		}
		require.Equal(t, want, got, "run %d", run)

		h, ok, err := store.FindByID(ctx, "id-120")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Site 120 v2", *h.Name)
	}
}

func TestInitialize_ReportsSkip(t *testing.T) {
	ctx := context.Background()
	svc := NewIngestionService(memory.New(), nil, 1)
	_, err := svc.Initialize(ctx, stringSource{sampleCSV})
	require.NoError(t, err)
	rep, err := svc.Initialize(ctx, stringSource{sampleCSV})
	require.NoError(t, err)
	assert.True(t, rep.Skipped)
}

func TestIngest_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewIngestionService(memory.New(), nil, 1)
	_, err := svc.Ingest(ctx, stringSource{sampleCSV})
	require.Error(t, err)
}
