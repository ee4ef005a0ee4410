package resolver

import (
	"context"
	"fmt"
	"testing"

	"maischedule/lib/schedule"
	"maischedule/lib/scrapers/mai"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	env   schedule.Envelope
	diags []schedule.Diagnostic
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, group string, week int) (schedule.Envelope, []schedule.Diagnostic, error) {
	f.calls++
	if f.err != nil {
		return schedule.Envelope{}, nil, f.err
	}
	return f.env, f.diags, nil
}

func setupResolver(t *testing.T, fetcher *fakeFetcher) (Service, FileCache, Store) {
	cache, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	store := setupStore(t)
	return NewService(fetcher, cache, store), cache, store
}

func TestResolveFromCache(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, cache, _ := setupResolver(t, fetcher)
	ctx := context.Background()

	env := testEnvelope()
	require.NoError(t, cache.Put(ctx, "М8О-104БВ-24", 5, env))

	result, err := svc.Resolve(ctx, Request{Group: "М8О-104БВ-24", Week: 5})
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, "cache", result.Source)
	require.Equal(t, env, result.Envelope)
	require.Equal(t, 0, fetcher.calls)
}

func TestResolveFromStore(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, _, store := setupResolver(t, fetcher)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "М8О-104БВ-24", 5, testEnvelope()))

	result, err := svc.Resolve(ctx, Request{Group: "М8О-104БВ-24", Week: 5})
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, "database", result.Source)
	require.Equal(t, "Базовое высшее образование", result.Envelope.EducationType)
	require.Equal(t, 0, fetcher.calls)
}

func TestResolveLiveFetchWritesThrough(t *testing.T) {
	fetcher := &fakeFetcher{
		env: testEnvelope(),
		diags: []schedule.Diagnostic{
			{Day: 0, Lesson: 1, Field: "teacher", Reason: "teacher element not found"},
		},
	}
	svc, cache, store := setupResolver(t, fetcher)
	ctx := context.Background()

	result, err := svc.Resolve(ctx, Request{Group: "М8О-104БВ-24", Week: 5})
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, "site", result.Source)
	require.Equal(t, fetcher.env, result.Envelope)
	require.Equal(t, fetcher.diags, result.Diagnostics)

	// both tiers now answer without the fetcher
	cached, found, err := cache.Get(ctx, "М8О-104БВ-24", 5)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, fetcher.env, cached)

	_, found, err = store.Get(ctx, "М8О-104БВ-24", 5)
	require.NoError(t, err)
	require.True(t, found)
}

func TestResolveRefreshBypassesTiers(t *testing.T) {
	fetcher := &fakeFetcher{env: testEnvelope()}
	svc, cache, _ := setupResolver(t, fetcher)
	ctx := context.Background()

	stale := testEnvelope()
	stale.Schedule = stale.Schedule[:1]
	require.NoError(t, cache.Put(ctx, "М8О-104БВ-24", 5, stale))

	result, err := svc.Resolve(ctx, Request{Group: "М8О-104БВ-24", Week: 5, Refresh: true})
	require.NoError(t, err)
	require.Equal(t, "site", result.Source)
	require.Equal(t, 1, fetcher.calls)

	refreshed, _, err := cache.Get(ctx, "М8О-104БВ-24", 5)
	require.NoError(t, err)
	require.Equal(t, fetcher.env, refreshed)
}

func TestResolveMalformedGroup(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc, _, _ := setupResolver(t, fetcher)

	_, err := svc.Resolve(context.Background(), Request{Group: "оченьплохо", Week: 5})
	require.Error(t, err)
	require.Equal(t, 0, fetcher.calls)
}

func TestResolveFetchFailureIsNotAnError(t *testing.T) {
	fetcher := &fakeFetcher{
		err: fmt.Errorf("%w: weekMenuOpened: timeout", mai.ErrFetchFailed),
	}
	svc, _, _ := setupResolver(t, fetcher)

	result, err := svc.Resolve(context.Background(), Request{Group: "М8О-104БВ-24", Week: 5})
	require.NoError(t, err)
	require.False(t, result.Found)
	require.Equal(t, "site", result.Source)
}

func TestResolveEmptyWeekIsNoData(t *testing.T) {
	fetcher := &fakeFetcher{env: schedule.Envelope{EducationType: "Бакалавриат"}}
	svc, cache, _ := setupResolver(t, fetcher)
	ctx := context.Background()

	result, err := svc.Resolve(ctx, Request{Group: "М8О-104БВ-24", Week: 5})
	require.NoError(t, err)
	require.False(t, result.Found)

	// nothing written through for an empty result
	_, found, err := cache.Get(ctx, "М8О-104БВ-24", 5)
	require.NoError(t, err)
	require.False(t, found)
}
