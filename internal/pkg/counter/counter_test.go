package counter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	mu      sync.Mutex
	pending map[int64]int64
}

func (f *fakeCounter) Increment(_ context.Context, versionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		f.pending = make(map[int64]int64)
	}
	f.pending[versionID]++
	return nil
}

func (f *fakeCounter) Drain(_ context.Context) (map[int64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out, nil
}

func (f *fakeCounter) Restore(_ context.Context, totals map[int64]int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		f.pending = make(map[int64]int64)
	}
	for id, n := range totals {
		f.pending[id] += n
	}
	return nil
}

func (f *fakeCounter) snapshot() map[int64]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]int64, len(f.pending))
	for id, n := range f.pending {
		out[id] = n
	}
	return out
}

type fakeSink struct {
	mu     sync.Mutex
	totals map[int64]int64
	err    error
}

func (f *fakeSink) AddDownloads(_ context.Context, totals map[int64]int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.totals == nil {
		f.totals = make(map[int64]int64)
	}
	for id, n := range totals {
		f.totals[id] += n
	}
	return nil
}

func (f *fakeSink) snapshot() map[int64]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]int64, len(f.totals))
	for id, n := range f.totals {
		out[id] = n
	}
	return out
}

func TestFlusherDrainsOnClose(t *testing.T) {
	ctr := &fakeCounter{}
	sink := &fakeSink{}

	ctx := context.Background()
	assert.NoError(t, ctr.Increment(ctx, 10))
	assert.NoError(t, ctr.Increment(ctx, 10))
	assert.NoError(t, ctr.Increment(ctx, 20))

	fl := NewFlusher(ctr, sink, time.Hour, nil)
	fl.Start()
	assert.NoError(t, fl.Close())

	assert.Equal(t, map[int64]int64{10: 2, 20: 1}, sink.snapshot())
}

func TestFlusherReportsSinkFailure(t *testing.T) {
	ctr := &fakeCounter{}
	sink := &fakeSink{err: errors.New("db down")}

	assert.NoError(t, ctr.Increment(context.Background(), 7))

	var mu sync.Mutex
	var got error
	fl := NewFlusher(ctr, sink, time.Hour, func(err error) {
		mu.Lock()
		got = err
		mu.Unlock()
	})
	fl.Start()
	assert.NoError(t, fl.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorContains(t, got, "db down")
}

func TestFlusherRestoresTotalsOnSinkFailure(t *testing.T) {
	ctr := &fakeCounter{}
	sink := &fakeSink{err: errors.New("db down")}

	ctx := context.Background()
	assert.NoError(t, ctr.Increment(ctx, 7))
	assert.NoError(t, ctr.Increment(ctx, 7))
	assert.NoError(t, ctr.Increment(ctx, 9))

	fl := NewFlusher(ctr, sink, time.Hour, nil)
	fl.Start()
	assert.NoError(t, fl.Close())

	// counts went back into the counter, not onto the floor
	assert.Equal(t, map[int64]int64{7: 2, 9: 1}, ctr.snapshot())

	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	fl2 := NewFlusher(ctr, sink, time.Hour, nil)
	fl2.Start()
	assert.NoError(t, fl2.Close())

	assert.Equal(t, map[int64]int64{7: 2, 9: 1}, sink.snapshot())
	assert.Empty(t, ctr.snapshot())
}
