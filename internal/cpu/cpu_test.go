package cpu

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(values ...float64) PercentFunc {
	var i atomic.Int32
	return func(context.Context, time.Duration, bool) ([]float64, error) {
		n := int(i.Add(1)) - 1
		return []float64{values[n%len(values)]}, nil
	}
}

func TestSampleRecordsHistory(t *testing.T) {
	m := New(3, WithPercentFunc(sequence(10, 20, 30, 40)))

	_, ok := m.Latest()
	assert.False(t, ok)
	assert.Empty(t, m.History())

	for _, want := range []float64{10, 20, 30, 40} {
		got, err := m.Sample(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	assert.Equal(t, []float64{20, 30, 40}, m.History())

	latest, ok := m.Latest()
	require.True(t, ok)
	assert.Equal(t, 40.0, latest)
	assert.Equal(t, 30.0, m.Average())
}

func TestDefaultHistorySize(t *testing.T) {
	m := New(0, WithPercentFunc(sequence(1)))
	for i := 0; i < DefaultHistorySize+20; i++ {
		_, err := m.Sample(context.Background())
		require.NoError(t, err)
	}

	assert.Len(t, m.History(), DefaultHistorySize)
}

func TestSampleErrors(t *testing.T) {
	failing := New(5, WithPercentFunc(func(context.Context, time.Duration, bool) ([]float64, error) {
		return nil, stderrors.New("no /proc/stat")
	}))
	_, err := failing.Sample(context.Background())
	assert.True(t, errors.HasCode(err, ErrSampleFailed))
	assert.Empty(t, failing.History())

	empty := New(5, WithPercentFunc(func(context.Context, time.Duration, bool) ([]float64, error) {
		return nil, nil
	}))
	_, err = empty.Sample(context.Background())
	assert.True(t, errors.HasCode(err, ErrNoSample))
}

func TestRun(t *testing.T) {
	m := New(10, WithPercentFunc(sequence(5)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 2*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(m.History()) >= 3 }, time.Second, 2*time.Millisecond)
	cancel()
	<-done
}

func TestRingBufferLast(t *testing.T) {
	r := newRingBuffer(4)
	assert.Nil(t, r.last(2))

	for _, v := range []float64{1, 2, 3, 4, 5, 6} {
		r.push(v)
	}

	assert.Equal(t, []float64{5, 6}, r.last(2))
	assert.Equal(t, []float64{3, 4, 5, 6}, r.last(10))
	assert.Nil(t, r.last(0))
}
