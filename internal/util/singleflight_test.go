package util

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSuppressesDuplicates(t *testing.T) {
	var g Group
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]interface{}, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err, _ := g.Do("summary", func() (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return "loaded", nil
			})
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, "loaded", v)
	}
}

func TestDoWithContextStopsWaiting(t *testing.T) {
	var g Group
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err, _ := g.DoWithContext(ctx, "slow", func(ctx context.Context) (interface{}, error) {
		<-release
		return nil, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoWithTimeoutReturnsError(t *testing.T) {
	var g Group
	boom := errors.New("boom")

	_, err, _ := g.DoWithTimeout("k", time.Second, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestForget(t *testing.T) {
	var g Group
	release := make(chan struct{})
	started := make(chan struct{})

	go g.Do("k", func() (interface{}, error) {
		close(started)
		<-release
		return 1, nil
	})
	<-started

	g.Forget("k")
	v, err, shared := g.Do("k", func() (interface{}, error) { return 2, nil })
	close(release)

	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.False(t, shared)
}
