package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWithDelay(t *testing.T) {
	t.Run(`one holder per key`, func(t *testing.T) {
		var inside, maxInside int32
		wg := sync.WaitGroup{}
		for n := 0; n < 8; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := WithDelay(context.Background(), "seq-org-1", time.Second*5, func() error {
					current := atomic.AddInt32(&inside, 1)
					for {
						prev := atomic.LoadInt32(&maxInside)
						if current <= prev || atomic.CompareAndSwapInt32(&maxInside, prev, current) {
							break
						}
					}
					time.Sleep(time.Millisecond * 5)
					atomic.AddInt32(&inside, -1)
					return nil
				})
				require.True(t, ok)
				require.NoError(t, err)
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, maxInside)
	})

	t.Run(`busy key times out`, func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		go func() {
			_, _ = WithDelay(context.Background(), "busy", time.Second, func() error {
				close(started)
				<-release
				return nil
			})
		}()
		<-started
		ok, err := WithDelay(context.Background(), "busy", time.Millisecond*30, func() error {
			return nil
		})
		close(release)
		require.False(t, ok)
		require.NoError(t, err)
	})

	t.Run(`error from the guarded code is returned`, func(t *testing.T) {
		ok, err := WithDelay(context.Background(), "err", time.Second, func() error {
			return errors.New("boom")
		})
		require.True(t, ok)
		require.EqualError(t, err, "boom")
	})
}
