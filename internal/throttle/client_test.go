package throttle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/MichalMitros/steam-deals-digest/internal/throttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClass = throttle.Class("test")

// fakeSleeper records requested sleeps without sleeping.
type fakeSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	return nil
}

func noJitter() time.Duration { return 0 }

func newTestClient(srv *httptest.Server, sleeper throttle.Sleeper, ops ...throttle.Option) *throttle.Client {
	ops = append([]throttle.Option{
		throttle.WithSleeper(sleeper),
		throttle.WithJitter(noJitter),
	}, ops...)

	return throttle.NewClient(
		srv.Client(),
		map[throttle.Class]time.Duration{testClass: time.Second},
		ops...,
	)
}

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err, "can't build test request")

	return req
}

func TestUnitDoRetries(t *testing.T) {
	tests := map[string]struct {
		statuses   []int
		retryAfter string
		wantCalls  int
		wantErr    error
	}{
		"ok first attempt": {
			statuses:  []int{http.StatusOK},
			wantCalls: 1,
		},
		"rate limited then ok": {
			statuses:  []int{http.StatusTooManyRequests, http.StatusOK},
			wantCalls: 2,
		},
		"server errors then ok": {
			statuses:  []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusOK},
			wantCalls: 3,
		},
		"cloudflare error then ok": {
			statuses:  []int{522, http.StatusOK},
			wantCalls: 2,
		},
		"bad request fails immediately": {
			statuses:  []int{http.StatusBadRequest},
			wantCalls: 1,
			wantErr:   throttle.ErrBadRequest,
		},
		"not found fails immediately": {
			statuses:  []int{http.StatusNotFound},
			wantCalls: 1,
			wantErr:   throttle.ErrBadRequest,
		},
		"exhausted retries": {
			statuses: []int{
				http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests,
			},
			wantCalls: 3,
			wantErr:   throttle.ErrRetriesExhausted,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
				status := tt.statuses[min(calls, len(tt.statuses)-1)]
				calls++
				if tt.retryAfter != "" {
					wrt.Header().Set("Retry-After", tt.retryAfter)
				}
				wrt.WriteHeader(status)
			}))
			t.Cleanup(srv.Close)

			cli := newTestClient(srv, &fakeSleeper{}, throttle.WithMaxAttempts(2))

			resp, err := cli.Do(context.TODO(), testClass, newRequest(t, srv.URL))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr, "should return correct error")
			} else {
				require.NoError(t, err, "shouldn't return any error")
				require.NotNil(t, resp, "should return a response")
				assert.NoError(t, resp.Body.Close(), "can't close response body")
			}

			if tt.wantErr == nil || tt.wantErr == throttle.ErrBadRequest {
				assert.Equal(t, tt.wantCalls, calls, "should make correct number of calls")
			}
		})
	}
}

func TestUnitDoHonorsRetryAfterHint(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			wrt.Header().Set("Retry-After", "7")
			wrt.WriteHeader(http.StatusTooManyRequests)
			return
		}
		wrt.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	sleeper := &fakeSleeper{}
	cli := newTestClient(srv, sleeper)

	resp, err := cli.Do(context.TODO(), testClass, newRequest(t, srv.URL))

	require.NoError(t, err, "shouldn't return any error")
	require.NoError(t, resp.Body.Close(), "can't close response body")

	// retry-after hint (7s) plus first escalation penalty (6s).
	assert.Contains(t, sleeper.sleeps, 13*time.Second, "should sleep the hinted wait plus penalty")
}

func TestUnitDoSpacesCallsPerClass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		wrt.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	sleeper := &fakeSleeper{}
	cli := newTestClient(srv, sleeper)

	for i := 0; i < 2; i++ {
		resp, err := cli.Do(context.TODO(), testClass, newRequest(t, srv.URL))
		require.NoError(t, err, "shouldn't return any error")
		require.NoError(t, resp.Body.Close(), "can't close response body")
	}

	require.Len(t, sleeper.sleeps, 1, "second call should wait for the class interval")
	assert.InDelta(t, float64(time.Second), float64(sleeper.sleeps[0]), float64(100*time.Millisecond),
		"should wait out the remaining class interval")
}

func TestUnitDoSpacesConcurrentCalls(t *testing.T) {
	const interval = 150 * time.Millisecond

	var mu sync.Mutex
	var arrivals []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		wrt.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cli := throttle.NewClient(
		srv.Client(),
		map[throttle.Class]time.Duration{testClass: interval},
		throttle.WithJitter(noJitter),
	)

	// prime the class clock, then race two workers for the next slot.
	resp, err := cli.Do(context.TODO(), testClass, newRequest(t, srv.URL))
	require.NoError(t, err, "shouldn't return any error")
	require.NoError(t, resp.Body.Close(), "can't close response body")

	var group sync.WaitGroup
	for i := 0; i < 2; i++ {
		group.Add(1)
		go func() {
			defer group.Done()

			resp, err := cli.Do(context.TODO(), testClass, newRequest(t, srv.URL))
			assert.NoError(t, err, "shouldn't return any error")
			if resp != nil {
				assert.NoError(t, resp.Body.Close(), "can't close response body")
			}
		}()
	}
	group.Wait()

	require.Len(t, arrivals, 3, "should make all calls")
	sort.Slice(arrivals, func(i, j int) bool { return arrivals[i].Before(arrivals[j]) })
	for ix := 1; ix < len(arrivals); ix++ {
		assert.GreaterOrEqual(t, arrivals[ix].Sub(arrivals[ix-1]), interval-20*time.Millisecond,
			"calls sharing a class should keep the minimum spacing")
	}
}

func TestUnitDoOtherClassNotSpaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		wrt.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	sleeper := &fakeSleeper{}
	cli := newTestClient(srv, sleeper)

	for _, class := range []throttle.Class{testClass, throttle.Class("other")} {
		resp, err := cli.Do(context.TODO(), class, newRequest(t, srv.URL))
		require.NoError(t, err, "shouldn't return any error")
		require.NoError(t, resp.Body.Close(), "can't close response body")
	}

	assert.Empty(t, sleeper.sleeps, "different classes shouldn't wait for each other")
}

func TestUnitDoContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		wrt.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cli := throttle.NewClient(
		srv.Client(),
		map[throttle.Class]time.Duration{testClass: time.Second},
		throttle.WithJitter(noJitter),
	)

	_, err := cli.Do(ctx, testClass, newRequest(t, srv.URL))

	require.ErrorIs(t, err, context.Canceled, "should return context error")
}
