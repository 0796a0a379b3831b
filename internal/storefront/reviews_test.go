package storefront_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MichalMitros/steam-deals-digest/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reviewsHandler serves canned review totals; ids missing from counts get a
// server error.
func reviewsHandler(t *testing.T, counts map[int]int, calls *sync.Map) http.Handler {
	return http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
		require.True(t, strings.HasPrefix(req.URL.Path, "/appreviews/"), "should call the appreviews endpoint")
		assert.Equal(t, "1", req.URL.Query().Get("json"), "should request json")
		assert.Equal(t, language, req.URL.Query().Get("language"), "should filter by language")

		appID, err := strconv.Atoi(strings.TrimPrefix(req.URL.Path, "/appreviews/"))
		require.NoError(t, err, "can't parse app id from path")

		prev, _ := calls.LoadOrStore(appID, 0)
		calls.Store(appID, prev.(int)+1)

		total, ok := counts[appID]
		if !ok {
			wrt.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(wrt, `{"query_summary":{"total_reviews":%d}}`, total)
	})
}

func TestUnitReviewCounts(t *testing.T) {
	counts := map[int]int{10: 25, 20: 5, 30: 40, 40: 0}
	// id 50 missing: its fetch fails and must degrade to zero.

	srv := httptest.NewServer(reviewsHandler(t, counts, &sync.Map{}))
	t.Cleanup(srv.Close)

	cli := storefront.NewClient(testDoer{srv.Client()}, srv.URL, region, language)

	got := cli.ReviewCounts(context.TODO(), []int{10, 20, 30, 40, 50, 10})

	assert.Equal(t, map[int]int{10: 25, 20: 5, 30: 40, 40: 0, 50: 0}, got,
		"failed ids should degrade to zero without affecting siblings")
}

func TestUnitReviewCountsCache(t *testing.T) {
	calls := &sync.Map{}

	srv := httptest.NewServer(reviewsHandler(t, map[int]int{10: 7}, calls))
	t.Cleanup(srv.Close)

	cli := storefront.NewClient(testDoer{srv.Client()}, srv.URL, region, language)

	for i := 0; i < 3; i++ {
		got := cli.ReviewCounts(context.TODO(), []int{10})
		require.Equal(t, map[int]int{10: 7}, got, "should return the cached count")
	}

	callCount, _ := calls.Load(10)
	assert.Equal(t, 1, callCount, "cache hits should skip the remote call")
}

func TestUnitReviewCountsBoundedConcurrency(t *testing.T) {
	var mu sync.Mutex
	current, peak := 0, 0

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		current++
		peak = max(peak, current)
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()

		_, _ = wrt.Write([]byte(`{"query_summary":{"total_reviews":1}}`))
	}))
	t.Cleanup(srv.Close)

	cli := storefront.NewClient(
		testDoer{srv.Client()}, srv.URL, region, language,
		storefront.WithWorkers(2),
	)

	got := cli.ReviewCounts(context.TODO(), []int{1, 2, 3, 4, 5, 6, 7, 8})

	require.Len(t, got, 8, "should return a count for every id")
	assert.LessOrEqual(t, peak, 2, "should never run more workers than configured")
}
