package catalog_test

import (
	"context"
	"net/http"

	"github.com/MichalMitros/steam-deals-digest/internal/throttle"
)

// testDoer executes requests directly, mapping non-2xx statuses onto the
// throttled client's error taxonomy.
type testDoer struct {
	client *http.Client
}

func (d testDoer) Do(ctx context.Context, _ throttle.Class, req *http.Request) (*http.Response, error) {
	resp, err := d.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode/100 != 2 {
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusBadRequest {
			return nil, throttle.ErrBadRequest
		}
		return nil, throttle.ErrRetriesExhausted
	}

	return resp, nil
}
