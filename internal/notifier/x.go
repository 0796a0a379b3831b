package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrPostRejected is returned when the posting endpoint rejects a post.
var ErrPostRejected = errors.New("post rejected")

// tokenRefreshAttempts bounds the retries of a failing token exchange.
const tokenRefreshAttempts = 3

// TokenStore persists the rotating refresh token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(refreshToken string) error
}

// XOption is custom configuration of XPoster.
type XOption func(p *XPoster)

// XPoster posts to X (Twitter) as an OAuth2 confidential client. The access
// token is obtained lazily from the stored refresh token; a rotated refresh
// token is persisted back through the TokenStore.
type XPoster struct {
	httpClient   *http.Client
	apiURL       string
	clientID     string
	clientSecret string
	redirectURI  string
	tokens       TokenStore
	sleep        func(ctx context.Context, d time.Duration) error
	logger       zerolog.Logger

	mu          sync.Mutex
	accessToken string
}

// NewXPoster returns new XPoster.
func NewXPoster(
	httpClient *http.Client,
	clientID, clientSecret, redirectURI string,
	tokens TokenStore,
	ops ...XOption,
) *XPoster {
	pst := &XPoster{
		httpClient:   httpClient,
		apiURL:       "https://api.twitter.com",
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		tokens:       tokens,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
		logger: zerolog.Nop(),
	}

	for _, op := range ops {
		op(pst)
	}

	return pst
}

// Post publishes text, replying to inReplyTo when set, and returns the
// created post id.
func (p *XPoster) Post(ctx context.Context, text, inReplyTo string) (string, error) {
	token, err := p.accessTokenLocked(ctx)
	if err != nil {
		return "", err
	}

	payload := map[string]any{"text": text}
	if inReplyTo != "" {
		payload["reply"] = map[string]any{"in_reply_to_tweet_id": inReplyTo}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("can't marshal post payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, p.apiURL+"/2/tweets", strings.NewReader(string(body)),
	)
	if err != nil {
		return "", fmt.Errorf("can't build post request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("can't send post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return "", fmt.Errorf("%w: status %d: %s", ErrPostRejected, resp.StatusCode, detail)
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("can't decode post response: %w", err)
	}

	return created.Data.ID, nil
}

// accessTokenLocked returns the run's access token, exchanging the refresh
// token on first use.
func (p *XPoster) accessTokenLocked(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" {
		return p.accessToken, nil
	}

	token, err := p.refreshAccessToken(ctx)
	if err != nil {
		return "", err
	}
	p.accessToken = token

	return token, nil
}

// refreshAccessToken exchanges the stored refresh token for an access token,
// persisting the rotated refresh token when the endpoint issues one.
// Server errors are retried with backoff; anything else fails at once.
func (p *XPoster) refreshAccessToken(ctx context.Context) (string, error) {
	refreshToken, err := p.tokens.Load()
	if err != nil {
		return "", fmt.Errorf("can't load refresh token: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < tokenRefreshAttempts; attempt++ {
		if attempt > 0 {
			wait := 1500 * time.Millisecond << (attempt - 1)
			if err := p.sleep(ctx, wait); err != nil {
				return "", err
			}
		}

		token, retryable, err := p.exchangeToken(ctx, refreshToken)
		if err == nil {
			return token, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("can't refresh access token: %w", lastErr)
}

func (p *XPoster) exchangeToken(ctx context.Context, refreshToken string) (token string, retryable bool, err error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {p.clientID},
		"redirect_uri":  {p.redirectURI},
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, p.apiURL+"/2/oauth2/token", strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", false, fmt.Errorf("can't build token request: %w", err)
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(p.clientID + ":" + p.clientSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("can't send token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("token endpoint unavailable: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return "", false, fmt.Errorf("token refresh rejected: status %d: %s", resp.StatusCode, detail)
	}

	var issued struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&issued); err != nil {
		return "", false, fmt.Errorf("can't decode token response: %w", err)
	}

	if issued.RefreshToken != "" && issued.RefreshToken != refreshToken {
		if err := p.tokens.Save(issued.RefreshToken); err != nil {
			// the old token may still be alive, keep going with a warning.
			p.logger.Warn().Err(err).Msg("can't persist rotated refresh token")
		} else {
			p.logger.Info().Msg("refresh token rotated")
		}
	}

	return issued.AccessToken, false, nil
}

// WithAPIURL sets the posting API base url.
func WithAPIURL(apiURL string) XOption {
	return func(p *XPoster) {
		p.apiURL = strings.TrimRight(apiURL, "/")
	}
}

// WithXLogger sets XPoster's logger.
func WithXLogger(logger zerolog.Logger) XOption {
	return func(p *XPoster) {
		p.logger = logger
	}
}

// WithSleep sets XPoster's sleep function.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) XOption {
	return func(p *XPoster) {
		p.sleep = sleep
	}
}
