package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/pkg/models"
)

// ErrAuthExpired is returned when the upstream API rejects a request with
// 401. Callers invalidate the session cache and surface an auth prompt.
var ErrAuthExpired = errors.New("upstream session expired")

// transientError marks failures worth retrying (network errors, 5xx).
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

const (
	sessionPath = "/api/auth/session"
	boardsPath  = "/api/boards"
	savePath    = "/api/assets/fb"
	// Older app deployments expose the save endpoint under /api/extension.
	saveAltPath = "/api/extension/assets/fb"
)

// Client talks to the web app API on behalf of the extension.
type Client struct {
	baseURL       string
	altBaseURL    string
	token         string
	sessionCookie string
	httpClient    *http.Client
	logger        logging.Logger
}

// NewClient builds an upstream client from config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.Upstream.BaseURL, "/"),
		altBaseURL:    strings.TrimRight(cfg.Upstream.AltBaseURL, "/"),
		token:         cfg.Upstream.Token,
		sessionCookie: cfg.Upstream.SessionCookie,
		httpClient: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
		logger: logging.GetGlobalLogger(),
	}
}

// CheckSession probes the upstream session endpoint. A 200 with a non-empty
// user object means the session is valid; a 401 or empty session body means
// it is not. Transport failures are transient.
func (c *Client) CheckSession(ctx context.Context) (bool, error) {
	body, err := c.get(ctx, c.baseURL+sessionPath)
	if err != nil {
		if errors.Is(err, ErrAuthExpired) {
			return false, nil
		}
		return false, err
	}

	// next-auth returns {} or null for anonymous visitors.
	var session map[string]json.RawMessage
	if err := json.Unmarshal(body, &session); err != nil {
		return false, nil
	}
	_, hasUser := session["user"]
	return hasUser, nil
}

// ListBoards fetches the user's boards and normalizes whatever envelope the
// app returns into a plain list.
func (c *Client) ListBoards(ctx context.Context) ([]models.Board, error) {
	body, err := c.get(ctx, c.baseURL+boardsPath)
	if err != nil {
		return nil, err
	}
	return NormalizeBoards(body), nil
}

// NormalizeBoards accepts the board list in any of the envelope shapes the
// app has shipped over time: a raw array, {data: [...]}, or {boards: [...]}.
// Anything unrecognized yields an empty list rather than an error.
func NormalizeBoards(raw []byte) []models.Board {
	var direct []models.Board
	if err := json.Unmarshal(raw, &direct); err == nil {
		if direct == nil {
			return []models.Board{}
		}
		return direct
	}

	var wrapped struct {
		Data   []models.Board `json:"data"`
		Boards []models.Board `json:"boards"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if wrapped.Data != nil {
			return wrapped.Data
		}
		if wrapped.Boards != nil {
			return wrapped.Boards
		}
	}
	return []models.Board{}
}

// SaveAd posts a captured ad to the app. alt selects the legacy endpoint
// path used on the raced first retry.
func (c *Client) SaveAd(ctx context.Context, data *models.SaveAdData, alt bool) (*models.SaveResult, error) {
	path := savePath
	base := c.baseURL
	if alt {
		path = saveAltPath
		if c.altBaseURL != "" {
			base = c.altBaseURL
		}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal save payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transientError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &transientError{err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrAuthExpired
	case resp.StatusCode >= 500:
		return nil, &transientError{err: fmt.Errorf("upstream returned %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("upstream rejected save: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result models.SaveResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode save response: %w", err)
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transientError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &transientError{err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrAuthExpired
	case resp.StatusCode >= 500:
		return nil, &transientError{err: fmt.Errorf("upstream returned %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	return body, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.AddCookie(&http.Cookie{Name: c.sessionCookie, Value: c.token})
	}
}
