package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/pkg/models"
)

// raceTimeout bounds the alternate-path attempt raced on the first retry.
const raceTimeout = 3 * time.Second

// Relay answers extension messages, caching session state and boards and
// retrying saves against the upstream app API.
type Relay struct {
	cfg    *config.Config
	cache  *Cache
	client *Client
	ready  atomic.Bool
	logger logging.Logger

	sleep func(time.Duration)
}

// NewRelay builds a relay from config. It is not ready until Preload runs.
func NewRelay(cfg *config.Config) *Relay {
	return &Relay{
		cfg:    cfg,
		cache:  NewCache(cfg.Relay.SessionTTL, cfg.Relay.BoardsTTL),
		client: NewClient(cfg),
		logger: logging.GetGlobalLogger(),
		sleep:  time.Sleep,
	}
}

// Preload warms the session and boards caches at startup. The relay becomes
// ready when the preload finishes regardless of outcome, so a dead upstream
// degrades to fallback responses instead of blocking the message endpoint
// forever.
func (r *Relay) Preload(ctx context.Context) {
	defer r.ready.Store(true)

	valid, err := r.client.CheckSession(ctx)
	if err != nil {
		r.logger.Warn("Session preload failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	r.cache.SetSession(valid)
	if !valid {
		return
	}

	boards, err := r.client.ListBoards(ctx)
	if err != nil {
		r.logger.Warn("Boards preload failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	r.cache.SetBoards(boards)
	r.logger.Info("Relay preload complete", map[string]interface{}{
		"session_valid": valid,
		"boards":        len(boards),
	})
}

// Ready reports whether the startup preload has finished.
func (r *Relay) Ready() bool {
	return r.ready.Load()
}

// HandleMessage dispatches one extension message. Every path returns a
// well-formed envelope; transport failures degrade to typed fallback data
// rather than errors.
func (r *Relay) HandleMessage(ctx context.Context, msg *models.Message) models.MessageResponse {
	if msg.Type == models.MessagePing {
		return models.MessageResponse{Success: true, Data: map[string]string{"status": "pong"}}
	}

	if !r.ready.Load() {
		return models.MessageResponse{
			Success: false,
			Data:    fallbackData(msg.Type),
			Error:   "relay warming up",
		}
	}

	switch msg.Type {
	case models.MessageCheckSession:
		return r.handleCheckSession(ctx)
	case models.MessageLoadBoards:
		return r.handleLoadBoards(ctx)
	case models.MessageSaveAd:
		return r.handleSaveAd(ctx, msg.Data)
	default:
		return models.MessageResponse{
			Success: false,
			Error:   fmt.Sprintf("unknown message type: %s", msg.Type),
		}
	}
}

func (r *Relay) handleCheckSession(ctx context.Context) models.MessageResponse {
	if !r.cache.SessionStale() {
		return models.MessageResponse{
			Success: true,
			Data:    models.SessionState{Valid: r.cache.SessionValid()},
		}
	}

	valid, err := r.client.CheckSession(ctx)
	if err != nil {
		r.logger.Warn("Session check failed, serving cached state", map[string]interface{}{
			"error": err.Error(),
		})
		return models.MessageResponse{
			Success: false,
			Data:    models.SessionState{Valid: r.cache.SessionValid()},
			Error:   "session check unavailable",
		}
	}

	r.cache.SetSession(valid)
	if !valid {
		r.cache.InvalidateSession()
	}
	return models.MessageResponse{Success: true, Data: models.SessionState{Valid: valid}}
}

func (r *Relay) handleLoadBoards(ctx context.Context) models.MessageResponse {
	if !r.cache.BoardsStale() {
		return models.MessageResponse{
			Success: true,
			Data:    models.BoardList{Boards: r.cache.Boards()},
		}
	}

	boards, err := r.client.ListBoards(ctx)
	if err != nil {
		if err == ErrAuthExpired {
			r.cache.InvalidateSession()
			return models.MessageResponse{
				Success: false,
				Data:    models.BoardList{Boards: []models.Board{}},
				Error:   "session expired",
			}
		}
		// Serve the stale list if we have one.
		cached := r.cache.Boards()
		r.logger.Warn("Boards refresh failed", map[string]interface{}{
			"error":  err.Error(),
			"cached": len(cached),
		})
		if len(cached) > 0 {
			return models.MessageResponse{Success: true, Data: models.BoardList{Boards: cached}}
		}
		return models.MessageResponse{
			Success: false,
			Data:    models.BoardList{Boards: []models.Board{}},
			Error:   "boards unavailable",
		}
	}

	r.cache.SetBoards(boards)
	return models.MessageResponse{Success: true, Data: models.BoardList{Boards: boards}}
}

func (r *Relay) handleSaveAd(ctx context.Context, raw json.RawMessage) models.MessageResponse {
	var data models.SaveAdData
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.MessageResponse{
			Success: false,
			Data:    models.SaveAdResult{Saved: false},
			Error:   "malformed save payload",
		}
	}
	if data.AdURL == "" && data.Card == nil {
		return models.MessageResponse{
			Success: false,
			Data:    models.SaveAdResult{Saved: false},
			Error:   "save requires an ad url or a captured card",
		}
	}

	result, err := r.saveWithRetry(ctx, &data)
	if err != nil {
		if err == ErrAuthExpired {
			r.cache.InvalidateSession()
			return models.MessageResponse{
				Success: false,
				Data:    models.SaveAdResult{Saved: false},
				Error:   "session expired",
			}
		}
		r.logger.Error("Save failed after retries", map[string]interface{}{
			"ad_url": data.AdURL,
			"error":  err.Error(),
		})
		return models.MessageResponse{
			Success: false,
			Data:    models.SaveAdResult{Saved: false},
			Error:   "save failed",
		}
	}

	return models.MessageResponse{
		Success: true,
		Data:    models.SaveAdResult{Saved: true, Asset: result},
	}
}

// saveWithRetry makes up to MaxRetries attempts. The first retry after a
// transient failure races the alternate endpoint path against a short
// timeout; later retries go back to the primary path with linear backoff.
func (r *Relay) saveWithRetry(ctx context.Context, data *models.SaveAdData) (*models.SaveResult, error) {
	maxAttempts := r.cfg.Upstream.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var result *models.SaveResult
		var err error

		switch {
		case attempt == 1:
			result, err = r.client.SaveAd(ctx, data, false)
		case attempt == 2:
			result, err = r.saveRaced(ctx, data)
		default:
			r.sleep(time.Duration(attempt) * r.cfg.Upstream.RetryBaseDelay)
			result, err = r.client.SaveAd(ctx, data, false)
		}

		if err == nil {
			return result, nil
		}
		if err == ErrAuthExpired || !isTransient(err) {
			return nil, err
		}

		lastErr = err
		r.logger.Warn("Save attempt failed", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
	}
	return nil, lastErr
}

// saveRaced tries the alternate endpoint path under a short deadline so a
// hung legacy endpoint cannot stall the whole retry budget.
func (r *Relay) saveRaced(ctx context.Context, data *models.SaveAdData) (*models.SaveResult, error) {
	raced, cancel := context.WithTimeout(ctx, raceTimeout)
	defer cancel()

	result, err := r.client.SaveAd(raced, data, true)
	if err == nil {
		return result, nil
	}
	if err == ErrAuthExpired {
		return nil, err
	}
	return nil, &transientError{err: err}
}

// fallbackData returns the empty well-formed payload for a message type so
// not-ready responses still match the response shape the UI expects.
func fallbackData(t models.MessageType) interface{} {
	switch t {
	case models.MessageCheckSession:
		return models.SessionState{Valid: false}
	case models.MessageLoadBoards:
		return models.BoardList{Boards: []models.Board{}}
	case models.MessageSaveAd:
		return models.SaveAdResult{Saved: false}
	default:
		return nil
	}
}
