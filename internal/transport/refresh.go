package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/profilesync/internal/domain"
)

var errEmptyAccess = errors.New("refresh response carried no access token")

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refresh exchanges refreshToken for a new access token and stores it. Calls
// racing on the same refresh token share one exchange, which runs detached
// from any caller's context and is bounded by the transport timeout. A caller
// whose context ends while waiting gets a cancellation error; the store is
// only cleared when the exchange itself fails.
func (t *Transport) refresh(ctx context.Context, refreshToken string) (string, error) {
	ch := t.refreshGroup.DoChan(refreshToken, func() (any, error) {
		exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
		defer cancel()

		access, err := t.exchange(exchangeCtx, refreshToken)
		if err != nil {
			t.metrics.ObserveRefresh("failure")
			log.Warn().Err(err).Msg("token refresh failed, clearing credentials")
			t.store.Clear()
			t.notifyExpired()
			return "", domain.NewSessionExpiredError()
		}

		t.metrics.ObserveRefresh("success")
		t.store.SetTokens(access, "")
		return access, nil
	})

	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Msg("caller gave up waiting for token refresh")
		return "", cancelled(ctx.Err())
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// exchange calls the refresh endpoint. The stale access token is not sent.
func (t *Transport) exchange(ctx context.Context, refreshToken string) (string, error) {
	payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}

	resp, err := t.send(ctx, EndpointTokenRefresh, Options{Method: http.MethodPost}, payload, "")
	if err != nil {
		return "", err
	}

	var out refreshResponse
	if err := t.decode(EndpointTokenRefresh, resp, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errEmptyAccess
	}
	return out.Access, nil
}

func (t *Transport) notifyExpired() {
	t.mu.Lock()
	handlers := append([]func(){}, t.expiredHandler...)
	t.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}
