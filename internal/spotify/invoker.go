package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/lyrics-service/internal/observability"
)

// ErrRetryExhausted reports two consecutive authorization failures. The
// invoker never attempts a third call.
var ErrRetryExhausted = errors.New("spotify: request failed after credential refresh")

// Operation is an upstream call closed over everything except the access
// token, so the invoker can re-issue it with a fresh one.
type Operation func(ctx context.Context, accessToken string) (json.RawMessage, error)

// PersistFunc stores a refreshed credential so later requests see it: the
// process-wide holder for app credentials, the user record for user ones.
type PersistFunc func(ctx context.Context, cred Credential) error

// Refresher mints replacement credentials for the invoker.
type Refresher interface {
	ClientCredentials(ctx context.Context) (Credential, error)
	Refresh(ctx context.Context, refreshToken string) (Credential, error)
}

// Invoker wraps Spotify calls with a single-retry-on-401 policy. The retry
// only ever runs with a genuinely new credential; retrying with the expired
// one is never permitted, and non-auth failures propagate untouched.
type Invoker struct {
	refresher Refresher
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewInvoker builds an invoker.
func NewInvoker(refresher Refresher, logger *zap.Logger, metrics *observability.Metrics) *Invoker {
	return &Invoker{refresher: refresher, logger: logger, metrics: metrics}
}

// Do executes op with the credential's access token. On ErrUnauthorized it
// mints a fresh credential (app flow when there is no refresh token, refresh
// flow otherwise), persists it, and retries exactly once.
func (i *Invoker) Do(ctx context.Context, name string, cred Credential, persist PersistFunc, op Operation) (json.RawMessage, error) {
	result, err := op(ctx, cred.Access)
	if err == nil {
		i.metrics.RecordUpstream(name, "ok")
		return result, nil
	}
	if !errors.Is(err, ErrUnauthorized) {
		i.metrics.RecordUpstream(name, "error")
		return nil, err
	}

	i.logger.Info("spotify token rejected, refreshing",
		zap.String("operation", name),
		zap.String("credential", string(cred.Kind)))

	fresh, err := i.renew(ctx, cred)
	if err != nil {
		i.metrics.RecordUpstream(name, "refresh_failed")
		return nil, err
	}

	if persist != nil {
		if err := persist(ctx, fresh); err != nil {
			// The fresh token is still used for this request.
			i.logger.Warn("failed to persist refreshed spotify credential",
				zap.String("operation", name), zap.Error(err))
		}
	}

	result, err = op(ctx, fresh.Access)
	if err == nil {
		i.metrics.RecordUpstream(name, "retried")
		return result, nil
	}
	if errors.Is(err, ErrUnauthorized) {
		i.metrics.RecordUpstream(name, "exhausted")
		return nil, fmt.Errorf("%w: %s", ErrRetryExhausted, name)
	}
	i.metrics.RecordUpstream(name, "error")
	return nil, err
}

// renew obtains a replacement credential of the same kind, preserving the
// owner reference for user credentials.
func (i *Invoker) renew(ctx context.Context, cred Credential) (Credential, error) {
	if cred.Kind == CredentialUser && cred.Refresh != "" {
		fresh, err := i.refresher.Refresh(ctx, cred.Refresh)
		if err != nil {
			return Credential{}, err
		}
		fresh.OwnerID = cred.OwnerID
		return fresh, nil
	}
	return i.refresher.ClientCredentials(ctx)
}
